package cmd

import (
	"os"

	"github.com/flanksource/lit/model"
	"github.com/flanksource/lit/report"
	"github.com/flanksource/lit/suite"
)

// runAndReport drives the suite against stdout and returns whether it
// passed.
func runAndReport(cfg model.Config) bool {
	handler := report.NewConsoleHandler(os.Stdout)
	passed, _ := suite.Run(cfg, handler)
	return passed
}
