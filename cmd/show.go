package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/lit/discover"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showCmd = &cobra.Command{
	Use:       "show {test-file-paths|lit-config}",
	Short:     "Print discovered test paths or the resolved configuration, then exit",
	ValidArgs: []string{"test-file-paths", "lit-config"},
	Args:      cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(nil)
		if err != nil {
			return err
		}

		switch args[0] {
		case "test-file-paths":
			paths, err := discover.Find(cfg.TestPaths, cfg.SupportedFileExtensions)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p.String())
			}
		case "lit-config":
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			os.Stdout.Write(out)
		}
		return nil
	},
}
