package suite_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/lit/model"
	"github.com/flanksource/lit/report"
	"github.com/flanksource/lit/suite"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func writeCase(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
	return path
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

var _ = Describe("suite driver", func() {
	var (
		dir     string
		out     bytes.Buffer
		handler *report.ConsoleHandler
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out.Reset()
		handler = report.NewConsoleHandler(&out)
	})

	// S1. Happy path.
	It("passes a RUN followed by a matching CHECK", func() {
		writeCase(dir, "s1.test", "; RUN: echo hello world\n; CHECK: hello world\n")
		cfg := model.Config{Shell: "bash", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, results := suite.Run(cfg, handler)

		Expect(passed).To(BeTrue())
		Expect(results.TestResults).To(HaveLen(1))
		Expect(results.TestResults[0].OverallResult.Kind).To(Equal(model.Pass))
	})

	// S2. CHECK-NEXT rejection.
	It("fails a CHECK-NEXT whose match exists but isn't on the next line", func() {
		writeCase(dir, "s2.test", joinLines(
			"; RUN: printf 'Hydrogen, is an element.\\nHelium, is an element.\\nLithium, is an element.\\n'",
			"; CHECK: Hydrogen",
			"; CHECK-NEXT: Lithium",
		))
		cfg := model.Config{Shell: "bash", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, results := suite.Run(cfg, handler)

		Expect(passed).To(BeFalse())
		result := results.TestResults[0]
		Expect(result.OverallResult.Kind).To(Equal(model.FailOutcome))
		Expect(result.OverallResult.FailReason.Kind).To(Equal(model.CheckFailed))
		Expect(*result.OverallResult.FailHint).To(ContainSubstring("does not appear on the next line"))
	})

	// S3. Capture propagation.
	It("propagates a named capture to a later CHECK in the same RUN", func() {
		writeCase(dir, "s3.test", joinLines(
			`; RUN: printf 'id=42\nid=42 again'`,
			`; CHECK: id=[[N:\d+]]`,
			"; CHECK: id=$$N again",
		))
		cfg := model.Config{Shell: "bash", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, _ := suite.Run(cfg, handler)
		Expect(passed).To(BeTrue())
	})

	// S4. Constant interpolation in RUN.
	It("interpolates an @constant in a RUN command", func() {
		writeCase(dir, "s4.test", joinLines("; RUN: @cc ok", "; CHECK: ok"))
		cfg := model.Config{
			Shell:     "bash",
			TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"},
			Constants: map[string]string{"cc": "echo"},
		}

		passed, results := suite.Run(cfg, handler)
		Expect(passed).To(BeTrue())
		Expect(results.TestResults[0].IndividualRunResults[0].CommandLine).To(Equal("echo ok"))
	})

	// S6. XFAIL with check failure.
	It("turns a failing RUN into ExpectedFailure when XFAIL is present", func() {
		writeCase(dir, "s6.test", joinLines("XFAIL", "RUN: echo x", "CHECK: y"))
		cfg := model.Config{Shell: "bash", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, results := suite.Run(cfg, handler)
		Expect(passed).To(BeTrue())
		Expect(results.TestResults[0].OverallResult.Kind).To(Equal(model.ExpectedFailure))
	})

	// S5. Shell missing.
	It("reports an Error when the configured shell does not exist", func() {
		writeCase(dir, "s5.test", "; RUN: echo hi\n")
		cfg := model.Config{Shell: "definitely-not-a-shell", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, results := suite.Run(cfg, handler)

		Expect(passed).To(BeFalse())
		Expect(results.TestResults[0].OverallResult.Kind).To(Equal(model.ErrorOutcome))
		Expect(results.TestResults[0].OverallResult.ErrorMessage).To(ContainSubstring("does not exist"))
	})

	It("warns and fails when no test files are found", func() {
		empty := GinkgoT().TempDir()
		cfg := model.Config{Shell: "bash", TestPaths: []string{empty}, SupportedFileExtensions: []string{".test"}}

		passed, _ := suite.Run(cfg, handler)
		Expect(passed).To(BeFalse())
		Expect(out.String()).To(ContainSubstring("no test files found"))
	})

	It("treats a file with no RUN commands as Skip", func() {
		writeCase(dir, "empty.test", "just prose\n")
		cfg := model.Config{Shell: "bash", TestPaths: []string{dir}, SupportedFileExtensions: []string{".test"}}

		passed, results := suite.Run(cfg, handler)
		Expect(passed).To(BeTrue())
		Expect(results.TestResults[0].OverallResult.Kind).To(Equal(model.Skip))
	})
})
