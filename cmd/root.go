// Package cmd wires the cobra/viper CLI surface described in spec.md §6
// onto the suite driver.
package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	cfgpkg "github.com/flanksource/lit/config"
	"github.com/flanksource/lit/model"
	"github.com/spf13/cobra"
)

var (
	fileExtensions   []string
	extraTestPaths   []string
	constantDefs     []string
	keepTempfiles    bool
	saveArtifactsTo  string
	showContextLines int
	alwaysShowStderr bool
	verbosity        int
	debugFlags       []string
	debugAll         bool
	shellFlag        string
	envFlags         []string
	searchPathFlags  []string
)

var knownDebugFlags = map[string]bool{
	"variable-resolution": true,
}

var rootCmd = &cobra.Command{
	Use:   "lit [paths...]",
	Short: "Run lit-style embedded test directives against a shell",
	Long: `lit discovers files carrying embedded RUN/CHECK/CHECK-NEXT/XFAIL
directives, executes each one's RUN invocations through a shell, and
validates the program's output against the declared patterns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuite(args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&fileExtensions, "add-file-extension", nil, "extension whitelist for test discovery (repeatable)")
	flags.StringSliceVar(&extraTestPaths, "add-tests", nil, "additional test root path (repeatable)")
	flags.StringSliceVarP(&constantDefs, "define-constant", "c", nil, "NAME=VALUE constant definition (repeatable)")
	flags.BoolVar(&keepTempfiles, "keep-tempfiles", false, "do not remove tempfile-named variables after a successful test")
	flags.StringVar(&saveArtifactsTo, "save-artifacts-to", "", "directory to dump per-test artifacts into")
	flags.IntVar(&showContextLines, "show-context-lines", 5, "lines of diagnostic context to show (-1 disables truncation)")
	flags.BoolVar(&alwaysShowStderr, "always-show-stderr", false, "always display a RUN's stderr, not only on failure")
	flags.CountVarP(&verbosity, "verbose", "v", "increase verbosity (repeatable; >=1 shows stderr, >=2 dumps variable resolution)")
	flags.StringSliceVar(&debugFlags, "debug", nil, "enable a specific debug flag (repeatable)")
	flags.BoolVar(&debugAll, "debug-all", false, "enable every debug flag")
	flags.StringVar(&shellFlag, "shell", "", "shell executable to run RUN invocations with (default bash)")
	flags.StringSliceVar(&envFlags, "env", nil, "NAME=VALUE environment variable to add to every subprocess (repeatable)")
	flags.StringSliceVar(&searchPathFlags, "search-path", nil, "extra directory prepended to PATH (repeatable)")
}

// buildConfig merges a loaded .lit.yaml, CLI flags and positional test paths
// into one model.Config; CLI flags always win over the file.
func buildConfig(positionalPaths []string) (model.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return model.Config{}, err
	}

	cfg, err := cfgpkg.Load(cwd)
	if err != nil {
		return model.Config{}, err
	}

	for _, raw := range debugFlags {
		if !knownDebugFlags[raw] {
			return model.Config{}, fmt.Errorf("usage: unknown debug flag %q", raw)
		}
	}

	if cfg.Constants == nil {
		cfg.Constants = map[string]string{}
	}
	for _, def := range constantDefs {
		name, value, err := cfgpkg.ParseConstantDefinition(def)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Constants[name] = value
	}

	if len(fileExtensions) > 0 {
		cfg.SupportedFileExtensions = fileExtensions
	}
	if len(cfg.SupportedFileExtensions) == 0 {
		cfg.SupportedFileExtensions = []string{".test"}
	}

	cfg.TestPaths = append(cfg.TestPaths, positionalPaths...)
	cfg.TestPaths = append(cfg.TestPaths, extraTestPaths...)
	if len(cfg.TestPaths) == 0 {
		cfg.TestPaths = []string{"."}
	}

	if shellFlag != "" {
		cfg.Shell = shellFlag
	}

	if cfg.EnvVariables == nil {
		cfg.EnvVariables = map[string]string{}
	}
	for _, raw := range envFlags {
		name, value, err := cfgpkg.ParseConstantDefinition(raw)
		if err != nil {
			return model.Config{}, fmt.Errorf("usage: malformed --env value %q, expected NAME=VALUE", raw)
		}
		cfg.EnvVariables[name] = value
	}
	cfg.ExtraExecutableSearchPaths = append(cfg.ExtraExecutableSearchPaths, searchPathFlags...)

	cfg.CleanupTemporaryFiles = !keepTempfiles
	cfg.AlwaysShowStderr = alwaysShowStderr || verbosity >= 1
	cfg.DumpVariableResolution = debugAll || verbosity >= 2 || containsString(debugFlags, "variable-resolution")

	if showContextLines >= 0 {
		n := showContextLines
		cfg.TruncateOutputContextToNumberOfLines = &n
	}
	if saveArtifactsTo != "" {
		dir := saveArtifactsTo
		cfg.SaveArtifactsToDirectory = &dir
	}

	return cfg, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// runSuite is the default (no subcommand) action: run every discovered
// test and exit non-zero iff the suite failed.
func runSuite(positionalPaths []string) error {
	cfg, err := buildConfig(positionalPaths)
	if err != nil {
		return err
	}
	logger.Debugf("resolved config: shell=%s test_paths=%v extensions=%v", cfg.ShellOrDefault(), cfg.TestPaths, cfg.SupportedFileExtensions)

	if !runAndReport(cfg) {
		os.Exit(1)
	}
	return nil
}
