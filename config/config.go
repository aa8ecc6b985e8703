// Package config loads a .lit.yaml configuration file and merges it with
// CLI flags and LIT_-prefixed environment variables into a model.Config,
// following the teacher's git-root-bounded config discovery convention.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/lit/errs"
	"github.com/flanksource/lit/model"
	"github.com/spf13/viper"
)

const ConfigFileName = ".lit.yaml"

// fileConfig mirrors the on-disk shape of a .lit.yaml file.
type fileConfig struct {
	Constants              map[string]string `mapstructure:"constants" yaml:"constants"`
	SupportedFileExtensions []string         `mapstructure:"file_extensions" yaml:"file_extensions"`
	TestPaths               []string         `mapstructure:"test_paths" yaml:"test_paths"`
	Shell                    string          `mapstructure:"shell" yaml:"shell"`
	EnvVariables             map[string]string `mapstructure:"env_variables" yaml:"env_variables"`
	ExtraExecutableSearchPaths []string      `mapstructure:"extra_executable_search_paths" yaml:"extra_executable_search_paths"`
}

// findGitRoot walks up from startDir looking for a .git directory, falling
// back to startDir itself if none is found.
func findGitRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// findConfigFile searches for fileName by walking up the directory tree
// from startDir, never going above the enclosing git root.
func findConfigFile(startDir, fileName string) (string, bool) {
	gitRoot := findGitRoot(startDir)
	dir := startDir
	for {
		candidate := filepath.Join(dir, fileName)
		if _, err := os.Stat(candidate); err == nil {
			logger.Debugf("found config file: %s", candidate)
			return candidate, true
		}
		if dir == gitRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// Load reads .lit.yaml (if present, searched from startDir up to the git
// root) via viper, overlays LIT_-prefixed environment variables, and
// returns the resulting partial model.Config. CLI flags are applied by the
// caller afterward since they always take precedence.
func Load(startDir string) (model.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIT")
	v.AutomaticEnv()

	if path, ok := findConfigFile(startDir, ConfigFileName); ok {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return model.Config{}, errs.Wrap(errs.IO, path, 0, fmt.Errorf("reading config file: %w", err))
		}
		logger.Infof("using config file: %s", v.ConfigFileUsed())
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return model.Config{}, errs.Wrap(errs.Parse, "", 0, fmt.Errorf("parsing config file: %w", err))
	}

	return model.Config{
		Constants:                  fc.Constants,
		SupportedFileExtensions:    fc.SupportedFileExtensions,
		TestPaths:                  fc.TestPaths,
		Shell:                      fc.Shell,
		EnvVariables:               fc.EnvVariables,
		ExtraExecutableSearchPaths: fc.ExtraExecutableSearchPaths,
	}, nil
}

// ParseConstantDefinition parses a CLI `-c NAME=VALUE` argument. A malformed
// definition is a Usage-class error per spec.md §6.
func ParseConstantDefinition(raw string) (name, value string, err error) {
	idx := strings.IndexByte(raw, '=')
	if idx <= 0 {
		return "", "", errs.New(errs.Usage, "", 0, "malformed constant definition %q, expected NAME=VALUE", raw)
	}
	return raw[:idx], raw[idx+1:], nil
}
