// Package shell implements C4, the command builder: it turns a resolved
// RUN command line and a Config into a concrete subprocess invocation, runs
// it and classifies the result per spec.md §4.2.
package shell

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/lit/model"
)

// Outcome is the result of running one resolved command line. Exactly one
// of the three branches applies: a launch/process failure (Err set), a
// non-zero exit (Failed true), or a normal completion.
type Outcome struct {
	CommandLine string
	Output      model.ProgramOutput
	ExitCode    int
	Failed      bool
	Err         error
}

// pathListSeparator is ':' on POSIX, ';' on Windows, matching PATH's own
// separator convention for each platform.
func pathListSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// Run launches config.ShellOrDefault() with `-c resolvedCommand`, in dir,
// with config.EnvVariables added and config.ExtraExecutableSearchPaths
// prepended to PATH. It never returns a Go error for ordinary launch or
// exit failures — those are reported through Outcome so the orchestrator
// can classify them into the model.TestFailReason taxonomy.
func Run(dir, resolvedCommand string, config model.Config) Outcome {
	shellName := config.ShellOrDefault()
	logger.Debugf("running %q via shell %q in %q", resolvedCommand, shellName, dir)

	cmd := exec.Command(shellName, "-c", resolvedCommand)
	cmd.Dir = dir
	cmd.Env = buildEnv(config)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		CommandLine: resolvedCommand,
		Output: model.ProgramOutput{
			Stdout: trimLines(stdout.String()),
			Stderr: stderr.String(),
		},
	}

	if err == nil {
		return outcome
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.Failed = true
		outcome.ExitCode = exitErr.ExitCode()
		return outcome
	}

	if errors.Is(err, exec.ErrNotFound) || isExecNotFound(err) {
		outcome.Err = fmt.Errorf("shell '%s' does not exist", shellName)
		return outcome
	}

	outcome.Err = err
	return outcome
}

func isExecNotFound(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr.Err, os.ErrNotExist) || strings.Contains(pathErr.Err.Error(), "no such file")
	}
	return false
}

// buildEnv starts from the current process environment, prepends
// extra_executable_search_paths to PATH and overlays env_variables.
func buildEnv(config model.Config) []string {
	env := os.Environ()

	if len(config.ExtraExecutableSearchPaths) > 0 {
		prefix := strings.Join(config.ExtraExecutableSearchPaths, pathListSeparator())
		env = append(env, "PATH="+prefix+pathListSeparator()+os.Getenv("PATH"))
	}

	for k, v := range config.EnvVariables {
		env = append(env, k+"="+v)
	}

	return env
}

// trimLines right-trims every line of whitespace and rejoins with "\n",
// per spec.md §4.2's pre-match normalisation of stdout.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r\v\f")
	}
	return strings.Join(lines, "\n")
}
