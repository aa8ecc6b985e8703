package model

// Config is the subset of caller-provided configuration the core consumes
// (spec.md §3). Discovery, the CLI surface and artifact dumping are thin
// collaborators layered on top in separate packages.
type Config struct {
	// Constants is injected by the caller (CLI `-c NAME=VALUE`, or a config
	// file) and resolved via @name in both RUN tails and CHECK patterns.
	Constants map[string]string

	// SupportedFileExtensions restricts test discovery (collaborator).
	SupportedFileExtensions []string
	// TestPaths are the configured root paths (collaborator).
	TestPaths []string

	// Shell is the executable used to run RUN invocations. Defaults to
	// "bash".
	Shell string
	// EnvVariables are added to every subprocess environment.
	EnvVariables map[string]string
	// ExtraExecutableSearchPaths are prepended to PATH.
	ExtraExecutableSearchPaths []string

	CleanupTemporaryFiles bool
	// TruncateOutputContextToNumberOfLines caps diagnostic output; nil
	// disables truncation.
	TruncateOutputContextToNumberOfLines *int

	AlwaysShowStderr       bool
	DumpVariableResolution bool

	// SaveArtifactsToDirectory enables the artifact dump described in
	// spec.md §6; nil disables it.
	SaveArtifactsToDirectory *string
}

// DefaultShell is used when Config.Shell is empty.
const DefaultShell = "bash"

// ShellOrDefault returns the configured shell, or DefaultShell if unset.
func (c Config) ShellOrDefault() string {
	if c.Shell == "" {
		return DefaultShell
	}
	return c.Shell
}

// LookupVariable implements the merged-mapping search spec.md §4.2 requires:
// the live variables layer (test-file variables plus any captures already
// learned this RUN) takes priority, falling back to configured constants.
// This is also how §9's Open Question is resolved: captures shadow
// constants within a RUN, because captures are folded into variables before
// this lookup ever sees the constants layer.
func (c Config) LookupVariable(name string, variables Variables) (string, bool) {
	if v, ok := variables[name]; ok {
		return v, true
	}
	if v, ok := c.Constants[name]; ok {
		return v, true
	}
	return "", false
}
