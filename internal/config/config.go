// Package config defines the typed Config Surface the core consumes.
// No TOML parsing lives here: `.revet.toml` is loaded by the external
// CLI (spec §6); the core only ever sees an already-populated Config
// value. This mirrors the teacher's Engine, which never reads a config
// file itself — options arrive as functional Options on construction.
package config

import "path/filepath"

// FailOn is the exit-code threshold policy handed to the external CLI.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnInfo    FailOn = "info"
	FailOnNever   FailOn = "never"
)

// CustomRule is one user-defined regex rule ([[rules]] in .revet.toml).
type CustomRule struct {
	ID                string
	Pattern           string
	Message           string
	Severity          string
	Paths             []string
	Suggestion        string
	RejectIfContains  string
	FixFind           string
	FixReplace        string
}

// Config is the complete, already-parsed surface the core reads from.
// Every field here corresponds to a row in spec §6's config table.
type Config struct {
	DiffBase string
	FailOn   FailOn

	// Modules maps an analyzer family's config key (e.g. "security",
	// "dead_code") to whether it is enabled. A key absent from the map is
	// treated as disabled.
	Modules map[string]bool

	IgnorePaths    []string
	IgnoreFindings []string
	IgnorePerPath  map[string][]string

	Rules []CustomRule
}

// ModuleEnabled reports whether the named analyzer family is enabled.
func (c *Config) ModuleEnabled(name string) bool {
	if c == nil || c.Modules == nil {
		return false
	}
	return c.Modules[name]
}

// GlobMatch reports whether path matches glob, using path/filepath.Match
// semantics. No third-party glob library appears anywhere in the example
// pack (see DESIGN.md); filepath.Match is the only extension-matching
// primitive available, and it is sufficient for the flat prefix/suffix
// globs .revet.toml's ignore.per_path and ignore.paths tables use.
func GlobMatch(glob, path string) bool {
	ok, err := filepath.Match(glob, path)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// filepath.Match doesn't cross path separators for "*"; a common glob
	// idiom like "**/*.go" or "vendor/*" should still match nested paths,
	// so also try matching the glob's last segment against the file's base
	// name, provided the glob's directory part (when present and not "**")
	// matches one of the file's ancestor directories.
	dir, baseGlob := filepath.Split(glob)
	if ok, err := filepath.Match(baseGlob, filepath.Base(path)); err != nil || !ok {
		return false
	}
	dir = filepath.Clean(dir)
	if dir == "." || dir == "**" {
		return true
	}
	for d := filepath.Dir(path); d != "." && d != "/"; d = filepath.Dir(d) {
		if ok, _ := filepath.Match(dir, d); ok {
			return true
		}
	}
	return false
}
