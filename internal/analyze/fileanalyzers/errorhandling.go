package fileanalyzers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type errorPattern struct {
	name             string
	re               *regexp.Regexp
	severity         findings.Severity
	rejectIfContains string
	suggestion       string
	// langFilter, if set, restricts this pattern to files whose extension
	// it accepts; nil means the pattern applies to every scanned extension.
	langFilter func(ext string, isTest bool) bool
}

var errorExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true,
	"rs": true, "go": true, "java": true, "kt": true, "cs": true,
}

// errorPatterns mirrors original_source/crates/core/src/analyzer/error_handling.rs.
// Each per-language restriction there (idx-based in the Rust match) becomes
// an explicit langFilter closure here.
var errorPatterns = []errorPattern{
	{"Empty catch/except block",
		regexp.MustCompile(`(?:catch\s*(?:\([^)]*\))?\s*\{\s*\}|except[^:]*:\s*(?:pass\s*$))`),
		findings.Warning, "", "Handle the error or add a comment explaining why it is safe to ignore", nil},
	{"Bare except without exception type",
		regexp.MustCompile(`^\s*except\s*:`), findings.Warning, "",
		"Specify an exception type: except ValueError: or except Exception as e:",
		func(ext string, _ bool) bool { return ext == "py" }},
	{".unwrap() call",
		regexp.MustCompile(`\.unwrap\(\)`), findings.Warning, "",
		"Use ? operator, .unwrap_or(), .unwrap_or_else(), or .expect() with a message",
		func(ext string, _ bool) bool { return ext == "rs" }},
	{"panic!/todo!/unimplemented! in non-test code",
		regexp.MustCompile(`\b(?:panic!|todo!|unimplemented!)\s*\(`), findings.Warning, "#[test]",
		"Return a Result with a descriptive error instead of panicking",
		func(ext string, isTest bool) bool { return ext == "rs" && !isTest }},
	{"Catch block only logs error",
		regexp.MustCompile(`catch\s*\([^)]*\)\s*\{\s*(?:console\.(?:log|warn|error|info)|System\.(?:out|err)\.print|log(?:ger)?\.(?:error|warn|info|debug))\s*\(`),
		findings.Info, "throw", "Re-throw the error or handle it properly after logging",
		func(ext string, _ bool) bool {
			return ext == "js" || ext == "ts" || ext == "jsx" || ext == "tsx" || ext == "java"
		}},
	{"Too-broad exception catch",
		regexp.MustCompile(`^\s*except\s+(?:Exception|BaseException)\b`), findings.Warning, "",
		"Catch a more specific exception type (e.g. ValueError, KeyError)",
		func(ext string, _ bool) bool { return ext == "py" }},
	{"Empty .catch() callback",
		regexp.MustCompile(`\.catch\s*\(\s*(?:\(\s*[^)]*\)\s*=>\s*\{\s*\}|\w+\s*=>\s*\{\s*\}|\(\s*\)\s*\{\s*\}|function\s*\(\s*[^)]*\)\s*\{\s*\})\s*\)`),
		findings.Warning, "", "Handle or re-throw the error in the .catch() callback",
		func(ext string, _ bool) bool { return ext == "js" || ext == "ts" || ext == "jsx" || ext == "tsx" }},
	{"Discarded error in Go",
		regexp.MustCompile(`_\s*=\s*err\b`), findings.Warning, "",
		"Handle the error: if err != nil { return err }",
		func(ext string, _ bool) bool { return ext == "go" }},
}

// ErrorHandling detects error-handling anti-patterns across languages:
// empty catch/except blocks, bare except, unwrap chains, swallowed errors.
type ErrorHandling struct{}

func NewErrorHandling() *ErrorHandling { return &ErrorHandling{} }

func (a *ErrorHandling) Name() string   { return "Error Handling" }
func (a *ErrorHandling) Prefix() string { return "ERR" }

func (a *ErrorHandling) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("errors") }

func isErrorTestFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "test_") ||
		strings.HasSuffix(name, "_test.rs") ||
		strings.HasSuffix(name, "_test.go") ||
		strings.Contains(name, "test")
}

func (a *ErrorHandling) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if !errorExtensions[ext] {
		return nil
	}
	isTest := isErrorTestFile(filePath)

	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isCommentLine(line) || strings.HasPrefix(strings.TrimSpace(line), "/*") {
			continue
		}
		for _, pat := range errorPatterns {
			if pat.langFilter != nil && !pat.langFilter(ext, isTest) {
				continue
			}
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:     "ERR",
				Severity:   pat.severity,
				File:       filePath,
				Line:       i + 1,
				Message:    pat.name,
				Suggestion: pat.suggestion,
			})
			break
		}
	}
	return out
}
