package fileanalyzers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

// asyncPatterns mirrors original_source/crates/core/src/analyzer/async_patterns.rs.
var asyncPatterns = []hookPattern{
	{"Async Promise executor", regexp.MustCompile(`new\s+Promise\s*\(\s*async`), findings.Error, "",
		"Remove async from Promise executor; use resolve/reject callbacks instead"},
	{"Await in forEach", regexp.MustCompile(`\.forEach\s*\(\s*async`), findings.Error, "",
		"Use for...of loop or Promise.all(items.map(...)) instead of forEach with async"},
	{"Unhandled .then() chain", regexp.MustCompile(`\.then\s*\(`), findings.Warning, ".catch",
		"Add .catch() handler or use async/await with try/catch"},
	{"Async map without Promise.all", regexp.MustCompile(`\.map\s*\(\s*async`), findings.Warning, "Promise.all",
		"Wrap with await Promise.all(...) to collect async map results"},
	{"Async timer callback", regexp.MustCompile(`(?:setTimeout|setInterval)\s*\(\s*async`), findings.Warning, "",
		"Extract async logic and add error handling inside the callback"},
	{"Floating Python coroutine",
		regexp.MustCompile(`asyncio\.(?:sleep|gather|wait_for|create_task|ensure_future)\s*\(`),
		findings.Warning, "await", "Add await before asyncio call"},
	{"Swallowed error in catch", regexp.MustCompile(`\.catch\s*\([^{]*\{\s*\}\s*\)`), findings.Info, "",
		"Handle or log the error instead of swallowing it"},
	{"Redundant return await", regexp.MustCompile(`return\s+await\s+`), findings.Info, "",
		"Remove await from return statement (unless inside try/catch)"},
}

var asyncExtensions = map[string]bool{"js": true, "ts": true, "jsx": true, "tsx": true, "py": true}

// AsyncPatterns detects async/await anti-patterns in JS/TS and Python.
type AsyncPatterns struct{}

func NewAsyncPatterns() *AsyncPatterns { return &AsyncPatterns{} }

func (a *AsyncPatterns) Name() string   { return "Async Patterns" }
func (a *AsyncPatterns) Prefix() string { return "ASYNC" }

func (a *AsyncPatterns) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("async") }

func (a *AsyncPatterns) shouldScan(path string) bool {
	return asyncExtensions[strings.TrimPrefix(filepath.Ext(path), ".")]
}

func isAsyncCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") ||
		strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "#")
}

func (a *AsyncPatterns) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !a.shouldScan(filePath) {
		return nil
	}
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isAsyncCommentLine(line) {
			continue
		}
		for _, pat := range asyncPatterns {
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:     "ASYNC",
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
