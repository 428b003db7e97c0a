package fileanalyzers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type hookPattern struct {
	name             string
	re               *regexp.Regexp
	severity         findings.Severity
	rejectIfContains string
	suggestion       string
}

// hookPatterns mirrors original_source/crates/core/src/analyzer/react_hooks.rs.
var hookPatterns = []hookPattern{
	{"Hook inside condition", regexp.MustCompile(`if\s*\(.*\).*\buse[A-Z]\w+\s*\(`), findings.Error, "",
		"Move hook call to top level of the component"},
	{"Hook inside loop", regexp.MustCompile(`(?:for\s*\(|while\s*\().*\buse[A-Z]\w+\s*\(`), findings.Error, "",
		"Move hook call to top level of the component"},
	{"useEffect without dependency array", regexp.MustCompile(`useEffect\s*\(`), findings.Warning, ", [",
		"Add dependency array: useEffect(() => { ... }, [deps])"},
	{"Direct DOM manipulation",
		regexp.MustCompile(`document\.(?:getElementById|querySelector|querySelectorAll|getElementsBy)\s*\(`),
		findings.Warning, "", "Use useRef() hook instead of direct DOM manipulation"},
	{"Missing key prop in map", regexp.MustCompile(`\.map\s*\(.*=>\s*<[A-Z]`), findings.Warning, "key=",
		"Add a unique key prop: <Component key={item.id} />"},
	{"dangerouslySetInnerHTML usage", regexp.MustCompile(`dangerouslySetInnerHTML`), findings.Warning, "",
		"Avoid dangerouslySetInnerHTML; use a sanitization library like DOMPurify if needed"},
	{"Inline function in JSX event handler", regexp.MustCompile(`on[A-Z]\w+=\{.*=>`), findings.Info, "",
		"Extract handler to useCallback() to prevent unnecessary re-renders"},
	{"useEffect with empty dependency array", regexp.MustCompile(`useEffect\s*\(.*,\s*\[\s*\]\s*\)`), findings.Info, "",
		"Empty dependency array means this runs once on mount; ensure it does not reference props or state that may change"},
}

var reactExtensions = map[string]bool{"tsx": true, "jsx": true, "ts": true, "js": true}

// ReactHooks detects Rules of Hooks violations and common React anti-patterns.
type ReactHooks struct{}

func NewReactHooks() *ReactHooks { return &ReactHooks{} }

func (a *ReactHooks) Name() string   { return "React Hooks" }
func (a *ReactHooks) Prefix() string { return "HOOKS" }

func (a *ReactHooks) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("react") }

func (a *ReactHooks) shouldScan(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return reactExtensions[ext]
}

func isReactCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") ||
		strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "{/*")
}

func (a *ReactHooks) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !a.shouldScan(filePath) {
		return nil
	}
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isReactCommentLine(line) {
			continue
		}
		for _, pat := range hookPatterns {
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:     "HOOKS",
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
