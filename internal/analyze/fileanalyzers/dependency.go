package fileanalyzers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type depPattern struct {
	name             string
	re               *regexp.Regexp
	severity         findings.Severity
	rejectIfContains string
	targetExts       []string
	targetFilenames  []string
	suggestion       string
}

// depPatterns mirrors original_source/crates/core/src/analyzer/dependency.rs.
var depPatterns = []depPattern{
	{"wildcard import in Python (pollutes namespace)",
		regexp.MustCompile(`^\s*from\s+\S+\s+import\s+\*`), findings.Warning, "",
		[]string{"py"}, nil, "Import specific names instead of using wildcard import"},
	{"wildcard import in Java (pollutes namespace)",
		regexp.MustCompile(`^\s*import\s+[\w.]+\.\*\s*;`), findings.Warning, "",
		[]string{"java"}, nil, "Import specific classes instead of using wildcard import"},
	{"deprecated Python module import (removed in 3.12+)",
		regexp.MustCompile(`^\s*(?:import\s+(?:imp|optparse|distutils|aifc|audioop|cgi|cgitb|smtpd|pipes|sndhdr|sunau|nntplib|xdrlib|msilib|imghdr|formatter)|from\s+(?:imp|optparse|distutils|aifc|audioop|cgi|cgitb|smtpd|pipes|sndhdr|sunau|nntplib|xdrlib|msilib|imghdr|formatter)\s+import)`),
		findings.Warning, "", []string{"py"}, nil,
		"This module is deprecated/removed in Python 3.12+; use its modern replacement"},
	{"circular import workaround annotation",
		regexp.MustCompile(`(?:#\s*noqa:\s*circular|#\s*type:\s*ignore\[import|//\s*@ts-ignore|//\s*eslint-disable.*import)`),
		findings.Warning, "", []string{"py", "ts", "js", "tsx", "jsx"}, nil,
		"Resolve the circular dependency instead of suppressing the lint"},
	{"unpinned or wildcard dependency version",
		regexp.MustCompile(`["']\s*:\s*["'](?:\*|latest)["']`), findings.Warning, "",
		nil, []string{"package.json"}, "Pin dependency to a specific version or semver range"},
	{"require() instead of ES import",
		regexp.MustCompile(`(?:const|let|var)\s+\w+\s*=\s*require\s*\(`), findings.Info, "jest",
		[]string{"ts", "js", "tsx", "jsx"}, nil, "Use ES module import syntax instead of require()"},
	{"deeply nested relative import (3+ levels)",
		regexp.MustCompile(`(?:from\s+\.{3,}\S*\s+import|(?:from|import|require)\s*\(?['"](?:\.\./){3,}|require\s*\(\s*['"](?:\.\./){3,})`),
		findings.Info, "", []string{"py", "ts", "js", "tsx", "jsx"}, nil,
		"Use absolute imports or path aliases instead of deep relative imports"},
	{"git dependency (non-reproducible, breaks offline installs)",
		regexp.MustCompile(`(?:["']git\+https?://|["']github:|git\s*=\s*["']https?://|git\+https?://)`),
		findings.Info, "", []string{"toml"}, []string{"package.json", "requirements.txt"},
		"Use a published package version instead of a git dependency"},
}

var depCodeExtensions = map[string]bool{"py": true, "ts": true, "js": true, "tsx": true, "jsx": true, "java": true}
var depManifestFilenames = map[string]bool{
	"package.json": true, "requirements.txt": true, "Cargo.toml": true, "pyproject.toml": true,
}

// Dependency detects import anti-patterns and manifest hygiene issues.
type Dependency struct{}

func NewDependency() *Dependency { return &Dependency{} }

func (a *Dependency) Name() string   { return "Dependency Hygiene" }
func (a *Dependency) Prefix() string { return "DEP" }

func (a *Dependency) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("dependency") }

func (a *Dependency) shouldScan(path string) bool {
	base := filepath.Base(path)
	if depManifestFilenames[base] {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" || binaryExtensions[ext] {
		return false
	}
	return depCodeExtensions[ext]
}

func depPatternMatchesFile(p depPattern, path string) bool {
	base := filepath.Base(path)
	for _, n := range p.targetFilenames {
		if n == base {
			return true
		}
	}
	if len(p.targetExts) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		for _, e := range p.targetExts {
			if e == ext {
				return true
			}
		}
	}
	return false
}

func (a *Dependency) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !a.shouldScan(filePath) {
		return nil
	}
	var applicable []depPattern
	for _, p := range depPatterns {
		if depPatternMatchesFile(p, filePath) {
			applicable = append(applicable, p)
		}
	}
	if len(applicable) == 0 {
		return nil
	}

	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isCommentLine(line) || strings.HasPrefix(strings.TrimSpace(line), "/*") {
			continue
		}
		for _, pat := range applicable {
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:     "DEP",
				Severity:   pat.severity,
				File:       filePath,
				Line:       i + 1,
				Message:    fmt.Sprintf("Dependency issue: %s", pat.name),
				Suggestion: pat.suggestion,
			})
			break
		}
	}
	return out
}
