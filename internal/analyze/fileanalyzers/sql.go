package fileanalyzers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type sqlPattern struct {
	name     string
	re       *regexp.Regexp
	severity findings.Severity
}

// sqlPatterns mirrors original_source/crates/core/src/analyzer/sql_injection.rs:
// SQL keywords co-occurring with string interpolation/concatenation inside or
// around a database execution call. ORM/exec-specific patterns are checked
// before the generic standalone-string patterns since they're more specific.
var sqlPatterns = buildSQLPatterns()

func buildSQLPatterns() []sqlPattern {
	kw := `(?:SELECT|INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|REPLACE|MERGE|TRUNCATE|EXEC)\b`
	exec := `(?:execute|executemany|executescript|raw|rawquery|query|prepare)`

	return []sqlPattern{
		{"ORM raw query with interpolation",
			regexp.MustCompile(`\.(?:objects\.raw|text)\s*\(\s*f["'].*` + kw), findings.Error},
		{"f-string SQL in database call",
			regexp.MustCompile(`\.` + exec + `\s*\(\s*f["'].*` + kw), findings.Error},
		{"string concatenation SQL in database call",
			regexp.MustCompile(`\.` + exec + `\s*\(\s*["'].*` + kw + `.*["']\s*\+`), findings.Error},
		{".format() SQL in database call",
			regexp.MustCompile(`\.` + exec + `\s*\(\s*["'].*` + kw + `.*["']\s*\.format\s*\(`), findings.Error},
		{"%-format SQL in database call",
			regexp.MustCompile(`\.` + exec + `\s*\(\s*["'].*` + kw + `.*["']\s*%\s*\w`), findings.Error},
		{"template literal SQL in database call",
			regexp.MustCompile("\\." + exec + "\\s*\\(\\s*`[^`]*" + kw + "[^`]*\\$\\{[^`]*`"), findings.Error},
		{"f-string SQL assignment",
			regexp.MustCompile(`=\s*f["'].*` + kw + `.*\{`), findings.Warning},
		{"string concatenation SQL",
			regexp.MustCompile(`["'].*` + kw + `.*["']\s*\+\s*\w`), findings.Warning},
		{".format() SQL string",
			regexp.MustCompile(`["'].*` + kw + `.*["']\s*\.format\s*\(`), findings.Warning},
		{"%-format SQL string",
			regexp.MustCompile(`["'].*` + kw + `.*["']\s*%\s*\w`), findings.Warning},
		{"template literal SQL",
			regexp.MustCompile("`[^`]*" + kw + "[^`]*\\$\\{[^`]*`"), findings.Warning},
	}
}

// SQLInjection detects SQL queries built with string interpolation or
// concatenation rather than parameterized placeholders.
type SQLInjection struct{}

func NewSQLInjection() *SQLInjection { return &SQLInjection{} }

func (a *SQLInjection) Name() string   { return "SQL Injection" }
func (a *SQLInjection) Prefix() string { return "SQL" }

func (a *SQLInjection) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("security") }

func (a *SQLInjection) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !shouldScan(filePath) {
		return nil
	}
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isCommentLine(line) {
			continue
		}
		for _, pat := range sqlPatterns {
			if pat.re.MatchString(line) {
				out = append(out, findings.Finding{
					Prefix:   "SQL",
					Severity: pat.severity,
					File:     filePath,
					Line:     i + 1,
					Message:  fmt.Sprintf("Possible SQL injection: %s", pat.name),
				})
				break
			}
		}
	}
	return out
}
