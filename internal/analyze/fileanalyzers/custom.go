package fileanalyzers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type compiledRule struct {
	regex            *regexp.Regexp
	globs            []string
	severity         findings.Severity
	message          string
	suggestion       string
	rejectIfContains string
	fixFind          *regexp.Regexp
	fixReplace       string
}

// CustomRules runs user-defined regex rules loaded from config (.revet.toml
// [[rules]]), grounded on original_source/crates/core/src/analyzer/custom_rules.rs.
// It is enabled whenever at least one rule compiles, independent of any
// module toggle.
type CustomRules struct {
	rules []compiledRule
}

// NewCustomRules compiles cfg.Rules at construction time. Rules with an
// invalid pattern or fix_find regex are skipped.
func NewCustomRules(cfg *config.Config) *CustomRules {
	c := &CustomRules{}
	if cfg == nil {
		return c
	}
	for _, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			continue
		}
		severity := findings.Warning
		switch strings.ToLower(r.Severity) {
		case "error":
			severity = findings.Error
		case "info":
			severity = findings.Info
		case "warning", "":
			severity = findings.Warning
		}

		var fixFind *regexp.Regexp
		if r.FixFind != "" && r.FixReplace != "" {
			if fre, ferr := regexp.Compile(r.FixFind); ferr == nil {
				fixFind = fre
			}
		}

		c.rules = append(c.rules, compiledRule{
			regex:            re,
			globs:            r.Paths,
			severity:         severity,
			message:          r.Message,
			suggestion:       r.Suggestion,
			rejectIfContains: r.RejectIfContains,
			fixFind:          fixFind,
			fixReplace:       r.FixReplace,
		})
	}
	return c
}

func (a *CustomRules) Name() string   { return "Custom Rules" }
func (a *CustomRules) Prefix() string { return "CUSTOM" }

func (a *CustomRules) Enabled(*config.Config) bool { return len(a.rules) > 0 }

func ruleMatchesFile(fileName string, rule compiledRule) bool {
	if len(rule.globs) == 0 {
		return true
	}
	for _, g := range rule.globs {
		if ok, err := filepath.Match(g, fileName); err == nil && ok {
			return true
		}
	}
	return false
}

func (a *CustomRules) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if len(a.rules) == 0 {
		return nil
	}
	fileName := filepath.Base(filePath)
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		for _, rule := range a.rules {
			if !ruleMatchesFile(fileName, rule) {
				continue
			}
			if !rule.regex.MatchString(line) {
				continue
			}
			if rule.rejectIfContains != "" && strings.Contains(line, rule.rejectIfContains) {
				continue
			}
			var fixHint, fixFind string
			if rule.fixFind != nil {
				fixHint = rule.fixFind.ReplaceAllString(line, rule.fixReplace)
				fixFind = rule.fixFind.String()
			}
			out = append(out, findings.Finding{
				Prefix:     "CUSTOM",
				Severity:   rule.severity,
				File:       filePath,
				Line:       i + 1,
				Message:    rule.message,
				Suggestion: rule.suggestion,
				FixHint:    fixHint,
				FixFind:    fixFind,
				FixReplace: rule.fixReplace,
			})
			break
		}
	}
	return out
}
