// Package fixer applies the regex-substitution fixes custom rules
// compute, writing the replacement lines back to disk. It is the Go
// analogue of original_source/crates/core/src/fixer.rs's apply_fixes:
// findings are grouped by file, sorted by line descending so an
// earlier edit never invalidates a later one's line number, and each
// fix is only counted as applied if the substitution actually changed
// the line.
package fixer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/revet-dev/revet-core/internal/findings"
)

// Result records the outcome of one finding's fix attempt.
type Result struct {
	FindingID string
	File      string
	Line      int
	Applied   bool
	Reason    string
}

// Report tallies a fix run's outcome, mirroring fixer.rs's FixReport.
type Report struct {
	Applied int
	Skipped int
	Results []Result
}

// ApplyFixes rewrites every fixable, unsuppressed finding's line in
// place. repoRoot resolves findings whose File is repo-relative (the
// case for every Finding the Engine produces); a File that is already
// absolute is used as-is. Findings with no FixFind are left untouched
// and do not appear in the report.
func ApplyFixes(fs []findings.Finding, repoRoot string) (*Report, error) {
	byFile := map[string][]findings.Finding{}
	for _, f := range fs {
		if f.Suppressed || f.FixFind == "" {
			continue
		}
		byFile[f.File] = append(byFile[f.File], f)
	}

	report := &Report{}
	// Sort file names too, so the report is deterministic across runs.
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		results, err := applyToFile(resolvePath(repoRoot, file), file, byFile[file])
		if err != nil {
			return report, fmt.Errorf("fixer: %s: %w", file, err)
		}
		for _, r := range results {
			if r.Applied {
				report.Applied++
			} else {
				report.Skipped++
			}
			report.Results = append(report.Results, r)
		}
	}
	return report, nil
}

func resolvePath(repoRoot, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(repoRoot, file)
}

// applyToFile rewrites absPath's fixable lines, mutating highest line
// numbers first so earlier substitutions can never shift a later
// finding's line number out from under it.
func applyToFile(absPath, relPath string, fs []findings.Finding) ([]Result, error) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Line > fs[j].Line })

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	trailingNewline := strings.HasSuffix(string(content), "\n")
	lines := strings.Split(string(content), "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	var results []Result
	changed := false
	for _, f := range fs {
		idx := f.Line - 1
		if idx < 0 || idx >= len(lines) {
			results = append(results, Result{FindingID: f.ID, File: relPath, Line: f.Line, Applied: false, Reason: "line out of range"})
			continue
		}
		re, err := regexp.Compile(f.FixFind)
		if err != nil {
			results = append(results, Result{FindingID: f.ID, File: relPath, Line: f.Line, Applied: false, Reason: "invalid fix pattern"})
			continue
		}
		replaced := re.ReplaceAllString(lines[idx], f.FixReplace)
		if replaced == lines[idx] {
			results = append(results, Result{FindingID: f.ID, File: relPath, Line: f.Line, Applied: false, Reason: "pattern did not match"})
			continue
		}
		lines[idx] = replaced
		changed = true
		results = append(results, Result{FindingID: f.ID, File: relPath, Line: f.Line, Applied: true})
	}

	if !changed {
		return results, nil
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	if err := os.WriteFile(absPath, []byte(out), 0o644); err != nil {
		return nil, err
	}
	return results, nil
}
