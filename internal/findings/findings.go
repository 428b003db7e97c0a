// Package findings defines the Finding and RunLog types plus the
// four-layer suppression pipeline that runs over a collected finding
// set: inline comment, per-path glob, global finding-ID, and baseline.
// Suppressed findings are retained with a reason tag, never deleted.
package findings

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/revet-dev/revet-core/internal/baseline"
	"github.com/revet-dev/revet-core/internal/config"
)

// Severity is the closed set of finding severities.
type Severity string

const (
	Error   Severity = "Error"
	Warning Severity = "Warning"
	Info    Severity = "Info"
)

// Finding is a single potentially-actionable observation. ID is assigned
// during renumbering (see Renumber) and is empty beforehand.
type Finding struct {
	ID                 string
	Prefix             string
	Severity           Severity
	File               string
	Line               int
	Message            string
	Suggestion         string
	FixHint            string
	AffectedDependents int

	// FixFind and FixReplace carry the regex substitution that produced
	// FixHint, when the originating rule defined both. A Finding with
	// FixFind == "" has no machine-applicable fix; FixHint may still be
	// a non-empty manual suggestion computed some other way.
	FixFind    string
	FixReplace string

	Suppressed        bool
	SuppressionReason string
}

// Summary tallies a run's findings by disposition.
type Summary struct {
	Errors     int
	Warnings   int
	Info       int
	Suppressed int
}

// RunLog is the complete auditable record of one analysis run.
type RunLog struct {
	ID            string
	Version       string
	Timestamp     string
	DurationSecs  float64
	FilesAnalyzed int
	NodesParsed   int
	Cancelled     bool
	Failed        bool
	Summary       Summary
	Findings      []Finding
}

// suppressRe matches an inline suppression comment in any language's
// comment syntax: the marker is language-agnostic, searched anywhere on
// the line, per original_source/crates/core/src/suppress.rs.
var suppressRe = regexp.MustCompile(`revet-ignore\s+([\w\-\*]+(?:\s+[\w\-\*]+)*)`)

// ParseInlineSuppressions scans source lines for `revet-ignore <prefix>...`
// markers and returns a map of 1-based line number to the prefixes it
// suppresses.
func ParseInlineSuppressions(src []byte) map[int][]string {
	out := make(map[int][]string)
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		m := suppressRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[i+1] = strings.Fields(m[1])
	}
	return out
}

func matchesSuppression(prefixes []string, findingPrefix string) bool {
	for _, p := range prefixes {
		if p == "*" || p == findingPrefix {
			return true
		}
	}
	return false
}

// ApplyInline suppresses findings whose prefix is named by a
// revet-ignore marker on the finding's own line or the line immediately
// above it.
func ApplyInline(fs []Finding, inline map[int][]string) []Finding {
	out := make([]Finding, len(fs))
	for i, f := range fs {
		out[i] = f
		if out[i].Suppressed {
			continue
		}
		if prefixes, ok := inline[f.Line]; ok && matchesSuppression(prefixes, f.Prefix) {
			out[i].Suppressed = true
			out[i].SuppressionReason = "inline"
			continue
		}
		if prefixes, ok := inline[f.Line-1]; ok && matchesSuppression(prefixes, f.Prefix) {
			out[i].Suppressed = true
			out[i].SuppressionReason = "inline"
		}
	}
	return out
}

// ApplyPerPath suppresses findings whose file matches a configured glob
// and whose prefix is in that glob's prefix list (or the list is ["*"]).
func ApplyPerPath(fs []Finding, rules map[string][]string) []Finding {
	out := make([]Finding, len(fs))
	for i, f := range fs {
		out[i] = f
		if out[i].Suppressed {
			continue
		}
		for glob, prefixes := range rules {
			if !config.GlobMatch(glob, f.File) {
				continue
			}
			if matchesSuppression(prefixes, f.Prefix) {
				out[i].Suppressed = true
				out[i].SuppressionReason = "per-path rule: " + glob
				break
			}
		}
	}
	return out
}

// ApplyGlobalID suppresses findings whose ID appears in ids.
func ApplyGlobalID(fs []Finding, ids []string) []Finding {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := make([]Finding, len(fs))
	for i, f := range fs {
		out[i] = f
		if !out[i].Suppressed && set[f.ID] {
			out[i].Suppressed = true
			out[i].SuppressionReason = "per-path rule: finding-id"
		}
	}
	return out
}

// ApplyBaseline suppresses findings whose (id, file, lineBucket, message)
// signature matches a baseline entry. bl may be nil, meaning no baseline
// exists (or the caller passed the no-baseline escape), in which case
// findings pass through unchanged.
func ApplyBaseline(fs []Finding, bl *baseline.Baseline) []Finding {
	out := make([]Finding, len(fs))
	for i, f := range fs {
		out[i] = f
		if bl == nil || out[i].Suppressed {
			continue
		}
		sig := baseline.Signature(f.ID, f.File, f.Line, f.Message)
		if bl.Contains(sig) {
			out[i].Suppressed = true
			out[i].SuppressionReason = "baseline"
		}
	}
	return out
}

// Renumber sorts findings by (prefix, file, line), then assigns a
// contiguous 1..N sequence per prefix, producing deterministic IDs
// across runs on identical input (spec §5(b)). Suppressed findings are
// numbered too — retained, not dropped.
func Renumber(fs []Finding) []Finding {
	out := make([]Finding, len(fs))
	copy(out, fs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prefix != out[j].Prefix {
			return out[i].Prefix < out[j].Prefix
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})

	counters := make(map[string]int)
	for i := range out {
		counters[out[i].Prefix]++
		out[i].ID = out[i].Prefix + "-" + strconv.Itoa(counters[out[i].Prefix])
	}
	return out
}

// Summarize computes a RunLog Summary over fs.
func Summarize(fs []Finding) Summary {
	var s Summary
	for _, f := range fs {
		if f.Suppressed {
			s.Suppressed++
			continue
		}
		switch f.Severity {
		case Error:
			s.Errors++
		case Warning:
			s.Warnings++
		case Info:
			s.Info++
		}
	}
	return s
}
