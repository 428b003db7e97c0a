package findings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/baseline"
)

func TestParseInlineSuppressions_MatchesMarkerLine(t *testing.T) {
	t.Parallel()
	src := []byte("line one\napiKey := \"x\" // revet-ignore SEC\nline three\n")
	out := ParseInlineSuppressions(src)
	require.Contains(t, out, 2)
	assert.Equal(t, []string{"SEC"}, out[2])
}

func TestParseInlineSuppressions_WildcardAndMultiplePrefixes(t *testing.T) {
	t.Parallel()
	src := []byte("// revet-ignore SEC SQL\nfoo()\n")
	out := ParseInlineSuppressions(src)
	require.Contains(t, out, 1)
	assert.ElementsMatch(t, []string{"SEC", "SQL"}, out[1])
}

func TestApplyInline_SuppressesOwnAndPrecedingLine(t *testing.T) {
	t.Parallel()
	fs := []Finding{
		{Prefix: "SEC", File: "a.go", Line: 2},
		{Prefix: "SEC", File: "a.go", Line: 5},
	}
	inline := map[int][]string{1: {"SEC"}}
	out := ApplyInline(fs, inline)
	assert.True(t, out[0].Suppressed)
	assert.Equal(t, "inline", out[0].SuppressionReason)
	assert.False(t, out[1].Suppressed)
}

func TestApplyInline_WildcardMatchesAnyPrefix(t *testing.T) {
	t.Parallel()
	fs := []Finding{{Prefix: "SQL", File: "a.go", Line: 3}}
	inline := map[int][]string{3: {"*"}}
	out := ApplyInline(fs, inline)
	assert.True(t, out[0].Suppressed)
}

func TestApplyPerPath_MatchesGlobAndPrefix(t *testing.T) {
	t.Parallel()
	fs := []Finding{
		{Prefix: "SEC", File: "testdata/fixture.go"},
		{Prefix: "SQL", File: "testdata/fixture.go"},
		{Prefix: "SEC", File: "pkg/real.go"},
	}
	rules := map[string][]string{"testdata/*": {"SEC"}}
	out := ApplyPerPath(fs, rules)
	assert.True(t, out[0].Suppressed)
	assert.False(t, out[1].Suppressed)
	assert.False(t, out[2].Suppressed)
}

func TestApplyGlobalID_SuppressesListedIDs(t *testing.T) {
	t.Parallel()
	fs := []Finding{{ID: "SEC-1"}, {ID: "SEC-2"}}
	out := ApplyGlobalID(fs, []string{"SEC-1"})
	assert.True(t, out[0].Suppressed)
	assert.False(t, out[1].Suppressed)
}

func TestApplyBaseline_NilBaselineChangesNothing(t *testing.T) {
	t.Parallel()
	fs := []Finding{{ID: "SEC-1", File: "a.go", Line: 10, Message: "m"}}
	out := ApplyBaseline(fs, nil)
	assert.False(t, out[0].Suppressed)
}

func TestApplyBaseline_SuppressesMatchingSignature(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "baseline.jsonl")
	require.NoError(t, baseline.Save(path, []baseline.Entry{
		baseline.Signature("SEC-1", "a.go", 10, "hardcoded secret"),
	}))
	bl, err := baseline.Load(path)
	require.NoError(t, err)

	fs := []Finding{{ID: "SEC-1", File: "a.go", Line: 10, Message: "hardcoded secret"}}
	out := ApplyBaseline(fs, bl)
	assert.True(t, out[0].Suppressed)
	assert.Equal(t, "baseline", out[0].SuppressionReason)
}

func TestApplyLayers_AlreadySuppressedIsSkipped(t *testing.T) {
	t.Parallel()
	fs := []Finding{{Prefix: "SEC", File: "a.go", Line: 2, Suppressed: true, SuppressionReason: "inline"}}
	out := ApplyPerPath(fs, map[string][]string{"*": {"SEC"}})
	assert.Equal(t, "inline", out[0].SuppressionReason)
}

func TestRenumber_AssignsContiguousPerPrefixSortedByFileLine(t *testing.T) {
	t.Parallel()
	fs := []Finding{
		{Prefix: "SQL", File: "b.go", Line: 5},
		{Prefix: "SEC", File: "a.go", Line: 20},
		{Prefix: "SEC", File: "a.go", Line: 3},
		{Prefix: "SQL", File: "a.go", Line: 1},
	}
	out := Renumber(fs)

	byID := map[string]Finding{}
	for _, f := range out {
		byID[f.ID] = f
	}

	require.Contains(t, byID, "SEC-1")
	require.Contains(t, byID, "SEC-2")
	require.Contains(t, byID, "SQL-1")
	require.Contains(t, byID, "SQL-2")

	assert.Equal(t, 3, byID["SEC-1"].Line)
	assert.Equal(t, 20, byID["SEC-2"].Line)
	assert.Equal(t, "a.go", byID["SQL-1"].File)
	assert.Equal(t, "b.go", byID["SQL-2"].File)
}

func TestRenumber_IsDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	fs := []Finding{
		{Prefix: "SEC", File: "a.go", Line: 20},
		{Prefix: "SEC", File: "a.go", Line: 3},
	}
	first := Renumber(fs)
	second := Renumber(fs)
	assert.Equal(t, first, second)
}

func TestSummarize_TalliesByDispositionAndSeverity(t *testing.T) {
	t.Parallel()
	fs := []Finding{
		{Severity: Error},
		{Severity: Warning},
		{Severity: Info},
		{Severity: Error, Suppressed: true},
	}
	s := Summarize(fs)
	assert.Equal(t, Summary{Errors: 1, Warnings: 1, Info: 1, Suppressed: 1}, s)
}
