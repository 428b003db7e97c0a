package baseline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsNilNotError(t *testing.T) {
	t.Parallel()
	bl, err := Load(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.NoError(t, err)
	assert.Nil(t, bl)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "baseline.jsonl")

	entries := []Entry{
		Signature("SEC-1", "pkg/a.go", 42, "hardcoded secret"),
		Signature("SQL-3", "pkg/b.go", 7, "unparameterized query"),
	}
	require.NoError(t, Save(path, entries))

	bl, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, bl)

	assert.True(t, bl.Contains(Signature("SEC-1", "pkg/a.go", 42, "hardcoded secret")))
	assert.True(t, bl.Contains(Signature("SQL-3", "pkg/b.go", 7, "unparameterized query")))
	assert.False(t, bl.Contains(Signature("SEC-1", "pkg/a.go", 42, "a different message")))
}

func TestSave_DeduplicatesAndSorts(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "baseline.jsonl")

	sig := Signature("SEC-1", "pkg/a.go", 42, "hardcoded secret")
	require.NoError(t, Save(path, []Entry{sig, sig, sig}))

	bl, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, bl)
	assert.Len(t, bl.set, 1)
}

func TestContains_ToleratesLineShift(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "baseline.jsonl")
	require.NoError(t, Save(path, []Entry{Signature("SEC-1", "pkg/a.go", 42, "hardcoded secret")}))

	bl, err := Load(path)
	require.NoError(t, err)

	// A one-line whitespace-only shift still buckets into the same window.
	assert.True(t, bl.Contains(Signature("SEC-1", "pkg/a.go", 43, "hardcoded secret")))
}

func TestContains_NilBaselineNeverMatches(t *testing.T) {
	t.Parallel()
	var bl *Baseline
	assert.False(t, bl.Contains(Signature("SEC-1", "pkg/a.go", 42, "hardcoded secret")))
}
