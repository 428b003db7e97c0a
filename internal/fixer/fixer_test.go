package fixer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/findings"
)

func writeTemp(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestApplyFixes_RewritesMatchingLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemp(t, dir, "app.js", "console.log(\"hi\")\nconsole.log(\"bye\")\n")

	fs := []findings.Finding{
		{ID: "CUSTOM-1", File: "app.js", Line: 1, FixFind: `console\.log`, FixReplace: "logger.Info"},
		{ID: "CUSTOM-2", File: "app.js", Line: 2, FixFind: `console\.log`, FixReplace: "logger.Info"},
	}

	report, err := ApplyFixes(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 0, report.Skipped)

	out, err := os.ReadFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "logger.Info(\"hi\")\nlogger.Info(\"bye\")\n", string(out))
}

func TestApplyFixes_SkipsSuppressedAndUnfixable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemp(t, dir, "app.js", "console.log(\"hi\")\n")

	fs := []findings.Finding{
		{ID: "CUSTOM-1", File: "app.js", Line: 1, FixFind: `console\.log`, FixReplace: "logger.Info", Suppressed: true},
		{ID: "CUSTOM-2", File: "app.js", Line: 1, Message: "no fix defined"},
	}

	report, err := ApplyFixes(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 0, report.Skipped)

	out, err := os.ReadFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(\"hi\")\n", string(out))
}

func TestApplyFixes_SkipsWhenPatternDoesNotMatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemp(t, dir, "app.js", "doStuff()\n")

	fs := []findings.Finding{
		{ID: "CUSTOM-1", File: "app.js", Line: 1, FixFind: `console\.log`, FixReplace: "logger.Info"},
	}

	report, err := ApplyFixes(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 1, report.Skipped)
}

func TestApplyFixes_PreservesNoTrailingNewline(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTemp(t, dir, "app.js", "console.log(\"hi\")")

	fs := []findings.Finding{
		{ID: "CUSTOM-1", File: "app.js", Line: 1, FixFind: `console\.log`, FixReplace: "logger.Info"},
	}

	_, err := ApplyFixes(fs, dir)
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "logger.Info(\"hi\")", string(out))
}
