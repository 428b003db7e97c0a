package fileanalyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/config"
)

func TestCustomRules_CarriesFixFindAndReplaceOntoFinding(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Rules: []config.CustomRule{{
		ID:         "no-console",
		Pattern:    `console\.log`,
		Message:    "use the logger instead of console.log",
		FixFind:    `console\.log`,
		FixReplace: "logger.Info",
	}}}
	analyzer := NewCustomRules(cfg)

	out := analyzer.Analyze("app.js", []byte("console.log(\"hi\")\n"), "javascript", cfg)
	require.Len(t, out, 1)
	assert.Equal(t, `console\.log`, out[0].FixFind)
	assert.Equal(t, "logger.Info", out[0].FixReplace)
	assert.Equal(t, `logger.Info("hi")`, out[0].FixHint)
}

func TestCustomRules_NoFixFieldsWithoutFixReplace(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Rules: []config.CustomRule{{
		ID:      "no-todo",
		Pattern: `TODO`,
		Message: "resolve the TODO before merging",
	}}}
	analyzer := NewCustomRules(cfg)

	out := analyzer.Analyze("app.js", []byte("// TODO: fix this\n"), "javascript", cfg)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].FixFind)
	assert.Empty(t, out[0].FixHint)
}
