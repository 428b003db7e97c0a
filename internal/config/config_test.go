package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleEnabled_DefaultsFalseWhenAbsent(t *testing.T) {
	t.Parallel()
	c := &Config{Modules: map[string]bool{"security": true}}
	assert.True(t, c.ModuleEnabled("security"))
	assert.False(t, c.ModuleEnabled("infra"))
}

func TestModuleEnabled_NilConfig(t *testing.T) {
	t.Parallel()
	var c *Config
	assert.False(t, c.ModuleEnabled("security"))
}

func TestGlobMatch_ExactGlob(t *testing.T) {
	t.Parallel()
	assert.True(t, GlobMatch("*.go", "main.go"))
	assert.False(t, GlobMatch("*.go", "main.py"))
}

func TestGlobMatch_FallsBackToBaseName(t *testing.T) {
	t.Parallel()
	assert.True(t, GlobMatch("*.generated.go", "internal/pkg/thing.generated.go"))
}
