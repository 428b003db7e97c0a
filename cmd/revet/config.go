package main

import "github.com/revet-dev/revet-core"

// allModuleNames are every analyzer family's config key, used to build
// an "everything on" default Config when --modules is not given.
var allModuleNames = []string{
	"security", "ml", "infra", "react", "async", "dependency", "errors",
	"toolchain", "cycles", "complexity", "dead_imports", "dead_code",
}

func buildConfig(modules []string) *revet.Config {
	names := modules
	if len(names) == 0 {
		names = allModuleNames
	}

	enabled := make(map[string]bool, len(names))
	for _, name := range names {
		enabled[name] = true
	}

	return &revet.Config{
		Modules: enabled,
	}
}
