package fileanalyzers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type knownTool struct {
	name                string
	invocationPatterns  []string
	declarationPatterns []string
	declareIn           string
}

// toolCatalog mirrors original_source/crates/core/src/analyzer/toolchain.rs.
var toolCatalog = []knownTool{
	{"rustfmt", []string{"cargo fmt", "rustfmt"}, []string{"rustfmt"}, "rust-toolchain.toml [toolchain] components"},
	{"clippy", []string{"cargo clippy"}, []string{"clippy"}, "rust-toolchain.toml [toolchain] components"},
	{"rust-analyzer", []string{"rust-analyzer"}, []string{"rust-analyzer"}, "rust-toolchain.toml [toolchain] components"},
	{"cargo-audit", []string{"cargo audit", "cargo-audit"}, []string{"cargo-audit", "cargo audit"}, "Cargo.toml [workspace.dependencies] or a cargo-install step"},
	{"cargo-tarpaulin", []string{"cargo tarpaulin", "cargo-tarpaulin"}, []string{"cargo-tarpaulin", "cargo tarpaulin"}, "a pinned cargo-install step in CI"},
	{"eslint", []string{"eslint", "npx eslint"}, []string{`"eslint"`, "'eslint'"}, "package.json devDependencies"},
	{"prettier", []string{"prettier", "npx prettier"}, []string{`"prettier"`, "'prettier'"}, "package.json devDependencies"},
	{"typescript (tsc)", []string{" tsc ", "npx tsc", "run tsc", `"tsc"`}, []string{`"typescript"`, "'typescript'"}, "package.json devDependencies"},
	{"jest", []string{" jest", "npx jest", "run jest"}, []string{`"jest"`, "'jest'"}, "package.json devDependencies"},
	{"vitest", []string{"vitest", "npx vitest"}, []string{`"vitest"`, "'vitest'"}, "package.json devDependencies"},
	{"ruff", []string{"ruff check", "ruff format", "run ruff", " ruff "}, []string{"ruff"}, "requirements-dev.txt or pyproject.toml [tool.ruff]"},
	{"mypy", []string{"mypy ", "run mypy", "python -m mypy"}, []string{"mypy"}, "requirements-dev.txt or pyproject.toml"},
	{"black", []string{"black ", "run black", "python -m black"}, []string{"black"}, "requirements-dev.txt or pyproject.toml"},
	{"pytest", []string{"pytest", "python -m pytest"}, []string{"pytest"}, "requirements-dev.txt or pyproject.toml"},
	{"flake8", []string{"flake8", "python -m flake8"}, []string{"flake8"}, "requirements-dev.txt or pyproject.toml"},
	{"golangci-lint", []string{"golangci-lint"}, []string{"golangci-lint"}, "tools.go or a pinned install step in CI"},
	{"mockgen", []string{"mockgen"}, []string{"mockgen"}, "tools.go"},
}

var toolchainCIFilenames = []string{".gitlab-ci.yml", ".gitlab-ci.yaml", "Makefile", "GNUmakefile", "makefile"}
var toolchainManifestFilenames = []string{
	"rust-toolchain.toml", "rust-toolchain", "package.json", "requirements-dev.txt",
	"requirements.txt", "pyproject.toml", "go.mod", "tools.go",
}

type toolInvocation struct {
	tool *knownTool
	file string
	line int
}

// Toolchain detects dev tools invoked in CI or scripts but never declared
// in a reproducible manifest. It works at the repo level: Analyze is a
// stub satisfying FileAnalyzer, and AnalyzeRepo does the real work via
// RepoLevelAnalyzer so the dispatcher runs it exactly once per repo.
type Toolchain struct{}

func NewToolchain() *Toolchain { return &Toolchain{} }

func (a *Toolchain) Name() string   { return "Toolchain Consistency" }
func (a *Toolchain) Prefix() string { return "TOOL" }

func (a *Toolchain) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("toolchain") }

func (a *Toolchain) Analyze(string, []byte, string, *config.Config) []findings.Finding { return nil }

func (a *Toolchain) AnalyzeRepo(repoRoot string, _ *config.Config) []findings.Finding {
	invocations := collectToolInvocations(repoRoot)
	declared := collectToolDeclarations(repoRoot)

	var out []findings.Finding
	for _, inv := range invocations {
		isDeclared := false
		for _, pat := range inv.tool.declarationPatterns {
			lp := strings.ToLower(pat)
			for d := range declared {
				if strings.Contains(d, lp) {
					isDeclared = true
					break
				}
			}
			if isDeclared {
				break
			}
		}
		if isDeclared {
			continue
		}
		out = append(out, findings.Finding{
			Prefix:   "TOOL",
			Severity: findings.Warning,
			File:     inv.file,
			Line:     inv.line,
			Message:  fmt.Sprintf("`%s` is invoked in CI/scripts but not declared in any manifest", inv.tool.name),
			Suggestion: fmt.Sprintf("Declare `%s` in %s so the tool version is reproducible",
				inv.tool.name, inv.tool.declareIn),
		})
	}
	return out
}

func collectToolInvocations(repoRoot string) []toolInvocation {
	var results []toolInvocation
	seen := map[string]bool{}

	workflowsDir := filepath.Join(repoRoot, ".github", "workflows")
	if entries, err := os.ReadDir(workflowsDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
			if ext == "yml" || ext == "yaml" {
				scanFileForToolInvocations(filepath.Join(workflowsDir, e.Name()), &results, seen)
			}
		}
	}

	for _, name := range toolchainCIFilenames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			scanFileForToolInvocations(p, &results, seen)
		}
	}

	if entries, err := os.ReadDir(repoRoot); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.TrimPrefix(filepath.Ext(e.Name()), ".") == "sh" {
				scanFileForToolInvocations(filepath.Join(repoRoot, e.Name()), &results, seen)
			}
		}
	}

	return results
}

func scanFileForToolInvocations(path string, results *[]toolInvocation, seen map[string]bool) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		lower := strings.ToLower(line)
		for i := range toolCatalog {
			tool := &toolCatalog[i]
			key := tool.name + "\x00" + path
			if seen[key] {
				continue
			}
			for _, pat := range tool.invocationPatterns {
				if strings.Contains(lower, pat) {
					seen[key] = true
					*results = append(*results, toolInvocation{tool: tool, file: path, line: lineNo})
					break
				}
			}
		}
	}
}

func collectToolDeclarations(repoRoot string) map[string]bool {
	declared := map[string]bool{}
	for _, name := range toolchainManifestFilenames {
		addDeclarationLines(filepath.Join(repoRoot, name), declared)
	}
	if entries, err := os.ReadDir(repoRoot); err == nil {
		for _, e := range entries {
			if !e.IsDir() && e.Name() == "tools.go" {
				addDeclarationLines(filepath.Join(repoRoot, e.Name()), declared)
			}
		}
	}
	return declared
}

func addDeclarationLines(path string, declared map[string]bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(content), "\n") {
		declared[strings.ToLower(line)] = true
	}
}
