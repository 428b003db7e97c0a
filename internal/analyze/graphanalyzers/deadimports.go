package graphanalyzers

import (
	"fmt"
	"os"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/graph"
)

// alwaysSkipImportNames are never flagged as unused regardless of
// occurrence count: Rust meta-keywords in use-paths and the conventional
// "ignore" identifier.
var alwaysSkipImportNames = map[string]bool{"self": true, "super": true, "crate": true, "_": true}

// DeadImports detects imported names never referenced again in their own
// file, grounded on
// original_source/crates/core/src/analyzer/dead_imports.rs. The prefix is
// DIMPORT, not the original's IMP, to match this repo's analyzer table.
type DeadImports struct{}

func NewDeadImports() *DeadImports { return &DeadImports{} }

func (a *DeadImports) Name() string   { return "Dead Imports" }
func (a *DeadImports) Prefix() string { return "DIMPORT" }

func (a *DeadImports) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("dead_imports") }

type importSite struct {
	line int
	name string
}

func (a *DeadImports) Analyze(g *graph.Graph, _ *config.Config) []findings.Finding {
	byFile := map[string][]importSite{}

	for _, n := range g.Nodes() {
		if n.Kind != graph.KindImport {
			continue
		}
		spec := n.Attrs["specifier"]
		name := importedNameFromSpecifier(spec)
		if name == "" {
			continue
		}
		byFile[n.Loc.Path] = append(byFile[n.Loc.Path], importSite{line: n.Loc.StartLine, name: name})
	}

	var out []findings.Finding
	for filePath, imports := range byFile {
		content, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}
		text := string(content)
		lines := strings.Split(text, "\n")

		for _, imp := range imports {
			if imp.name == "*" || alwaysSkipImportNames[imp.name] {
				continue
			}

			var importLine string
			if imp.line > 0 && imp.line <= len(lines) {
				importLine = lines[imp.line-1]
			}

			localName := imp.name
			if alias, ok := extractAlias(importLine, imp.name); ok {
				localName = alias
			}

			if countWord(text, localName) <= 1 {
				out = append(out, findings.Finding{
					Prefix:     "DIMPORT",
					Severity:   findings.Warning,
					File:       filePath,
					Line:       imp.line,
					Message:    fmt.Sprintf("`%s` is imported but never used", localName),
					Suggestion: fmt.Sprintf("Remove the unused import of `%s`", localName),
				})
			}
		}
	}
	return out
}

// importedNameFromSpecifier derives the local binding a bare import
// introduces from its specifier string, since this graph's Import nodes
// carry only a raw specifier (no separately-tracked imported-name list).
func importedNameFromSpecifier(spec string) string {
	spec = strings.Trim(spec, `"'`)
	if spec == "" {
		return ""
	}
	if i := strings.LastIndex(spec, "/"); i >= 0 {
		spec = spec[i+1:]
	}
	if i := strings.LastIndex(spec, "."); i >= 0 && !strings.HasPrefix(spec, ".") {
		spec = spec[i+1:]
	}
	return spec
}

// extractAlias looks for "<name> as <ident>" anywhere on the import line.
func extractAlias(line, name string) (string, bool) {
	search := name + " as "
	pos := strings.Index(line, search)
	if pos < 0 {
		return "", false
	}
	after := line[pos+len(search):]
	var alias strings.Builder
	for _, c := range after {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			alias.WriteRune(c)
		} else {
			break
		}
	}
	if alias.Len() == 0 {
		return "", false
	}
	return alias.String(), true
}

// countWord counts non-overlapping, word-boundary occurrences of word in
// content.
func countWord(content, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	i := 0
	for i+len(word) <= len(content) {
		if content[i:i+len(word)] == word {
			beforeOK := i == 0 || !isIdentByte(content[i-1])
			afterOK := i+len(word) >= len(content) || !isIdentByte(content[i+len(word)])
			if beforeOK && afterOK {
				count++
			}
			i += len(word)
		} else {
			i++
		}
	}
	return count
}

func isIdentByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}
