package graphanalyzers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
)

// Complexity thresholds mirror
// original_source/crates/core/src/analyzer/complexity.rs.
const (
	fnLenWarn  = 50
	fnLenError = 100

	paramWarn  = 5
	paramError = 8

	complexityWarn  = 10
	complexityError = 20

	nestingWarn  = 4
	nestingError = 6
)

// Complexity flags overly long, over-parameterized, heavily-branching, or
// deeply-nested functions across four independent metrics.
type Complexity struct{}

func NewComplexity() *Complexity { return &Complexity{} }

func (a *Complexity) Name() string   { return "Complexity" }
func (a *Complexity) Prefix() string { return "CMPLX" }

func (a *Complexity) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("complexity") }

func langFromPath(path string) string {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "py":
		return "python"
	case "ts", "tsx":
		return "typescript"
	case "js", "jsx":
		return "javascript"
	case "rs":
		return "rust"
	case "go":
		return "go"
	case "java":
		return "java"
	case "cs":
		return "csharp"
	case "kt", "kts":
		return "kotlin"
	case "rb":
		return "ruby"
	case "php":
		return "php"
	case "swift":
		return "swift"
	default:
		return "generic"
	}
}

func functionDisplayName(n *graph.Node) string {
	if _, qualified, _, ok := identity.SplitNodeID(n.ID); ok {
		if i := strings.LastIndex(qualified, "."); i >= 0 {
			return qualified[i+1:]
		}
		return qualified
	}
	return n.ID
}

// paramCount derives a parameter count from the node's "signature"
// attribute (the raw parameter-list text every parser capability
// captures, parens included, e.g. "(a, b int)" or "()"), since this
// graph's Node has no structured parameter list the way
// original_source/crates/core/src/analyzer/complexity.rs's
// NodeData::Function::parameters does.
func paramCount(n *graph.Node) int {
	raw, ok := n.Attrs["signature"]
	if !ok {
		return 0
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	return len(strings.Split(raw, ","))
}

func (a *Complexity) Analyze(g *graph.Graph, _ *config.Config) []findings.Finding {
	var out []findings.Finding

	for _, node := range g.Nodes() {
		if node.Kind != graph.KindFunction && node.Kind != graph.KindMethod {
			continue
		}

		startLine := node.Loc.StartLine
		endLine := node.Loc.EndLine
		if endLine <= 0 {
			endLine = startLine
		}
		fnLength := endLine - startLine
		if fnLength < 0 {
			fnLength = 0
		}
		params := paramCount(node)
		lang := langFromPath(node.Loc.Path)
		name := functionDisplayName(node)

		out = append(out, lengthFindings(name, node.Loc.Path, startLine, fnLength)...)
		out = append(out, paramFindings(name, node.Loc.Path, startLine, params)...)

		if startLine == 0 || endLine < startLine {
			continue
		}
		content, err := os.ReadFile(node.Loc.Path)
		if err != nil {
			continue
		}
		allLines := strings.Split(string(content), "\n")
		startIdx := startLine - 1
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx := endLine
		if endIdx > len(allLines) {
			endIdx = len(allLines)
		}
		if startIdx >= endIdx {
			continue
		}
		fnLines := allLines[startIdx:endIdx]

		complexity := cyclomaticComplexity(fnLines, lang)
		out = append(out, complexityFindings(name, node.Loc.Path, startLine, complexity)...)

		nesting := maxNestingDepth(fnLines, lang)
		out = append(out, nestingFindings(name, node.Loc.Path, startLine, nesting)...)
	}

	return out
}

func lengthFindings(name, path string, startLine, fnLength int) []findings.Finding {
	switch {
	case fnLength >= fnLenError:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Error, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` is %d lines long (max recommended: %d)", name, fnLength, fnLenError),
			Suggestion: "Break this function into smaller, focused functions",
		}}
	case fnLength >= fnLenWarn:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Warning, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` is %d lines long (recommended: <%d)", name, fnLength, fnLenWarn),
			Suggestion: "Consider breaking this function into smaller, focused functions",
		}}
	}
	return nil
}

func paramFindings(name, path string, startLine, params int) []findings.Finding {
	switch {
	case params >= paramError:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Error, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has %d parameters (max recommended: %d)", name, params, paramError),
			Suggestion: "Group related parameters into a struct or configuration object",
		}}
	case params >= paramWarn:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Warning, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has %d parameters (recommended: <%d)", name, params, paramWarn),
			Suggestion: "Consider grouping related parameters into a struct or object",
		}}
	}
	return nil
}

func complexityFindings(name, path string, startLine, complexity int) []findings.Finding {
	switch {
	case complexity >= complexityError:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Error, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has cyclomatic complexity of %d (max recommended: %d)", name, complexity, complexityError),
			Suggestion: "Reduce branching by extracting helper functions or simplifying logic",
		}}
	case complexity >= complexityWarn:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Warning, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has cyclomatic complexity of %d (recommended: <%d)", name, complexity, complexityWarn),
			Suggestion: "Consider reducing branching by extracting helper functions",
		}}
	}
	return nil
}

func nestingFindings(name, path string, startLine, nesting int) []findings.Finding {
	switch {
	case nesting >= nestingError:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Error, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has nesting depth of %d (max recommended: %d)", name, nesting, nestingError),
			Suggestion: "Reduce nesting using early returns or helper functions",
		}}
	case nesting >= nestingWarn:
		return []findings.Finding{{
			Prefix: "CMPLX", Severity: findings.Warning, File: path, Line: startLine,
			Message:    fmt.Sprintf("Function `%s` has nesting depth of %d (recommended: <%d)", name, nesting, nestingWarn),
			Suggestion: "Consider reducing nesting using early returns or helper functions",
		}}
	}
	return nil
}

var genericBranchKeywords = []string{
	"if (", "if(", "else if (", "else if(", "} else {", "for (", "for(",
	"while (", "while(", "switch (", "switch(", "case ", "catch (", "catch(", "catch {",
}

// cyclomaticComplexity counts branch points on top of a base path of 1,
// using a per-language keyword heuristic.
func cyclomaticComplexity(lines []string, lang string) int {
	complexity := 1
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*") {
			continue
		}
		complexity += branchesInLine(t, lang)
	}
	return complexity
}

func branchesInLine(t, lang string) int {
	n := 0
	switch lang {
	case "python":
		for _, kw := range []string{"if ", "elif ", "for ", "while ", " and ", " or ", "except"} {
			if strings.Contains(t, kw) {
				n++
			}
		}
		if t == "else:" || strings.HasPrefix(t, "else:") {
			n++
		}
	case "rust":
		for _, kw := range []string{"if ", "} else {", "else if ", "for ", "while ", "loop {", "match "} {
			if strings.Contains(t, kw) {
				n++
			}
		}
		n += strings.Count(t, "=>")
		n += strings.Count(t, "&&")
		n += strings.Count(t, "||")
		n += strings.Count(t, "?")
	case "go":
		for _, kw := range []string{"if ", "} else {", "else if ", "for ", "switch ", "select {", "case "} {
			if strings.Contains(t, kw) {
				n++
			}
		}
		n += strings.Count(t, "&&")
		n += strings.Count(t, "||")
	default:
		for _, kw := range genericBranchKeywords {
			if strings.Contains(t, kw) {
				n++
			}
		}
		n += strings.Count(t, "&&")
		n += strings.Count(t, "||")
		n += strings.Count(t, "??")
		n += strings.Count(t, " ? ")
	}
	return n
}

// maxNestingDepth returns the deepest block nesting within a function body,
// relative to the function's own top-level braces (or indent, for Python).
func maxNestingDepth(lines []string, lang string) int {
	if lang == "python" {
		return pythonMaxNesting(lines)
	}

	depth := 0
	maxDepth := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*") {
			continue
		}
		for _, ch := range t {
			switch ch {
			case '{':
				depth++
				if depth > maxDepth {
					maxDepth = depth
				}
			case '}':
				depth--
				if depth < 0 {
					depth = 0
				}
			}
		}
	}
	if maxDepth == 0 {
		return 0
	}
	return maxDepth - 1
}

func pythonMaxNesting(lines []string) int {
	if len(lines) <= 1 {
		return 0
	}
	baseline := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		baseline = len(l) - len(strings.TrimLeft(l, " \t"))
		break
	}
	if baseline < 0 {
		return 0
	}

	maxExtra := 0
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent >= baseline {
			extra := (indent - baseline) / 4
			if extra > maxExtra {
				maxExtra = extra
			}
		}
	}
	return maxExtra
}
