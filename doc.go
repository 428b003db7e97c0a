// Package revet is the embeddable core of a deterministic, multi-language
// static analysis engine. It indexes a repository into a language-neutral
// graph (internal/graph), runs a fixed dispatcher of file- and
// graph-level analyzers (internal/analyze) over it, narrows findings to
// a change's actual blast radius when a diff base is supplied
// (internal/impact), and runs every finding through a four-layer
// suppression pipeline before handing the caller a RunLog
// (internal/findings).
//
// revet never shells out to a formatter, never prints to a terminal, and
// never reads .revet.toml itself — a caller (typically the CLI under
// cmd/revet) parses configuration into a Config and passes it in. This
// mirrors the teacher engine's shape: Engine.New took functional Options
// instead of a config file, and callers built a Store/Runtime pair
// themselves; here the pair is a pipeline.Pipeline and a cache.FileCache.
//
// # Usage
//
//	cfg := &revet.Config{Modules: map[string]bool{"security": true, "dependency": true}}
//	eng, err := revet.New("/path/to/repo", cfg)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	runLog, err := eng.Analyze(context.Background(), nil) // nil paths = whole repo
//	if err != nil {
//	    return err
//	}
//	fmt.Println(runLog.Summary.Errors, "errors,", len(runLog.Findings), "findings")
//
// Analyze always writes its RunLog to <repo>/.revet-cache/runs/<epochMs>.json
// before returning, even when it returns an error (the run-log emission
// contract: a failed run still produces an auditable record). Review
// additionally tags each finding in a file whose symbols had a breaking
// signature change relative to a git base ref with how many dependents
// that change affects; Diff does
// the same and further drops any finding whose line wasn't touched by
// that diff.
//
// # Query API
//
// [Engine.Query] returns a [QueryBuilder] over the most recently computed
// graph, carrying forward four of the teacher's seven graph operations —
// the ones spec-shaped for impact analysis rather than editor
// navigation:
//
//   - [QueryBuilder.Callers] — who calls this symbol, transitively.
//   - [QueryBuilder.Callees] — what this symbol calls, transitively.
//   - [QueryBuilder.Dependencies] — what this file imports, transitively.
//   - [QueryBuilder.Dependents] — who imports this file, transitively.
//
// DefinitionAt, ReferencesTo, and Implementations are not carried
// forward: they are position-indexed LSP navigation operations, and this
// graph stores symbol ranges but no reverse line/column index, and while
// it defines an Implements edge kind, no parser emits Implements edges
// (see DESIGN.md).
package revet
