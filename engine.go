package revet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/revet-dev/revet-core/internal/analyze"
	"github.com/revet-dev/revet-core/internal/baseline"
	"github.com/revet-dev/revet-core/internal/cache"
	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/diagnostic"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/fixer"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/impact"
	"github.com/revet-dev/revet-core/internal/parser"
	"github.com/revet-dev/revet-core/internal/parser/golang"
	"github.com/revet-dev/revet-core/internal/parser/jsparse"
	"github.com/revet-dev/revet-core/internal/parser/pyparse"
	"github.com/revet-dev/revet-core/internal/pipeline"
)

const runLogVersion = "1"

// Engine orchestrates the revet pipeline: file discovery, content-hash
// change detection, parse-and-merge-and-resolve, analyzer dispatch, diff
// and impact propagation, and the suppression pipeline. Unlike the
// teacher's SQLite-backed Engine, there is no persistent database handle
// to hold open — state lives in the fragment cache directory and the
// in-memory graph produced by the most recent run.
type Engine struct {
	repoRoot  string
	cacheRoot string
	cfg       *config.Config

	registry   *parser.Registry
	cache      *cache.FileCache
	pipeline   *pipeline.Pipeline
	dispatcher *analyze.Dispatcher

	lastGraph *graph.Graph
}

// New creates an Engine rooted at repoRoot. cfg may be nil, in which
// case every analyzer family is disabled and Analyze returns empty
// results — callers almost always want to pass a populated Config.
func New(repoRoot string, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	cacheRoot := filepath.Join(repoRoot, ".revet-cache")
	fc, err := cache.Open(cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("revet: open cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(cacheRoot, "runs"), 0o755); err != nil {
		return nil, fmt.Errorf("revet: create run-log dir: %w", err)
	}

	reg := parser.NewRegistry(
		golang.Capability,
		jsparse.JavaScriptCapability,
		jsparse.TypeScriptCapability,
		pyparse.Capability,
	)

	return &Engine{
		repoRoot:   repoRoot,
		cacheRoot:  cacheRoot,
		cfg:        cfg,
		registry:   reg,
		cache:      fc,
		pipeline:   pipeline.New(reg, fc),
		dispatcher: analyze.New(cfg),
	}, nil
}

// Close releases Engine resources. The fragment cache is plain files on
// disk with no open handle to release; Close exists for symmetry with
// the teacher's Engine and as a hook for future resource lifecycles.
func (e *Engine) Close() error { return nil }

// Query returns a QueryBuilder over the graph produced by the most
// recent Analyze/Review/Diff call. It panics-never; called before any
// run, it wraps an empty graph.
func (e *Engine) Query() *QueryBuilder {
	g := e.lastGraph
	if g == nil {
		g = graph.New()
	}
	return &QueryBuilder{graph: g}
}

// runResult is the shared outcome of indexing + analysis, before any
// diff-specific filtering is applied.
type runResult struct {
	graph         *graph.Graph
	findings      []findings.Finding
	filesAnalyzed int
	nodesParsed   int
	diagnostics   []diagnostic.Diagnostic
}

// Analyze runs the full pipeline over paths (repo-root-relative; nil
// means "discover the whole repository") and returns a RunLog. It
// always writes the RunLog to <cache-root>/runs/<epochMs>.json, even
// when it returns an error — a failed run is still an auditable record
// (spec §4.11, §7).
func (e *Engine) Analyze(ctx context.Context, paths []string) (*RunLog, error) {
	start := time.Now()
	result, runErr := e.run(ctx, paths)

	log := e.buildRunLog(start, result, runErr)
	if writeErr := e.writeRunLog(log); writeErr != nil && runErr == nil {
		return log, fmt.Errorf("revet: write run log: %w", writeErr)
	}
	return log, runErr
}

// Review runs the full pipeline and additionally sets AffectedDependents,
// from the impact set computed against base, on every finding in a file
// that holds a symbol whose signature changed. Findings are otherwise
// unfiltered — every finding produced by
// every enabled analyzer is kept (spec §4.7's "review" mode).
func (e *Engine) Review(ctx context.Context, base string) (*RunLog, error) {
	start := time.Now()
	result, runErr := e.run(ctx, nil)
	if runErr == nil {
		e.annotateImpact(result, base)
	}

	log := e.buildRunLog(start, result, runErr)
	if writeErr := e.writeRunLog(log); writeErr != nil && runErr == nil {
		return log, fmt.Errorf("revet: write run log: %w", writeErr)
	}
	return log, runErr
}

// Diff runs the full pipeline, annotates impact as Review does, and
// additionally drops any finding whose line does not intersect the
// changed-line set of its file relative to base (spec §4.7's "diff"
// mode). A finding in an added file is always kept, since every line of
// an added file is "changed".
func (e *Engine) Diff(ctx context.Context, base string) (*RunLog, error) {
	start := time.Now()
	result, runErr := e.run(ctx, nil)
	if runErr == nil {
		_, changedLines, diffErr := impact.ComputeDiff(e.repoRoot, base)
		if diffErr != nil {
			result.diagnostics = append(result.diagnostics, diagnostic.Diagnostic{
				Kind:    diagnostic.KindParseFailure,
				Message: "diff: " + diffErr.Error(),
			})
		} else {
			e.annotateImpactLines(result, base, changedLines)
			result.findings = filterToChangedLines(result.findings, changedLines)
		}
	}

	log := e.buildRunLog(start, result, runErr)
	if writeErr := e.writeRunLog(log); writeErr != nil && runErr == nil {
		return log, fmt.Errorf("revet: write run log: %w", writeErr)
	}
	return log, runErr
}

// run performs indexing (discovery, parse, merge, resolve) and analysis,
// without any diff-specific behavior. Both Analyze and the impact-aware
// entry points build on this shared core.
func (e *Engine) run(ctx context.Context, paths []string) (*runResult, error) {
	if paths == nil {
		discovered, err := e.pipeline.Discover(e.repoRoot, e.cfg.IgnorePaths)
		if err != nil {
			return nil, fmt.Errorf("revet: discover: %w", err)
		}
		paths = discovered
	}

	pipelineResult, err := e.pipeline.Run(ctx, e.repoRoot, paths)
	if err != nil {
		return nil, fmt.Errorf("revet: index: %w", err)
	}
	e.lastGraph = pipelineResult.Graph

	sources, err := e.loadSources(paths)
	if err != nil {
		return nil, fmt.Errorf("revet: read sources: %w", err)
	}

	fileFindings, err := analyze.RunFileAnalyzers(ctx, e.dispatcher, sources, e.repoRoot, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("revet: file analyzers: %w", err)
	}
	graphFindings := analyze.RunGraphAnalyzers(ctx, e.dispatcher, pipelineResult.Graph, e.cfg)

	all := append(fileFindings, graphFindings...)
	all = e.suppress(all)

	return &runResult{
		graph:         pipelineResult.Graph,
		findings:      all,
		filesAnalyzed: len(paths),
		nodesParsed:   pipelineResult.Graph.NodeCount(),
		diagnostics:   pipelineResult.Diagnostics,
	}, nil
}

// loadSources reads every discovered file's content for the
// FileAnalyzer pass, tagging each with the language its extension maps
// to in the registry. Files with no registered capability (e.g. a
// tracked binary asset) are skipped — FileAnalyzers never see them, but
// the toolchain analyzer still scans the repository root directly via
// RepoLevelAnalyzer regardless of this list.
func (e *Engine) loadSources(paths []string) ([]analyze.SourceFile, error) {
	sources := make([]analyze.SourceFile, 0, len(paths))
	for _, relPath := range paths {
		ext := strings.ToLower(filepath.Ext(relPath))
		capability, ok := e.registry.ForExtension(ext)
		language := ""
		if ok {
			language = capability.Language
		}
		content, err := os.ReadFile(filepath.Join(e.repoRoot, relPath))
		if err != nil {
			return nil, err
		}
		sources = append(sources, analyze.SourceFile{Path: relPath, Content: content, Language: language})
	}
	return sources, nil
}

// suppress runs the four-layer suppression pipeline (spec §4.9) and
// renumbers the surviving findings. Renumbering happens on the full set,
// including suppressed entries, so IDs stay stable whether or not a
// finding ultimately gets filtered out of the report.
func (e *Engine) suppress(fs []findings.Finding) []findings.Finding {
	fs = findings.Renumber(fs)

	inline := e.collectInlineSuppressions(fs)
	for i := range fs {
		fs[i] = findings.ApplyInline(fs[i:i+1], inline[fs[i].File])[0]
	}
	fs = findings.ApplyPerPath(fs, e.cfg.IgnorePerPath)
	fs = findings.ApplyGlobalID(fs, e.cfg.IgnoreFindings)

	bl, _ := baseline.Load(filepath.Join(e.cacheRoot, "baseline.json"))
	fs = findings.ApplyBaseline(fs, bl)

	return fs
}

// collectInlineSuppressions scans every file that has at least one
// finding for revet-ignore markers, returning each file's per-line
// prefix map for ApplyInline to consult. Findings are grouped by file
// first since reading a file once for all of its findings is cheaper
// than once per finding.
func (e *Engine) collectInlineSuppressions(fs []findings.Finding) map[string]map[int][]string {
	byFile := map[string]bool{}
	for _, f := range fs {
		byFile[f.File] = true
	}

	perFile := map[string]map[int][]string{}
	for file := range byFile {
		abs := file
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(e.repoRoot, file)
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			continue
		}
		perFile[file] = findings.ParseInlineSuppressions(content)
	}
	return perFile
}

// annotateImpact builds a best-effort baseline graph from base and sets
// AffectedDependents on every finding whose file's changed symbols are
// reachable in the impact set.
func (e *Engine) annotateImpact(result *runResult, base string) {
	_, changedLines, err := impact.ComputeDiff(e.repoRoot, base)
	if err != nil {
		result.diagnostics = append(result.diagnostics, diagnostic.Diagnostic{
			Kind:    diagnostic.KindParseFailure,
			Message: "diff: " + err.Error(),
		})
		return
	}
	e.annotateImpactLines(result, base, changedLines)
}

func (e *Engine) annotateImpactLines(result *runResult, base string, changedLines map[string][]impact.LineRange) {
	baselineGraph := e.baselineGraph(base, changedLines)
	changedSymbols := impact.ChangedSymbols(result.graph, changedLines)

	var breaking []*graph.Node
	for _, n := range changedSymbols {
		if impact.SignatureChanged(n, baselineGraph) {
			breaking = append(breaking, n)
		}
	}
	if len(breaking) == 0 {
		return
	}

	impactSet := impact.Compute(result.graph, breaking, impact.DefaultMaxDepth)
	count := impact.AffectedDependents(impactSet)
	if count == 0 {
		return
	}

	breakingFiles := map[string]bool{}
	for _, n := range breaking {
		breakingFiles[n.Loc.Path] = true
	}
	for i := range result.findings {
		if breakingFiles[result.findings[i].File] {
			result.findings[i].AffectedDependents = count
		}
	}
}

// baselineGraph re-parses every changed file's content as it existed at
// base (via `git show base:<path>`) into a standalone graph, used only
// to look up prior signature attrs by node id. It is never merged or
// resolved against the current graph — SignatureChanged only needs a
// Lookup.
func (e *Engine) baselineGraph(base string, changedLines map[string][]impact.LineRange) *graph.Graph {
	g := graph.New()
	for relPath := range changedLines {
		ext := strings.ToLower(filepath.Ext(relPath))
		capability, ok := e.registry.ForExtension(ext)
		if !ok {
			continue
		}
		content, err := gitShow(e.repoRoot, base, relPath)
		if err != nil {
			continue
		}
		frag, perr := capability.Parse(relPath, content)
		if perr != nil {
			continue
		}
		for _, n := range frag.Nodes {
			_, _ = g.InsertNode(n)
		}
	}
	return g
}

func filterToChangedLines(fs []findings.Finding, changedLines map[string][]impact.LineRange) []findings.Finding {
	out := make([]findings.Finding, 0, len(fs))
	for _, f := range fs {
		if f.Suppressed {
			out = append(out, f)
			continue
		}
		ranges, ok := changedLines[f.File]
		if !ok {
			continue
		}
		for _, r := range ranges {
			if f.Line >= r.Start && f.Line <= r.End {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// buildRunLog assembles a RunLog from a run outcome, whether or not it
// succeeded. A nil result (run failed before producing anything) still
// yields a log with summary.errors incremented and the failure
// recorded, per spec §4.11/§7.
func (e *Engine) buildRunLog(start time.Time, result *runResult, runErr error) *RunLog {
	log := &RunLog{
		Version:      runLogVersion,
		Timestamp:    start.UTC().Format(time.RFC3339),
		DurationSecs: time.Since(start).Seconds(),
	}

	if result != nil {
		log.FilesAnalyzed = result.filesAnalyzed
		log.NodesParsed = result.nodesParsed
		log.Findings = result.findings
		log.Summary = findings.Summarize(result.findings)
	}

	if runErr != nil {
		log.Failed = true
		log.Summary.Errors++
	}

	return log
}

// writeRunLog assigns log.ID from the wall-clock millisecond at write
// time, resolving same-millisecond collisions with a counter suffix,
// then writes <cache-root>/runs/<id>.json.
func (e *Engine) writeRunLog(log *RunLog) error {
	runsDir := filepath.Join(e.cacheRoot, "runs")
	epochMs := time.Now().UnixMilli()

	id := strconv.FormatInt(epochMs, 10)
	path := filepath.Join(runsDir, id+".json")
	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		id = strconv.FormatInt(epochMs, 10) + "-" + strconv.Itoa(counter)
		path = filepath.Join(runsDir, id+".json")
		counter++
	}
	log.ID = id

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RunLogs enumerates every persisted run log id, newest-first. It is a
// reverse lexicographic sort on the id string: millisecond epochs of
// equal length therefore sort newest-first, and a counter-suffixed
// collision id ("<ms>-1") sorts just before its base id.
func (e *Engine) RunLogs() ([]string, error) {
	runsDir := filepath.Join(e.cacheRoot, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// LoadRunLog retrieves a single run log by id.
func (e *Engine) LoadRunLog(id string) (*RunLog, error) {
	path := filepath.Join(e.cacheRoot, "runs", id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var log RunLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// SaveBaseline writes the current (unsuppressed) finding set from log
// as the new suppression baseline, per spec §4.10.
func (e *Engine) SaveBaseline(log *RunLog) error {
	entries := make([]baseline.Entry, 0, len(log.Findings))
	for _, f := range log.Findings {
		if f.Suppressed {
			continue
		}
		entries = append(entries, baseline.Signature(f.ID, f.File, f.Line, f.Message))
	}
	return baseline.Save(filepath.Join(e.cacheRoot, "baseline.json"), entries)
}

// ApplyFixes writes every fixable, unsuppressed finding's regex
// substitution back to its source file (spec §4.6: auto-fix is applied
// only when the caller explicitly asks for it by calling this method,
// never as a side effect of Analyze/Review/Diff). It is grounded on
// original_source/crates/core/src/fixer.rs's apply_fixes.
func (e *Engine) ApplyFixes(log *RunLog) (*FixReport, error) {
	if log == nil {
		return &FixReport{}, nil
	}
	return fixer.ApplyFixes(log.Findings, e.repoRoot)
}

func gitShow(repoRoot, ref, relPath string) ([]byte, error) {
	cmd := exec.Command("git", "show", ref+":"+relPath)
	cmd.Dir = repoRoot
	return cmd.Output()
}
