// Package pipeline orchestrates the three-phase parse pipeline: parallel
// hash-and-parse, serial path-sorted merge, serial cross-file resolution.
// Phase A is grounded on the teacher's IndexFilesParallel
// (engine_parallel.go), but uses golang.org/x/sync/errgroup in place of
// the teacher's hand-rolled channel and WaitGroup pair, and Phase B/C use
// internal/graph and internal/resolve instead of SQLite batch commits.
package pipeline

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/revet-dev/revet-core/internal/cache"
	"github.com/revet-dev/revet-core/internal/diagnostic"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
	"github.com/revet-dev/revet-core/internal/parser"
	"github.com/revet-dev/revet-core/internal/resolve"
)

// skipDirs mirrors the teacher's walkListFiles exclusion list for the
// non-git fallback walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".git":         true,
}

// Pipeline wires a parser registry and a fragment cache into the
// three-phase indexing operation.
type Pipeline struct {
	Registry *parser.Registry
	Cache    *cache.FileCache
}

// New returns a Pipeline over reg and c.
func New(reg *parser.Registry, c *cache.FileCache) *Pipeline {
	return &Pipeline{Registry: reg, Cache: c}
}

// Result is the outcome of a full Run: the merged, resolved graph, plus
// every diagnostic accumulated along the way. A Result with Diagnostics
// but no error is the expected, common case (spec §7).
type Result struct {
	Graph       *graph.Graph
	Diagnostics []diagnostic.Diagnostic
}

type fileOutcome struct {
	relPath string
	hash    string
	frag    *parser.FileFragment
	perr    *parser.ParseError
}

// Discover enumerates files under root honoring ignorePaths (gitignore
// syntax, relative to root). It prefers `git ls-files --cached --others
// --exclude-standard` (the teacher's gitListFiles), falling back to
// filepath.WalkDir (the teacher's walkListFiles) when root is not a git
// repository. Only extensions known to the registry are returned.
func (p *Pipeline) Discover(root string, ignorePaths []string) ([]string, error) {
	matcher := ignore.CompileIgnoreLines(ignorePaths...)

	paths, err := gitListFiles(root)
	if err != nil {
		paths, err = walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}

	var filtered []string
	for _, relPath := range paths {
		if matcher != nil && matcher.MatchesPath(relPath) {
			continue
		}
		if _, ok := p.Registry.ForExtension(strings.ToLower(filepath.Ext(relPath))); ok {
			filtered = append(filtered, relPath)
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, filepath.ToSlash(line))
		}
	}
	return paths, nil
}

func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Run executes all three phases over relPaths (repo-relative), reading
// file contents under root. Parse errors are non-fatal: the affected
// file contributes only its File node plus a diagnostic; only a hard
// I/O failure reading a file aborts the run.
func (p *Pipeline) Run(ctx context.Context, root string, relPaths []string) (*Result, error) {
	outcomes, err := p.phaseA(ctx, root, relPaths)
	if err != nil {
		return nil, err
	}

	g, states, diags := phaseB(outcomes)

	resolveDiags := resolve.Run(g, states)
	diags = append(diags, resolveDiags...)

	return &Result{Graph: g, Diagnostics: diags}, nil
}

// phaseA hashes, cache-probes, and parses every file on a bounded worker
// pool. No shared mutable state is written by a worker; results are
// collected into a slice indexed by input order and reordered in phaseB.
func (p *Pipeline) phaseA(ctx context.Context, root string, relPaths []string) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(relPaths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, relPath := range relPaths {
		i, relPath := i, relPath
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			content, err := os.ReadFile(filepath.Join(root, relPath))
			if err != nil {
				return err
			}

			hash := identity.ContentHash(content)

			if p.Cache != nil {
				if frag, ok, cerr := p.Cache.Get(hash); cerr == nil && ok {
					outcomes[i] = fileOutcome{relPath: relPath, hash: hash, frag: frag}
					return nil
				}
			}

			ext := strings.ToLower(filepath.Ext(relPath))
			capability, ok := p.Registry.ForExtension(ext)
			if !ok {
				return nil
			}

			frag, perr := capability.Parse(relPath, content)
			if perr != nil {
				outcomes[i] = fileOutcome{relPath: relPath, hash: hash, perr: perr}
				return nil
			}

			if p.Cache != nil {
				_ = p.Cache.Put(hash, frag)
			}
			outcomes[i] = fileOutcome{relPath: relPath, hash: hash, frag: frag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// phaseB merges fragments into a fresh global graph in path-sorted order,
// eliminating any merge-order nondeterminism. It is serial by design.
func phaseB(outcomes []fileOutcome) (*graph.Graph, map[string]*parser.ParseState, []diagnostic.Diagnostic) {
	sorted := make([]fileOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].relPath < sorted[j].relPath })

	g := graph.New()
	states := make(map[string]*parser.ParseState)
	var diags []diagnostic.Diagnostic

	for _, outcome := range sorted {
		if outcome.perr != nil {
			diags = append(diags, diagnostic.Diagnostic{
				Kind: diagnostic.KindParseFailure, Path: outcome.relPath,
				Message: outcome.perr.Message,
			})
			fileID := identity.NodeID(outcome.relPath, outcome.relPath, string(graph.KindFile))
			_, _ = g.InsertNode(&graph.Node{ID: fileID, Kind: graph.KindFile, Loc: graph.Location{Path: outcome.relPath, StartLine: 1}})
			continue
		}
		if outcome.frag == nil {
			continue
		}

		for _, n := range outcome.frag.Nodes {
			if _, err := g.InsertNode(n); err != nil {
				diags = append(diags, diagnostic.Diagnostic{
					Kind: diagnostic.KindParseFailure, Path: outcome.relPath, Message: err.Error(),
				})
			}
		}
		for _, e := range outcome.frag.Edges {
			if err := g.InsertEdge(e.Src, e.Dst, e.Kind); err != nil {
				diags = append(diags, diagnostic.Diagnostic{
					Kind: diagnostic.KindParseFailure, Path: outcome.relPath, Message: err.Error(),
				})
			}
		}
		state := outcome.frag.State
		states[outcome.relPath] = &state
	}

	return g, states, diags
}
