// Package analyze defines the two analyzer contracts (FileAnalyzer,
// GraphAnalyzer) and the dispatcher that runs the registered families
// against a repository and its resolved graph.
package analyze

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/revet-dev/revet-core/internal/analyze/fileanalyzers"
	"github.com/revet-dev/revet-core/internal/analyze/graphanalyzers"
	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/graph"
)

// FileAnalyzer scans one file's raw content, independent of the graph.
type FileAnalyzer interface {
	Name() string
	Prefix() string
	Enabled(cfg *config.Config) bool
	Analyze(filePath string, content []byte, language string, cfg *config.Config) []findings.Finding
}

// GraphAnalyzer inspects the resolved global graph.
type GraphAnalyzer interface {
	Name() string
	Prefix() string
	Enabled(cfg *config.Config) bool
	Analyze(g *graph.Graph, cfg *config.Config) []findings.Finding
}

// SourceFile is the unit of work handed to FileAnalyzers.
type SourceFile struct {
	Path     string
	Content  []byte
	Language string
}

// Dispatcher owns the registered analyzer set.
type Dispatcher struct {
	fileAnalyzers  []FileAnalyzer
	graphAnalyzers []GraphAnalyzer
}

// New builds a dispatcher with all built-in analyzers plus any custom
// rules from cfg.
func New(cfg *config.Config) *Dispatcher {
	d := &Dispatcher{
		fileAnalyzers: []FileAnalyzer{
			fileanalyzers.NewSecretExposure(),
			fileanalyzers.NewSQLInjection(),
			fileanalyzers.NewMLPipeline(),
			fileanalyzers.NewInfra(),
			fileanalyzers.NewReactHooks(),
			fileanalyzers.NewAsyncPatterns(),
			fileanalyzers.NewDependency(),
			fileanalyzers.NewErrorHandling(),
			fileanalyzers.NewToolchain(),
		},
		graphAnalyzers: []GraphAnalyzer{
			graphanalyzers.NewCircularImports(),
			graphanalyzers.NewComplexity(),
			graphanalyzers.NewDeadImports(),
			graphanalyzers.NewDeadExports(),
		},
	}
	if custom := fileanalyzers.NewCustomRules(cfg); custom.Enabled(cfg) {
		d.fileAnalyzers = append(d.fileAnalyzers, custom)
	}
	return d
}

// checkPrefix panics if an analyzer emitted a finding under a prefix
// other than the one it declared — an internal-invariant violation
// per spec §7, not a recoverable condition.
func checkPrefix(name, prefix string, fs []findings.Finding) {
	for _, f := range fs {
		if f.Prefix != prefix {
			panic(fmt.Sprintf("analyzer %q declared prefix %q but emitted finding with prefix %q", name, prefix, f.Prefix))
		}
	}
}

// RunFileAnalyzers runs every enabled FileAnalyzer over files, one
// worker-pool task per file, mirroring the parse pipeline's Phase A
// concurrency shape.
func RunFileAnalyzers(ctx context.Context, d *Dispatcher, files []SourceFile, repoRoot string, cfg *config.Config) ([]findings.Finding, error) {
	enabled := make([]FileAnalyzer, 0, len(d.fileAnalyzers))
	for _, a := range d.fileAnalyzers {
		if a.Enabled(cfg) {
			enabled = append(enabled, a)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	perFile := make([][]findings.Finding, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			var out []findings.Finding
			for _, a := range enabled {
				fs := a.Analyze(f.Path, f.Content, f.Language, cfg)
				checkPrefix(a.Name(), a.Prefix(), fs)
				out = append(out, fs...)
			}
			perFile[i] = out
			return nil
		})
	}
	// The toolchain analyzer works at the repository level, scanning
	// well-known CI/manifest paths under repoRoot directly rather than
	// per-file content, so it runs once outside the per-file fan-out.
	var repoLevel []findings.Finding
	for _, a := range enabled {
		if tc, ok := a.(fileanalyzers.RepoLevelAnalyzer); ok {
			fs := tc.AnalyzeRepo(repoRoot, cfg)
			checkPrefix(a.Name(), a.Prefix(), fs)
			repoLevel = append(repoLevel, fs...)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []findings.Finding
	all = append(all, repoLevel...)
	for _, fs := range perFile {
		all = append(all, fs...)
	}
	return all, nil
}

// RunGraphAnalyzers runs every enabled GraphAnalyzer sequentially; each
// is stateless with respect to the others so ordering only affects the
// order findings are appended in, not correctness.
func RunGraphAnalyzers(ctx context.Context, d *Dispatcher, g *graph.Graph, cfg *config.Config) []findings.Finding {
	var all []findings.Finding
	for _, a := range d.graphAnalyzers {
		if ctx.Err() != nil {
			return all
		}
		if !a.Enabled(cfg) {
			continue
		}
		fs := a.Analyze(g, cfg)
		checkPrefix(a.Name(), a.Prefix(), fs)
		all = append(all, fs...)
	}
	return all
}
