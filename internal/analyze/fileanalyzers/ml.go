package fileanalyzers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type mlPattern struct {
	name             string
	re               *regexp.Regexp
	severity         findings.Severity
	rejectIfContains string
	requireContains  string
}

// mlPatterns is grounded on original_source/crates/core/src/analyzer/ml_pipeline.rs.
var mlPatterns = []mlPattern{
	{"fit on test data (data leakage)",
		regexp.MustCompile(`\.fit(?:_transform)?\s*\(.*(?:X_test|test_X|x_test|test_x|test_data|test_features)`),
		findings.Error, "", ""},
	{"fit on test labels (data leakage)",
		regexp.MustCompile(`\.fit(?:_transform)?\s*\(.*(?:y_test|test_y|test_labels|test_target)`),
		findings.Error, "", ""},
	{"train_test_split without random_state (non-reproducible)",
		regexp.MustCompile(`train_test_split\s*\(`), findings.Warning, "random_state", ""},
	{"fit_transform on full dataset (possible data leakage)",
		regexp.MustCompile(`\.fit_transform\s*\(\s*(?:X|data|df|features|dataset)\s*[\),]`),
		findings.Warning, "_train", ""},
	{"pickle for model serialization (insecure, non-portable)",
		regexp.MustCompile(`pickle\.(?:dump|loads?)\s*\(`), findings.Warning, "", ""},
	{"hardcoded absolute data path (non-reproducible)",
		regexp.MustCompile(`\.read_(?:csv|parquet|excel|json|feather)\s*\(\s*["']/`), findings.Warning, "", ""},
	{"train_test_split without stratify (imbalanced data risk)",
		regexp.MustCompile(`train_test_split\s*\(`), findings.Info, "stratify", "random_state"},
	{"deprecated sklearn import (use model_selection instead)",
		regexp.MustCompile(`from\s+sklearn\.(?:cross_validation|grid_search)`), findings.Info, "", ""},
}

var mlExtensions = map[string]bool{"py": true, "ipynb": true}

// MLPipeline detects common ML anti-patterns: data leakage, non-reproducible
// experiments, insecure serialization, and deprecated imports. Only Python
// and notebook files are scanned.
type MLPipeline struct{}

func NewMLPipeline() *MLPipeline { return &MLPipeline{} }

func (a *MLPipeline) Name() string   { return "ML Pipeline" }
func (a *MLPipeline) Prefix() string { return "ML" }

func (a *MLPipeline) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("ml") }

func (a *MLPipeline) shouldScan(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if binaryExtensions[ext] || !mlExtensions[ext] {
		return false
	}
	base := filepath.Base(path)
	return !strings.HasSuffix(base, ".min.js") && !strings.HasSuffix(base, ".min.css")
}

func (a *MLPipeline) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !a.shouldScan(filePath) {
		return nil
	}
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") {
			continue
		}
		for _, pat := range mlPatterns {
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			if pat.requireContains != "" && !strings.Contains(line, pat.requireContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:   "ML",
				Severity: pat.severity,
				File:     filePath,
				Line:     i + 1,
				Message:  fmt.Sprintf("ML pipeline issue: %s", pat.name),
			})
			break
		}
	}
	return out
}
