package fileanalyzers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type infraPattern struct {
	name             string
	re               *regexp.Regexp
	severity         findings.Severity
	rejectIfContains string
	targetExts       []string
	targetFilenames  []string
	suggestion       string
}

// infraPatterns mirrors original_source/crates/core/src/analyzer/infra.rs:
// Terraform, Kubernetes, and Dockerfile misconfiguration detection.
var infraPatterns = []infraPattern{
	{"public S3 bucket ACL (exposes bucket to internet)",
		regexp.MustCompile(`acl\s*=\s*["']public-read(?:-write)?["']`), findings.Error, "",
		[]string{"tf"}, nil, `Set ACL to "private" to restrict bucket access`},
	{"open security group 0.0.0.0/0 (exposes service to internet)",
		regexp.MustCompile(`cidr_blocks\s*=\s*\[.*["']0\.0\.0\.0/0["']`), findings.Error, "",
		[]string{"tf"}, nil, "Restrict CIDR block to specific IP ranges instead of 0.0.0.0/0"},
	{"hardcoded provider credentials in Terraform",
		regexp.MustCompile(`(?:access_key|secret_key)\s*=\s*["'][A-Za-z0-9/+=]{16,}["']`), findings.Error, "var.",
		[]string{"tf", "tfvars"}, nil, "Use Terraform variables or environment variables for credentials"},
	{"wildcard IAM action (violates least-privilege)",
		regexp.MustCompile(`["']?(?:actions|Action)["']?\s*[:=]\s*\[?\s*["']\*["']`), findings.Warning, "NotAction",
		[]string{"tf", "json"}, nil, `Specify explicit IAM actions instead of using wildcard "*"`},
	{"Docker FROM :latest or untagged (non-reproducible build)",
		regexp.MustCompile(`(?i)^FROM\s+[^\s:]+(?::latest\s*$|\s*$)`), findings.Warning, "scratch",
		nil, []string{"Dockerfile"}, "Pin Docker image to a specific version tag for reproducible builds"},
	{"privileged container (root access to host)",
		regexp.MustCompile(`privileged:\s*true`), findings.Warning, "",
		[]string{"yaml", "yml"}, nil, "Set privileged: false unless root access is strictly required"},
	{"hostPath volume mount (container escape vector)",
		regexp.MustCompile(`hostPath:\s*$`), findings.Warning, "",
		[]string{"yaml", "yml"}, nil, "Use emptyDir, configMap, or PVC instead of hostPath volumes"},
	{"HTTP URL in Terraform config (use HTTPS)",
		regexp.MustCompile(`(?:source|endpoint|url)\s*=\s*["']http://`), findings.Info, "localhost",
		[]string{"tf"}, nil, "Use HTTPS instead of HTTP for secure communication"},
}

var infraExtensions = map[string]bool{"tf": true, "tfvars": true, "yaml": true, "yml": true, "json": true}
var infraFilenames = map[string]bool{"Dockerfile": true}

// Infra detects Terraform, Kubernetes, and Docker misconfigurations.
type Infra struct{}

func NewInfra() *Infra { return &Infra{} }

func (a *Infra) Name() string   { return "Infrastructure" }
func (a *Infra) Prefix() string { return "INFRA" }

func (a *Infra) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("infra") }

func (a *Infra) shouldScan(path string) bool {
	base := filepath.Base(path)
	if infraFilenames[base] {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" || binaryExtensions[ext] {
		return false
	}
	return infraExtensions[ext]
}

func patternMatchesInfraFile(p infraPattern, path string) bool {
	base := filepath.Base(path)
	if len(p.targetFilenames) > 0 {
		for _, n := range p.targetFilenames {
			if n == base {
				return true
			}
		}
		return false
	}
	if len(p.targetExts) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		for _, e := range p.targetExts {
			if e == ext {
				return true
			}
		}
	}
	return false
}

func (a *Infra) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !a.shouldScan(filePath) {
		return nil
	}
	var applicable []infraPattern
	for _, p := range infraPatterns {
		if patternMatchesInfraFile(p, filePath) {
			applicable = append(applicable, p)
		}
	}
	if len(applicable) == 0 {
		return nil
	}

	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if isCommentLine(line) {
			continue
		}
		for _, pat := range applicable {
			if !pat.re.MatchString(line) {
				continue
			}
			if pat.rejectIfContains != "" && strings.Contains(line, pat.rejectIfContains) {
				continue
			}
			out = append(out, findings.Finding{
				Prefix:     "INFRA",
				Severity:   pat.severity,
				File:       filePath,
				Line:       i + 1,
				Message:    fmt.Sprintf("Infrastructure issue: %s", pat.name),
				Suggestion: pat.suggestion,
			})
			break
		}
	}
	return out
}
