package fileanalyzers

import (
	"regexp"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

type secretPattern struct {
	name       string
	re         *regexp.Regexp
	severity   findings.Severity
	suggestion string
}

// secretPatterns is grounded on original_source/crates/core/src/analyzer/secret_exposure.rs,
// checked in priority order per line (first match wins).
var secretPatterns = []secretPattern{
	{"AWS Access Key ID", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), findings.Error,
		"Use environment variable AWS_ACCESS_KEY_ID instead"},
	{"AWS Secret Access Key", regexp.MustCompile(`(?i)aws.{0,20}['"][0-9a-zA-Z/+=]{40}['"]`), findings.Error,
		"Use environment variable AWS_SECRET_ACCESS_KEY instead"},
	{"GitHub Token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`), findings.Error,
		"Use environment variable GITHUB_TOKEN instead"},
	{"Private Key (PEM)", regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`), findings.Error,
		"Store private key in a file outside the repo and reference via path"},
	{"Database Connection String", regexp.MustCompile(`(?i)(?:mongodb|postgres|mysql|redis)://[^\s'"]+:[^\s'"]+@`), findings.Error,
		"Store connection string in .env file or use a secrets manager"},
	{"Generic API Key", regexp.MustCompile(`(?i)api[_\-]?key\s*[:=]\s*['"][a-zA-Z0-9]{20,}['"]`), findings.Warning,
		"Store API key in environment variable or .env file"},
	{"Generic Secret Key", regexp.MustCompile(`(?i)secret[_\-]?key\s*[:=]\s*['"][a-zA-Z0-9]{20,}['"]`), findings.Warning,
		"Store secret key in environment variable or .env file"},
	{"Hardcoded Password", regexp.MustCompile(`(?i)password\s*[:=]\s*['"][^'"]{8,}['"]`), findings.Warning,
		"Store password in environment variable or use a secrets manager"},
}

// SecretExposure detects hardcoded secrets, API keys, and credentials.
type SecretExposure struct{}

func NewSecretExposure() *SecretExposure { return &SecretExposure{} }

func (a *SecretExposure) Name() string   { return "Secret Exposure" }
func (a *SecretExposure) Prefix() string { return "SEC" }

func (a *SecretExposure) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("security") }

func (a *SecretExposure) Analyze(filePath string, content []byte, _ string, _ *config.Config) []findings.Finding {
	if !shouldScan(filePath) {
		return nil
	}
	var out []findings.Finding
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		for _, pat := range secretPatterns {
			if pat.re.MatchString(line) {
				out = append(out, findings.Finding{
					Prefix:     "SEC",
					Severity:   pat.severity,
					File:       filePath,
					Line:       i + 1,
					Message:    "Possible " + pat.name + " detected",
					Suggestion: pat.suggestion,
				})
				break
			}
		}
	}
	return out
}
