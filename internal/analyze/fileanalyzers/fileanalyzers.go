// Package fileanalyzers implements the FileAnalyzer family: analyzers
// that scan a single file's raw bytes without consulting the graph.
package fileanalyzers

import (
	"path/filepath"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
)

// RepoLevelAnalyzer is implemented by analyzers (currently only
// Toolchain) that read fixed, well-known paths under the repository
// root rather than the per-file content the dispatcher otherwise
// fans out. Their ordinary Analyze method is a no-op.
type RepoLevelAnalyzer interface {
	AnalyzeRepo(repoRoot string, cfg *config.Config) []findings.Finding
}

// binaryExtensions mirrors the original analyzer's skip-list so binary
// assets never get regex-scanned as if they were text.
var binaryExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "ico": true,
	"svg": true, "webp": true, "woff": true, "woff2": true, "ttf": true, "eot": true,
	"otf": true, "zip": true, "gz": true, "tar": true, "bz2": true, "xz": true,
	"7z": true, "rar": true, "pdf": true, "doc": true, "docx": true, "xls": true,
	"xlsx": true, "ppt": true, "pptx": true, "exe": true, "dll": true, "so": true,
	"dylib": true, "o": true, "a": true, "pyc": true, "pyo": true, "class": true,
	"lock": true, "mp3": true, "mp4": true, "avi": true, "mov": true, "wav": true,
	"flac": true, "sqlite": true, "db": true,
}

func shouldScan(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".min.js") || strings.HasSuffix(base, ".min.css") {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return true
	}
	return !binaryExtensions[strings.ToLower(ext)]
}

func isCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "*") || strings.HasPrefix(t, "--")
}
