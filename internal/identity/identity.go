// Package identity computes stable content hashes and node identifiers for
// the code graph. Both are pure functions of their inputs: the same bytes,
// or the same (path, symbol path, kind) triple, always produce the same
// output, on any platform.
package identity

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// saltedPrefix perturbs the second half of the 128-bit digest so it isn't
// simply the same 64 bits twice.
var saltedPrefix = []byte("revet-content-hash-v1:")

// ContentHash returns a 128-bit hex digest of data. It is built from two
// independent 64-bit xxhash sums (of data, and of a salted variant of data)
// rather than a single 128-bit primitive, since xxhash only exposes a
// 64-bit sum; concatenating two independent sums keeps the same collision
// characteristics at double the width. The choice fixes the on-disk cache
// layout (see internal/cache) and must never change without a schema bump.
func ContentHash(data []byte) string {
	lo := xxhash.Sum64(data)

	h := xxhash.New()
	h.Write(saltedPrefix)
	h.Write(data)
	hi := h.Sum64()

	return fmt.Sprintf("%016x%016x", hi, lo)
}

// CollisionError reports that two distinct declarations produced the same
// node identifier. This is an internal-invariant class error (see spec §7):
// it indicates a bug in a parser's qualified-path construction, not a
// user-attributable condition.
type CollisionError struct {
	ID string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("identity: node id collision: %s", e.ID)
}

// NodeID derives a deterministic identifier from a file's repo-relative
// path, a symbol's fully qualified path within that file, and its kind.
// Path separators are normalized to '/' so identifiers are stable across
// platforms; qualifiedPath is compared byte-for-byte (symbol names are
// case-sensitive in every supported language).
func NodeID(relPath, qualifiedPath, kind string) string {
	normalized := filepath.ToSlash(relPath)
	normalized = strings.TrimPrefix(normalized, "./")
	return normalized + "::" + qualifiedPath + "::" + kind
}

// SplitNodeID reverses NodeID, returning its three components. It returns
// ok=false if id doesn't have the expected two-separator shape, which
// only happens for a hand-built id outside this package's control.
func SplitNodeID(id string) (relPath, qualifiedPath, kind string, ok bool) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
