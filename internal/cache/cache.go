// Package cache implements the content-addressed per-file fragment store.
// Keys are content hashes (see internal/identity); values are encoded
// parser.FileFragment payloads. The design borrows its atomic-write and
// schema-guard discipline from vovakirdan-surge's DiskCache, generalized
// from a flat single-file layout to the two-level hash-bucketed directory
// spec §4.4 requires.
package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/revet-dev/revet-core/internal/parser"
)

// magic identifies a revet fragment cache file. A file that doesn't start
// with these four bytes is treated as absent, never as corrupt: an
// external tool clobbering the cache dir should degrade to a miss.
var magic = [4]byte{'R', 'E', 'V', 'F'}

// schemaVersion guards the msgpack payload shape. Bumping it makes every
// existing cache entry a miss rather than a crash, per spec §4.4.
const schemaVersion uint32 = 1

// FileCache is a content-addressed, write-through store of FileFragment
// values under <root>/files/<hash-prefix2>/<hash-rest>.
type FileCache struct {
	root string
}

// Open returns a FileCache rooted at dir, creating dir if necessary.
func Open(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

func (c *FileCache) pathFor(hash string) (string, error) {
	if len(hash) < 3 {
		return "", fmt.Errorf("cache: hash %q too short to bucket", hash)
	}
	return filepath.Join(c.root, "files", hash[:2], hash[2:]), nil
}

// Get returns the cached fragment for hash, or (nil, false) on a miss —
// whether because the entry is absent, the magic doesn't match, or the
// schema version is stale.
func (c *FileCache) Get(hash string) (*parser.FileFragment, bool, error) {
	p, err := c.pathFor(hash)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if len(data) < 8 || !bytes.Equal(data[:4], magic[:]) {
		return nil, false, nil
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != schemaVersion {
		return nil, false, nil
	}

	var frag parser.FileFragment
	if err := msgpack.Unmarshal(data[8:], &frag); err != nil {
		return nil, false, nil
	}
	return &frag, true, nil
}

// Put writes frag under hash's bucket. The write is atomic: the payload
// is encoded to a temp file in the same directory, then renamed into
// place, so a concurrent Get never observes a partial write.
func (c *FileCache) Put(hash string, frag *parser.FileFragment) error {
	p, err := c.pathFor(hash)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	payload, err := msgpack.Marshal(frag)
	if err != nil {
		return err
	}

	header := make([]byte, 8)
	copy(header[:4], magic[:])
	binary.BigEndian.PutUint32(header[4:8], schemaVersion)

	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, p)
}
