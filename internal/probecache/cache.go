// Package probecache stores probe program output on disk so repeated
// generation runs skip the compile/link/run round trip when neither the
// probe source nor the compiler changed.
package probecache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Payload is one cached probe run.
type Payload struct {
	Schema   uint16
	Compiler string
	Output   string
}

// Cache is a content-addressed probe output store.
type Cache struct {
	dir string
}

// Open initializes the cache at the standard location.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes the cache rooted at an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(source, compiler string) string {
	sum := sha256.Sum256([]byte(compiler + "\x00" + source))
	return filepath.Join(c.dir, "probes", hex.EncodeToString(sum[:])+".mp")
}

// Put stores one probe run. The write is atomic so a crashed run never
// leaves a truncated entry behind.
func (c *Cache) Put(source, compiler, output string) error {
	if c == nil {
		return nil
	}
	p := c.pathFor(source, compiler)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&Payload{Schema: schemaVersion, Compiler: compiler, Output: output}); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get looks up a cached probe run. Corrupt or schema-mismatched entries
// are treated as misses.
func (c *Cache) Get(source, compiler string) (string, bool) {
	if c == nil {
		return "", false
	}
	f, err := os.Open(c.pathFor(source, compiler))
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return "", false
	}
	if payload.Schema != schemaVersion || payload.Compiler != compiler {
		return "", false
	}
	return payload.Output, true
}
