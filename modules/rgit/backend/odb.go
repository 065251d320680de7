// Package backend is the content-addressed object store: the loose-object
// filesystem layout under "<repo>/objects/<oid>", an optional ristretto
// read cache in front of it, mirroring the option-function Database shape
// of the teacher's modules/zeta/backend.
package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

var log = logrus.WithField("component", "backend")

// Database is the object store bound to one repository's objects
// directory.
type Database struct {
	root      string
	cache     *ristretto.Cache[string, []byte]
	enableLRU bool
	closed    uint32
	mu        sync.RWMutex
}

// Option configures a Database at construction time, following the
// teacher's functional-options convention.
type Option func(*Database)

// WithEnableLRU turns on the optional ristretto read cache. Off by
// default: hash_object always writes through to disk first, and most
// callers (a one-shot CLI invocation) never benefit from a warm cache.
func WithEnableLRU(enableLRU bool) Option {
	return func(d *Database) { d.enableLRU = enableLRU }
}

// NewDatabase opens (creating if necessary) the loose-object store rooted
// at <repoRoot>/objects.
func NewDatabase(repoRoot string, opts ...Option) (*Database, error) {
	d := &Database{root: filepath.Join(repoRoot, "objects")}
	for _, o := range opts {
		o(d)
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, plumbing.NewErrIo(err)
	}
	if d.enableLRU {
		cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: 100000,
			MaxCost:     64 << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("object store: init cache: %w", err)
		}
		d.cache = cache
	}
	return d, nil
}

func (d *Database) path(oid plumbing.Hash) string {
	return filepath.Join(d.root, oid.String())
}

// HashObject prepends "<type>\0" to content, computes its SHA-1 oid,
// writes the prefixed bytes and returns the oid. Idempotent: rewriting the
// same (content, type) pair produces the same oid and the same bytes on
// disk.
func (d *Database) HashObject(content []byte, t object.Type) (plumbing.Hash, error) {
	raw := object.Encode(t, content)
	oid := object.Hash(t, content)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.WriteFile(d.path(oid), raw, 0o444); err != nil && !os.IsPermission(err) {
		return plumbing.ZeroHash, plumbing.NewErrIo(err)
	}
	if d.cache != nil {
		d.cache.Set(oid.String(), raw, int64(len(raw)))
	}
	return oid, nil
}

// GetObjectContent reads oid's payload, verifying its declared type
// against expected when expected != object.InvalidType.
func (d *Database) GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error) {
	raw, err := d.readRaw(oid)
	if err != nil {
		return nil, err
	}
	frame, err := object.Decode(oid, raw)
	if err != nil {
		return nil, err
	}
	if expected != object.InvalidType && frame.Type != expected {
		return nil, plumbing.NewErrTypeMismatch(oid, expected.String(), frame.Type.String())
	}
	return frame.Payload, nil
}

func (d *Database) readRaw(oid plumbing.Hash) ([]byte, error) {
	d.mu.RLock()
	if d.cache != nil {
		if v, ok := d.cache.Get(oid.String()); ok {
			d.mu.RUnlock()
			return v, nil
		}
	}
	d.mu.RUnlock()
	raw, err := os.ReadFile(d.path(oid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, plumbing.NewErrNotFound(oid)
		}
		return nil, plumbing.NewErrIo(err)
	}
	if d.cache != nil {
		d.cache.Set(oid.String(), raw, int64(len(raw)))
	}
	return raw, nil
}

// ObjectExists reports whether oid is present in the store.
func (d *Database) ObjectExists(oid plumbing.Hash) bool {
	if d.cache != nil {
		if _, ok := d.cache.Get(oid.String()); ok {
			return true
		}
	}
	_, err := os.Stat(d.path(oid))
	return err == nil
}

// Close releases the cache, if any. Safe to call once.
func (d *Database) Close() error {
	if !atomic.CompareAndSwapUint32(&d.closed, 0, 1) {
		return nil
	}
	if d.cache != nil {
		d.cache.Close()
	}
	log.Debug("object store closed")
	return nil
}
