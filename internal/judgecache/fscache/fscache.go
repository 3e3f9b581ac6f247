// Package fscache implements the default, zero-dependency JudgeCache
// backend: one file per key under a base directory, written
// atomically via a temp-file-then-rename so a crash mid-write never
// leaves a corrupt cache entry behind.
package fscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/vnagri/claimfusion/internal/capability"
)

// Cache stores judge verdicts as flat files under Dir, one per key. It
// implements capability.JudgeCache.
type Cache struct {
	dir string
}

var _ capability.JudgeCache = (*Cache)(nil)

// New builds a Cache rooted at dir, creating it if necessary.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Get returns the cached bytes for key, if present. A missing file is
// not an error: ok is false and err is nil.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes value for key atomically: it writes to a sibling temp file
// in the same directory, then renames it into place, so a concurrent
// reader (or a crash) never observes a partially-written entry.
func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	dst := c.path(key)
	tmp, err := os.CreateTemp(c.dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dst)
}

// path returns the on-disk path for key. Keys are hashed so arbitrary
// content (including path separators or multi-kilobyte claim pairs) is
// always a single, fixed-length, safe filename component.
func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
