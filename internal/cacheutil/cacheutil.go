// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// PoolsDir is the subdirectory holding downloaded candidate pools.
const PoolsDir = "pools"

// Dir resolves the base cache directory: EVSETCTL_CACHE_DIR when set,
// otherwise os.UserCacheDir()/evsetctl. ok is false when neither resolves.
func Dir() (string, bool) {
	if c := os.Getenv("EVSETCTL_CACHE_DIR"); c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "evsetctl"), true
	}
	return "", false
}

// Enabled is false only when EVSETCTL_CACHE is "0" or "false".
func Enabled() bool {
	switch os.Getenv("EVSETCTL_CACHE") {
	case "0", "false":
		return false
	}
	return true
}

// EnsureBaseDir creates the base cache directory. ok reports whether the
// cache is usable at all.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// Store is one namespace of the on-disk cache. Entries are files named by
// the hash of their clear-text key. A nil *Store is a disabled cache: Get
// always misses and Put discards.
type Store struct {
	dir string
}

// Open returns the store under subdirs, or nil and false when caching is
// disabled or has no base directory.
func Open(subdirs ...string) (*Store, bool) {
	if !Enabled() {
		return nil, false
	}
	base, ok := Dir()
	if !ok {
		return nil, false
	}
	return &Store{dir: filepath.Join(append([]string{base}, subdirs...)...)}, true
}

// Path is where key lives, whether or not it has been written.
func (s *Store) Path(key string) string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.dir, encodeKey(key))
}

// Get returns the cached bytes for key.
func (s *Store) Get(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	b, err := os.ReadFile(s.Path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Debugf("cache read %s", key)
		}
		return nil, false
	}
	return b, true
}

// Put stores data under key. The entry is written to a temporary file and
// renamed so readers never see a partial download.
func (s *Store) Put(key string, data []byte) error {
	if s == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Fetch returns the cached entry for key, or calls load and caches what it
// returns. A failed cache write is logged and does not fail the fetch.
func (s *Store) Fetch(key string, load func() ([]byte, error)) ([]byte, error) {
	if data, ok := s.Get(key); ok {
		log.WithField("key", key).Debug("cache hit")
		return data, nil
	}

	data, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.Put(key, data); err != nil {
		log.WithError(err).Warnf("error writing %s to cache", key)
	}
	return data, nil
}

// Purge removes cache files older than hours. hours <= 0 disables it.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || time.Since(info.ModTime()) <= maxAge {
			return nil //nolint:nilerr
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		log.Debugf("removed cache file %s", path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func encodeKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:])
}
