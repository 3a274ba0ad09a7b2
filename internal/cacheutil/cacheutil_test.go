// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: true},
		{value: "1", want: true},
		{value: "0", want: false},
		{value: "false", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("EVSETCTL_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestDir(t *testing.T) {
	t.Setenv("EVSETCTL_CACHE_DIR", "/tmp/evsetctl-test")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/evsetctl-test", dir)
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "cache")
	t.Setenv("EVSETCTL_CACHE_DIR", base)
	t.Setenv("EVSETCTL_CACHE", "")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("EVSETCTL_CACHE", "false")
	_, ok, err = EnsureBaseDir()
	require.NoError(t, err)
	assert.False(t, ok)

	// A regular file in the way fails creation and the cache is unusable.
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	t.Setenv("EVSETCTL_CACHE", "")
	t.Setenv("EVSETCTL_CACHE_DIR", filepath.Join(file, "cache"))
	_, ok, err = EnsureBaseDir()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStorePutGet(t *testing.T) {
	base := t.TempDir()
	t.Setenv("EVSETCTL_CACHE_DIR", base)
	t.Setenv("EVSETCTL_CACHE", "")

	key := "s3://pools/l3.json?versionId=v1"
	s, ok := Open(PoolsDir)
	require.True(t, ok)

	_, ok = s.Get(key)
	assert.False(t, ok)

	require.NoError(t, s.Put(key, []byte("{}\n")))
	data, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("{}\n"), data)

	path := s.Path(key)
	assert.Equal(t, filepath.Join(base, PoolsDir), filepath.Dir(path))
	assert.Len(t, filepath.Base(path), 64)

	entries, err := os.ReadDir(filepath.Join(base, PoolsDir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestStoreFetch(t *testing.T) {
	t.Setenv("EVSETCTL_CACHE_DIR", t.TempDir())
	t.Setenv("EVSETCTL_CACHE", "")

	calls := 0
	load := func() ([]byte, error) {
		calls++
		return []byte("pool"), nil
	}

	s, ok := Open(PoolsDir)
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		data, err := s.Fetch("k", load)
		require.NoError(t, err)
		assert.Equal(t, "pool", string(data))
	}
	assert.Equal(t, 1, calls)

	_, err := s.Fetch("other", func() ([]byte, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestDisabledStore(t *testing.T) {
	t.Setenv("EVSETCTL_CACHE_DIR", t.TempDir())
	t.Setenv("EVSETCTL_CACHE", "0")

	s, ok := Open(PoolsDir)
	assert.False(t, ok)
	assert.Nil(t, s)

	calls := 0
	for i := 0; i < 2; i++ {
		data, err := s.Fetch("k", func() ([]byte, error) {
			calls++
			return []byte("pool"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "pool", string(data))
	}
	assert.Equal(t, 2, calls, "disabled cache always loads")
	assert.NoError(t, s.Put("k", []byte("x")))
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("EVSETCTL_CACHE_DIR", base)
	t.Setenv("EVSETCTL_CACHE", "")

	s, ok := Open(PoolsDir)
	require.True(t, ok)
	require.NoError(t, s.Put("old", []byte("x")))
	require.NoError(t, s.Put("new", []byte("y")))
	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path("old"), stale, stale))

	require.NoError(t, Purge(0))
	assert.FileExists(t, s.Path("old"), "purge disabled")

	require.NoError(t, Purge(2))
	assert.NoFileExists(t, s.Path("old"))
	assert.FileExists(t, s.Path("new"))

	t.Setenv("EVSETCTL_CACHE_DIR", filepath.Join(base, "missing"))
	assert.NoError(t, Purge(2))
}
