// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package pool

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/evsetctl/internal/elist"
)

type fakeS3 struct {
	body  string
	calls int
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.calls++
	if f.body == "" {
		return nil, errors.New("no such key")
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestSynthesize(t *testing.T) {
	p, err := Synthesize(16, 0x100000, 4096, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, elist.Addr(0x100000), p.Victim)
	assert.Equal(t, 16, p.Len())

	got := append([]elist.Addr(nil), p.Candidates...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, a := range got {
		assert.Equal(t, elist.Addr(0x100000+(i+1)*4096), a)
	}

	unshuffled, err := Synthesize(4, 0, 64, nil)
	require.NoError(t, err)
	assert.Equal(t, []elist.Addr{64, 128, 192, 256}, unshuffled.Candidates)
	assert.Equal(t, []elist.Addr{64, 128, 192, 256}, unshuffled.List().Addrs())

	_, err = Synthesize(0, 0, 64, nil)
	assert.Error(t, err)
	_, err = Synthesize(4, 0, 0, nil)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    []elist.Addr
		wantErr string
	}{
		{name: "hex and numbers", doc: `{"victim":"0x10","candidates":["0x20",48,"64"]}`, want: []elist.Addr{0x20, 48, 64}},
		{name: "no victim", doc: `{"candidates":["0x20"]}`, want: []elist.Addr{0x20}},
		{name: "invalid json", doc: `{"candidates":[`, wantErr: "not valid JSON"},
		{name: "no candidates", doc: `{"victim":"0x10"}`, wantErr: "no candidates array"},
		{name: "empty", doc: `{"candidates":[]}`, wantErr: "no candidates"},
		{name: "negative", doc: `{"candidates":[-1]}`, wantErr: "negative"},
		{name: "object", doc: `{"candidates":[{}]}`, wantErr: "candidates[0]"},
		{name: "bad victim", doc: `{"victim":true,"candidates":[1]}`, wantErr: "victim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Candidates)
		})
	}

	_, err := Parse([]byte(`{"candidates":[]}`))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveLoadLocal(t *testing.T) {
	l := NewLoader()
	p, err := l.Load(context.Background(), filepath.Join("testdata", "pool.json"))
	require.NoError(t, err)
	assert.Equal(t, elist.Addr(0x100000), p.Victim)
	assert.Equal(t, []elist.Addr{0x101000, 0x102000, 0x103000, 0x104000}, p.Candidates)

	out := filepath.Join(t.TempDir(), "copy.json")
	require.NoError(t, p.Save(out))
	again, err := l.Load(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, p.Victim, again.Victim)
	assert.Equal(t, p.Candidates, again.Candidates)
	assert.Equal(t, out, again.Source)

	_, err = l.Load(context.Background(), filepath.Join("testdata", "bad-addr.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidates[1]")

	_, err = l.Load(context.Background(), filepath.Join("testdata", "empty.json"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = l.Load(context.Background(), filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)
}

func TestLoadS3(t *testing.T) {
	t.Setenv("EVSETCTL_CACHE_DIR", t.TempDir())
	t.Setenv("EVSETCTL_CACHE", "")

	svc := &fakeS3{body: `{"victim":"0x40","candidates":["0x80","0xc0"]}`}
	l := NewLoader(WithS3Client(svc))

	for i := 0; i < 2; i++ {
		p, err := l.Load(context.Background(), "s3://pools/l3.json")
		require.NoError(t, err)
		assert.Equal(t, []elist.Addr{0x80, 0xc0}, p.Candidates)
	}
	assert.Equal(t, 2, svc.calls, "unversioned objects are not cached")

	for i := 0; i < 2; i++ {
		p, err := l.Load(context.Background(), "s3://pools/l3.json?versionId=v7")
		require.NoError(t, err)
		assert.Equal(t, "s3://pools/l3.json?versionId=v7", p.Source)
	}
	assert.Equal(t, 3, svc.calls, "versioned objects come from the cache")

	_, err := NewLoader(WithS3Client(&fakeS3{})).Load(context.Background(), "s3://pools/gone.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such key")

	_, err = l.Load(context.Background(), "s3://pools")
	assert.Error(t, err)
}
