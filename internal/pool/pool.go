// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	awsx "github.com/staranto/evsetctl/internal/aws"
	"github.com/staranto/evsetctl/internal/cacheutil"
	"github.com/staranto/evsetctl/internal/elist"
	"github.com/staranto/evsetctl/internal/evset"
)

var ErrEmpty = errors.New("pool has no candidates")

// Pool is a victim and the candidate addresses that may evict it.
type Pool struct {
	Source     string
	Victim     elist.Addr
	Candidates []elist.Addr
}

// List returns a fresh element list over the candidates, in order.
func (p *Pool) List() *elist.List {
	return elist.FromAddrs(p.Candidates...)
}

// Len is the number of candidates.
func (p *Pool) Len() int {
	return len(p.Candidates)
}

// Synthesize returns n candidates at base+i*stride for i in 1..n, shuffled
// by s. The victim is base itself.
func Synthesize(n int, base elist.Addr, stride uint64, s evset.Shuffler) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("synthetic pool size must be positive, got %d", n)
	}
	if stride == 0 {
		return nil, errors.New("synthetic pool stride must be positive")
	}

	cands := make([]elist.Addr, n)
	for i := range cands {
		cands[i] = base + elist.Addr(uint64(i+1)*stride)
	}
	if s != nil {
		s.Shuffle(n, func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
	}

	return &Pool{
		Source:     fmt.Sprintf("synthetic:%d@%s+%d", n, base, stride),
		Victim:     base,
		Candidates: cands,
	}, nil
}

// Parse decodes a pool document.
func Parse(data []byte) (*Pool, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("pool document is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	p := &Pool{}
	if v := doc.Get("victim"); v.Exists() {
		a, err := parseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("victim: %w", err)
		}
		p.Victim = a
	}

	cands := doc.Get("candidates")
	if !cands.IsArray() {
		return nil, errors.New("pool document has no candidates array")
	}
	var err error
	cands.ForEach(func(_, value gjson.Result) bool {
		var a elist.Addr
		if a, err = parseAddr(value); err != nil {
			err = fmt.Errorf("candidates[%d]: %w", len(p.Candidates), err)
			return false
		}
		p.Candidates = append(p.Candidates, a)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(p.Candidates) == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

func parseAddr(v gjson.Result) (elist.Addr, error) {
	switch v.Type {
	case gjson.Number:
		if v.Num < 0 {
			return 0, fmt.Errorf("negative address %s", v.Raw)
		}
		return elist.Addr(v.Uint()), nil
	case gjson.String:
		u, err := strconv.ParseUint(strings.TrimSpace(v.Str), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid address %q", v.Str)
		}
		return elist.Addr(u), nil
	default:
		return 0, fmt.Errorf("invalid address %s", v.Raw)
	}
}

// MarshalJSON writes the document form with hex addresses.
func (p *Pool) MarshalJSON() ([]byte, error) {
	cands := make([]string, len(p.Candidates))
	for i, a := range p.Candidates {
		cands[i] = a.String()
	}
	return json.Marshal(struct {
		Victim     string   `json:"victim"`
		Candidates []string `json:"candidates"`
	}{p.Victim.String(), cands})
}

// Save writes the pool document to path.
func (p *Pool) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to save pool: %w", err)
	}
	return nil
}

// Loader reads pool documents from local files or S3.
type Loader struct {
	s3      awsx.ObjectGetter
	awsOpts []awsx.Option
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithS3Client supplies the S3 client instead of building one from the
// environment on first use.
func WithS3Client(c awsx.ObjectGetter) LoaderOption {
	return func(l *Loader) { l.s3 = c }
}

// WithAWSOptions passes config overrides used when the S3 client is built.
func WithAWSOptions(opts ...awsx.Option) LoaderOption {
	return func(l *Loader) { l.awsOpts = append(l.awsOpts, opts...) }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the pool at src, a local path or an s3:// URL.
// Versioned S3 objects are immutable and go through the disk cache.
func (l *Loader) Load(ctx context.Context, src string) (*Pool, error) {
	var (
		data []byte
		err  error
	)

	if awsx.IsS3URL(src) {
		data, err = l.fetchS3(ctx, src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pool %s: %w", src, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool %s: %w", src, err)
	}
	p.Source = src

	log.WithFields(log.Fields{
		"source":     src,
		"candidates": p.Len(),
		"victim":     p.Victim,
	}).Debug("pool loaded")
	return p, nil
}

func (l *Loader) fetchS3(ctx context.Context, src string) ([]byte, error) {
	loc, err := awsx.ParseS3URL(src)
	if err != nil {
		return nil, err
	}

	download := func() ([]byte, error) {
		if l.s3 == nil {
			cfg, err := awsx.LoadAWSConfig(ctx, l.awsOpts...)
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			l.s3 = awsx.NewS3(cfg)
		}
		return awsx.GetObject(ctx, l.s3, loc)
	}

	if loc.VersionID == "" {
		return download()
	}
	store, _ := cacheutil.Open(cacheutil.PoolsDir)
	return store.Fetch(loc.String(), download)
}
