// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile string
	region  string
	retryer func() awsv2.Retryer
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithRetryer injects a custom retryer; if not set, SDK defaults are used.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}

// LoadAWSConfig loads AWS SDK v2 config. By default it inherits the shell's
// AWS setup (AWS_PROFILE, shared config, env, IMDS).
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// NewS3 constructs a v2 S3 client from the provided config.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, optFns...)
}

// ObjectGetter is the slice of the S3 API needed to download an object.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// Location names one S3 object, optionally pinned to a version.
type Location struct {
	Bucket    string
	Key       string
	VersionID string
}

func (l Location) String() string {
	s := "s3://" + l.Bucket + "/" + l.Key
	if l.VersionID != "" {
		s += "?versionId=" + l.VersionID
	}
	return s
}

// IsS3URL reports whether src uses the s3:// scheme.
func IsS3URL(src string) bool {
	return strings.HasPrefix(src, "s3://")
}

// ParseS3URL parses s3://bucket/key[?versionId=...].
func ParseS3URL(src string) (Location, error) {
	u, err := url.Parse(src)
	if err != nil {
		return Location{}, fmt.Errorf("invalid S3 URL %q: %w", src, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("invalid S3 URL %q: scheme must be s3", src)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("invalid S3 URL %q: want s3://bucket/key", src)
	}
	return Location{
		Bucket:    u.Host,
		Key:       key,
		VersionID: u.Query().Get("versionId"),
	}, nil
}

// GetObject downloads the object at loc.
func GetObject(ctx context.Context, svc ObjectGetter, loc Location) ([]byte, error) {
	input := &s3v2.GetObjectInput{
		Bucket: awsv2.String(loc.Bucket),
		Key:    awsv2.String(loc.Key),
	}
	if loc.VersionID != "" {
		input.VersionId = awsv2.String(loc.VersionID)
	}

	result, err := svc.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object %s: %w", loc, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return data, nil
}
