// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body  string
	err   error
	input *s3v2.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Location
		wantErr bool
	}{
		{name: "plain", src: "s3://pools/skylake/l3.json", want: Location{Bucket: "pools", Key: "skylake/l3.json"}},
		{name: "versioned", src: "s3://pools/l3.json?versionId=abc", want: Location{Bucket: "pools", Key: "l3.json", VersionID: "abc"}},
		{name: "no key", src: "s3://pools", wantErr: true},
		{name: "wrong scheme", src: "https://pools/l3.json", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseS3URL(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.src, got.String())
		})
	}

	assert.True(t, IsS3URL("s3://a/b"))
	assert.False(t, IsS3URL("/tmp/pool.json"))
}

func TestGetObject(t *testing.T) {
	svc := &fakeS3{body: `{"victim":"0x0"}`}
	loc := Location{Bucket: "pools", Key: "l3.json", VersionID: "v1"}

	data, err := GetObject(context.Background(), svc, loc)
	require.NoError(t, err)
	assert.Equal(t, `{"victim":"0x0"}`, string(data))
	assert.Equal(t, "pools", awsv2.ToString(svc.input.Bucket))
	assert.Equal(t, "l3.json", awsv2.ToString(svc.input.Key))
	assert.Equal(t, "v1", awsv2.ToString(svc.input.VersionId))

	svc = &fakeS3{err: errors.New("access denied")}
	_, err = GetObject(context.Background(), svc, Location{Bucket: "pools", Key: "l3.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Nil(t, svc.input.VersionId)
}
