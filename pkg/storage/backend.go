// Package storage persists encoded graph documents on the local filesystem or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get for a key with no object behind it.
var ErrNotFound = errors.New("document not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// S3Options tunes the S3 client built by Open.
type S3Options struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. for LocalStack or MinIO.
	// Path-style addressing is used when it is set.
	Endpoint string
}

// Location is a parsed document address.
type Location struct {
	// Bucket is empty for local paths.
	Bucket string
	Key    string
}

// IsS3 reports whether the location names an S3 object.
func (l Location) IsS3() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// ParseLocation splits "s3://bucket/key" into its parts. Anything else is a local path.
func ParseLocation(loc string) (Location, error) {
	rest, ok := strings.CutPrefix(loc, "s3://")
	if !ok {
		if loc == "" {
			return Location{}, errors.New("empty location")
		}
		return Location{Key: filepath.Clean(loc)}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%q: missing bucket", loc)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Open returns the store serving loc and the key of loc inside it.
func Open(ctx context.Context, loc string, opts S3Options) (BlobStore, string, error) {
	l, err := ParseLocation(loc)
	if err != nil {
		return nil, "", err
	}
	if !l.IsS3() {
		return NewLocalStore(""), l.Key, nil
	}
	s, err := NewS3StoreFromEnv(ctx, l.Bucket, opts)
	if err != nil {
		return nil, "", err
	}
	return s, l.Key, nil
}
