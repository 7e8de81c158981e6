// Package storage writes export blobs to an object store and hands out
// short-lived download links for them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrMissingSigner indicates signed URL support is not configured.
	ErrMissingSigner = errors.New("storage: signed url signer not configured")

	// ErrMissingBucket is returned when an adapter is built without a bucket.
	ErrMissingBucket = errors.New("storage: bucket is required")
)

// Storage is bound to a single bucket.
type Storage interface {
	io.Closer

	// Put uploads r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	// PresignGet returns a URL that downloads key until expiry elapses.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Delete removes key. Missing objects are not an error for every backend.
	Delete(ctx context.Context, key string) error
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the content length, or -1 when unknown.
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}
