package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains read-only access to S3-compatible object stores.
// View templates can be served straight from a bucket; nothing is written back.

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is a read-only, S3-compatible object storage client interface.
// Methods use context and streaming readers; no local disk is used.
type Storage interface {
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// List returns every object whose key starts with prefix, recursively.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Ping reports whether the backing bucket is reachable.
	Ping(ctx context.Context) error
}
