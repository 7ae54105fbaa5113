// Package storage persists the ledger collections as serialized JSON blobs
// in a durable key-value medium.
package storage

import (
	"context"
	"errors"
)

// Blobs is a durable key-value medium holding one serialized blob per key.
type Blobs interface {
	// Get returns the blob stored under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

var (
	ErrMalformedBlob = errors.New("malformed blob")
	ErrSchemaTooNew  = errors.New("schema version newer than supported")
)
