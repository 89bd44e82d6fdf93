// Package store defines the key-value persistence contract the record
// store is built on. Backends are selected at construction time and
// injected; callers never see which medium holds the data.
package store

import "context"

// Backend is the opaque key-value persistence surface.
// Get returns (nil, nil) for a missing key; reads never fail on absence.
// Write failures are real errors and must be surfaced to the caller.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
