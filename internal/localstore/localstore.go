/*
Package localstore provides client-local key-value backends for interest
profiles.

Three backends are available:

  - Memory: process-local map, for tests and ephemeral sessions
  - File:   one file per key under a directory, atomic writes with a .bak copy
  - Badger: embedded dgraph-io/badger/v4 store with synchronous writes

Read returns nil, nil for an absent key.
*/
package localstore

import (
	"fmt"
)

// Backend is a byte-oriented key-value store.
type Backend interface {
	// Read returns the value under key, or nil when absent.
	Read(key string) ([]byte, error)

	// Write stores data under key, replacing any previous value.
	Write(key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindBadger = "badger"
)

// Open creates the backend named by kind rooted at dir.
func Open(kind, dir string) (Backend, error) {
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindFile, "":
		return NewFile(dir)
	case KindBadger:
		return NewBadger(dir)
	default:
		return nil, fmt.Errorf("unknown profile backend %q", kind)
	}
}
