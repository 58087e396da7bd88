// Package metadata is the key/value port behind the session stores, with
// SQLite, in-memory and Redis backends plus an encrypting decorator.
//
// Every Repository is bound to one namespace; Clear never touches keys of
// another namespace.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent. A stored empty value
	// comes back as a non-nil empty slice.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn against a transactional view of the namespace. Writes
	// made through tx are applied together or not at all.
	Update(ctx context.Context, fn func(tx Repository) error) error
}

// stored maps a value read from a backend to its stored form. Drivers hand
// back nil for empty values, which callers would read as absent.
func stored(v []byte) []byte {
	if v == nil {
		return []byte{}
	}
	return v
}

// Factory hands out repositories for a namespace from one backing store.
type Factory interface {
	Namespace(name string) Repository
}
