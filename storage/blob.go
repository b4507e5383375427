// Package storage abstracts the remote blob store holding the ciphertext
// of uploaded files. The service never stores ciphertext locally, it only
// keeps the opaque keys returned by Store.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Fetch when the requested object doesn't exist.
// Infrastructure failures (network, auth) are returned as distinct errors,
// never folded into a not-found result.
var ErrNotFound = errors.New("object not found")

type BlobStore interface {
	// Store uploads data under a freshly generated key inside folder and
	// returns the key together with a retrieval URL
	Store(ctx context.Context, data []byte, folder string) (key, url string, err error)

	// Exists reports whether the object is present. A false result means
	// the store confirmed the object is gone, not that the probe failed
	Exists(ctx context.Context, key string) (bool, error)

	// Fetch returns the stored bytes or ErrNotFound
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Deleting an already absent object is not
	// an error
	Delete(ctx context.Context, key string) error
}
