package security

import "github.com/google/uuid"

// NewShareToken generates a globally unique, unguessable link share token.
// uuid.NewString reads from crypto/rand so tokens can't be enumerated.
func NewShareToken() string {
	return "share-" + uuid.NewString()
}
