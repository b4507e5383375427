// Package security contains everything related to the security of user data
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	keySize   = 32 // AES-256
	nonceSize = 12
)

// ErrIntegrity is returned when the authentication tag doesn't verify
// against the provided key, nonce and ciphertext. No plaintext is ever
// returned in that case.
var ErrIntegrity = errors.New("file integrity check failed")

// Envelope holds everything produced by encrypting a single file. The key
// and nonce are generated fresh per call and must never be reused for
// another file.
type Envelope struct {
	Key        []byte
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// Encrypt seals plaintext with AES-256-GCM under a newly generated key and
// nonce. The GCM tag is split off the sealed output so it can be stored
// separately from the ciphertext.
func Encrypt(plaintext []byte) (*Envelope, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate file key, %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce, %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - aesgcm.Overhead()

	return &Envelope{
		Key:        key,
		Nonce:      nonce,
		Ciphertext: sealed[:split],
		Tag:        sealed[split:],
	}, nil
}

// Decrypt reconstructs the plaintext from its encryption material. Any
// mismatch (corrupted ciphertext, wrong key, tampered tag) fails closed
// with ErrIntegrity.
func Decrypt(key, nonce, ciphertext, tag []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aesgcm.NonceSize() {
		return nil, ErrIntegrity
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrIntegrity
	}

	return plaintext, nil
}

// Encode returns a storage-safe representation of b
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode reverses Encode
func Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
