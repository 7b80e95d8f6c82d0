// Package secrets seals catalog connection passwords before they reach the
// application database.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidCiphertext = errors.New("invalid_ciphertext")
)

// Box encrypts and decrypts short secrets with XChaCha20-Poly1305.
type Box struct {
	key [chacha20poly1305.KeySize]byte
}

// NewBox derives a Box from the configured key material. A base64 value that
// decodes to exactly 32 bytes is used as-is; anything else is hashed down to
// the key size so operators can supply a passphrase.
func NewBox(keyMaterial string) (*Box, error) {
	if keyMaterial == "" {
		return nil, errors.New("empty encryption key")
	}

	var box Box
	if raw, err := base64.StdEncoding.DecodeString(keyMaterial); err == nil && len(raw) == chacha20poly1305.KeySize {
		copy(box.key[:], raw)
		return &box, nil
	}

	sum := sha256.Sum256([]byte(keyMaterial))
	copy(box.key[:], sum[:])
	return &box, nil
}

// GenerateKey returns a fresh random key in the base64 form NewBox accepts.
func GenerateKey() (string, error) {
	raw := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Seal encrypts plaintext into a base64 token.
func (b *Box) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key[:])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal.
func (b *Box) Open(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	aead, err := chacha20poly1305.NewX(b.key[:])
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
