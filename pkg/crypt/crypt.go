// Package crypt seals small values with AES-256-GCM. The persisted auth
// session goes through it before it reaches the key-value store.
//
//	box, _ := crypt.New(config.AppKey())
//	enc, _ := box.SealJSON(session)
//	var s auth.Session
//	err := box.OpenJSON(enc, &s)
//
// Output is base64url(nonce || ciphertext || tag).
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt is returned when decoding or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

const keyInfo = "storefront/crypt/v1"

// Box holds a derived AES-GCM key.
type Box struct {
	aead cipher.AEAD
}

// New derives a 32-byte key from secret with HKDF-SHA256.
func New(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("crypt: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Seal encrypts data.
func (b *Box) Seal(data []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, data, nil)), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}
	plain, err := b.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// SealJSON marshals v then seals it.
func (b *Box) SealJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	return b.Seal(raw)
}

// OpenJSON opens encoded and unmarshals into dest.
func (b *Box) OpenJSON(encoded string, dest interface{}) error {
	raw, err := b.Open(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("crypt: unmarshal: %w", err)
	}
	return nil
}
