package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var (
	// ErrEncryptionKeyNotSet indicates no secret was provided to derive the key from
	ErrEncryptionKeyNotSet = errors.New("session secret is empty")
	// ErrInvalidCiphertext indicates the ciphertext is malformed or too short
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const tokenKeyInfo = "pos-backoffice/session-token/v1"

// TokenCipher encrypts back-office tokens before they are written to the session store.
// It uses AES-256-GCM with a key derived from the session secret.
type TokenCipher struct {
	gcm cipher.AEAD
}

// NewTokenCipher derives a 32-byte key from secret with HKDF-SHA256
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(tokenKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive token key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &TokenCipher{gcm: gcm}, nil
}

// Encrypt returns base64(nonce || ciphertext)
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt
func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	if len(data) < c.gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, cipherData := data[:c.gcm.NonceSize()], data[c.gcm.NonceSize():]
	plaintext, err := c.gcm.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
