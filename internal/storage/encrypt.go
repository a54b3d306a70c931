// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation records for sia-console.
package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// AT-REST ENCRYPTION
// =============================================================================

// Optional protection of the conversation document at rest:
// AES-256-GCM authenticated encryption with a PBKDF2-SHA-256 derived key.
// Document format: "SIAENC1:" + base64(salt | nonce | ciphertext).

const (
	// encPrefix marks an encrypted document.
	encPrefix = "SIAENC1:"

	keySize  = 32
	saltSize = 32

	// OWASP-recommended iteration count for PBKDF2-SHA-256.
	kdfIterations = 600000
)

var (
	// ErrEmptyPassphrase indicates encryption was requested without a key.
	ErrEmptyPassphrase = errors.New("encryption passphrase is empty")
	// ErrInvalidCiphertext indicates the document format is invalid.
	ErrInvalidCiphertext = errors.New("invalid encrypted document format")
	// ErrDecryptionFailed indicates a wrong passphrase or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// Cipher encrypts and decrypts the stored document.
type Cipher struct {
	passphrase []byte
}

// NewCipher creates a cipher from a passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &Cipher{passphrase: []byte(passphrase)}, nil
}

// IsEncrypted reports whether data carries the encrypted-document marker.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(encPrefix))
}

// Encrypt seals plaintext into the document format. A fresh salt and
// nonce are drawn for every write.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	payload := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	out := []byte(encPrefix)
	out = append(out, base64.StdEncoding.EncodeToString(payload)...)
	return out, nil
}

// Decrypt opens a document produced by Encrypt.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if !IsEncrypted(data) {
		return nil, ErrInvalidCiphertext
	}

	payload, err := base64.StdEncoding.DecodeString(string(data[len(encPrefix):]))
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(payload) < saltSize {
		return nil, ErrInvalidCiphertext
	}

	salt := payload[:saltSize]
	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}

	rest := payload[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	nonce := rest[:gcm.NonceSize()]
	sealed := rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// aead derives the AES-256-GCM cipher for a given salt.
func (c *Cipher) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(c.passphrase, salt, kdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
