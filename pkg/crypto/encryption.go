// pkg/crypto/encryption.go
//
// Package crypto provides the symmetric encryption used for the on-disk
// credential record: AES-256-GCM with a random key, nonce prepended to the
// ciphertext.

package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// EncryptionOperations performs seal/open and key generation.
type EncryptionOperations struct {
	logger *zap.Logger
}

// NewEncryptionOperations creates an EncryptionOperations with the given logger.
func NewEncryptionOperations(logger *zap.Logger) *EncryptionOperations {
	return &EncryptionOperations{logger: logger}
}

// Encrypt encrypts data using AES-GCM. The nonce is prepended to the result.
func (e *EncryptionOperations) Encrypt(ctx context.Context, plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	e.logger.Debug("Data encrypted",
		zap.Int("plaintext_size", len(plaintext)),
		zap.Int("ciphertext_size", len(ciphertext)),
	)
	return ciphertext, nil
}

// Decrypt decrypts data produced by Encrypt. Any tampering or a wrong key
// fails GCM authentication and returns an error.
func (e *EncryptionOperations) Decrypt(ctx context.Context, ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	e.logger.Debug("Data decrypted",
		zap.Int("ciphertext_size", len(ciphertext)),
		zap.Int("plaintext_size", len(plaintext)),
	)
	return plaintext, nil
}

// GenerateKey generates a random encryption key of the given bit length.
func (e *EncryptionOperations) GenerateKey(ctx context.Context, bits int) ([]byte, error) {
	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	e.logger.Debug("Encryption key generated", zap.Int("bits", bits))
	return key, nil
}

// SecureZero overwrites sensitive byte slices after use.
func SecureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
