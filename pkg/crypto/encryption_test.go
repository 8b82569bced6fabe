// pkg/crypto/encryption_test.go

package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc := NewEncryptionOperations(zap.NewNop())
	ctx := context.Background()

	key, err := enc.GenerateKey(ctx, KeySize*8)
	require.NoError(t, err)
	require.Len(t, key, KeySize)

	plaintext := []byte(`{"identity":"abc123","secret":"hunter2"}`)
	sealed, err := enc.Encrypt(ctx, plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := enc.Decrypt(ctx, sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc := NewEncryptionOperations(zap.NewNop())
	ctx := context.Background()

	key, err := enc.GenerateKey(ctx, KeySize*8)
	require.NoError(t, err)

	sealed, err := enc.Encrypt(ctx, []byte("payload"), key)
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = enc.Decrypt(ctx, sealed, key)
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	enc := NewEncryptionOperations(zap.NewNop())
	ctx := context.Background()

	key, err := enc.GenerateKey(ctx, KeySize*8)
	require.NoError(t, err)
	otherKey, err := enc.GenerateKey(ctx, KeySize*8)
	require.NoError(t, err)

	sealed, err := enc.Encrypt(ctx, []byte("payload"), key)
	require.NoError(t, err)

	_, err = enc.Decrypt(ctx, sealed, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	enc := NewEncryptionOperations(zap.NewNop())
	key := make([]byte, KeySize)

	_, err := enc.Decrypt(context.Background(), []byte("short"), key)
	assert.Error(t, err)
}

func TestSecureZero(t *testing.T) {
	buf := []byte("sensitive")
	SecureZero(buf)
	for _, b := range buf {
		assert.Zero(t, b)
	}
}
