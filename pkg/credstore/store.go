// pkg/credstore/store.go
//
// Encrypted credential store. Persists the operator credential under
// AES-256-GCM in the working directory and tracks a failed-login marker.
// Every operation degrades to "no credentials available" on failure instead
// of propagating; credential unavailability must never crash the tool.

package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/crypto"
)

const (
	KeyFileName         = ".key"
	CredentialsFileName = ".credentials"
	FailedLoginFileName = ".failed_login"
)

// Credential is an operator identity and secret, held only in process memory
// outside this store. Never logged in plaintext.
type Credential struct {
	Identity string
	Secret   string
}

// record is the on-disk JSON layout inside the encrypted file.
type record struct {
	Identity string     `json:"identity"`
	Secret   string     `json:"secret"`
	SavedAt  *time.Time `json:"saved_at"`
}

// Status reports which store files exist, for display without decrypting.
type Status struct {
	HasKey      bool
	HasRecord   bool
	LoginFailed bool
}

// Store owns the key, record, and marker files. The encryption key is never
// handed out.
type Store struct {
	dir string
	log *zap.Logger
	enc *crypto.EncryptionOperations
}

// New creates a store rooted at dir ("." for the conventional layout).
func New(dir string, log *zap.Logger) *Store {
	return &Store{
		dir: dir,
		log: log,
		enc: crypto.NewEncryptionOperations(log),
	}
}

func (s *Store) keyPath() string    { return filepath.Join(s.dir, KeyFileName) }
func (s *Store) credPath() string   { return filepath.Join(s.dir, CredentialsFileName) }
func (s *Store) markerPath() string { return filepath.Join(s.dir, FailedLoginFileName) }

// EnsureKey generates the encryption key on first use. Idempotent: an
// existing key is never regenerated, because regenerating would silently
// invalidate every previously stored credential.
func (s *Store) EnsureKey(ctx context.Context) error {
	if _, err := os.Stat(s.keyPath()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return cerr.Wrap(err, "stat key file")
	}

	key, err := s.enc.GenerateKey(ctx, crypto.KeySize*8)
	if err != nil {
		return cerr.Wrap(err, "generate encryption key")
	}
	defer crypto.SecureZero(key)

	if err := writeFileAtomic(s.keyPath(), key, 0o600); err != nil {
		return cerr.Wrap(err, "write key file")
	}
	s.log.Info("Generated new encryption key")
	return nil
}

func (s *Store) readKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath())
	if err != nil {
		return nil, cerr.Wrap(err, "read key file")
	}
	if len(key) != crypto.KeySize {
		return nil, cerr.Newf("key file has unexpected length %d", len(key))
	}
	return key, nil
}

// Save encrypts and persists the credential, then clears any failed-login
// marker: a fresh save is trusted until proven otherwise. Returns false on
// any failure, logging the cause; callers fall through to prompting.
func (s *Store) Save(ctx context.Context, identity, secret string) bool {
	if err := s.EnsureKey(ctx); err != nil {
		s.log.Error("Error ensuring encryption key", zap.Error(err))
		return false
	}

	key, err := s.readKey()
	if err != nil {
		s.log.Error("Error reading encryption key", zap.Error(err))
		return false
	}
	defer crypto.SecureZero(key)

	now := time.Now().UTC()
	plaintext, err := json.Marshal(record{Identity: identity, Secret: secret, SavedAt: &now})
	if err != nil {
		s.log.Error("Error encoding credential record", zap.Error(err))
		return false
	}
	defer crypto.SecureZero(plaintext)

	sealed, err := s.enc.Encrypt(ctx, plaintext, key)
	if err != nil {
		s.log.Error("Error encrypting credentials", zap.Error(err))
		return false
	}

	if err := writeFileAtomic(s.credPath(), sealed, 0o600); err != nil {
		s.log.Error("Error saving credentials", zap.Error(err))
		return false
	}

	if err := os.Remove(s.markerPath()); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Could not clear failed-login marker", zap.Error(err))
	}

	s.log.Info("Credentials saved successfully")
	return true
}

// Load decrypts and returns the stored credential. Returns ok=false when no
// record exists, when the failed-login marker is present (a rejected
// credential must not be silently reused), or when decryption fails for any
// reason.
func (s *Store) Load(ctx context.Context) (Credential, bool) {
	if _, err := os.Stat(s.credPath()); err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("Error checking credential file", zap.Error(err))
		}
		return Credential{}, false
	}

	if _, err := os.Stat(s.markerPath()); err == nil {
		s.log.Info("Previous login attempt failed, requiring new credentials")
		return Credential{}, false
	}

	key, err := s.readKey()
	if err != nil {
		s.log.Error("Error reading encryption key", zap.Error(err))
		return Credential{}, false
	}
	defer crypto.SecureZero(key)

	sealed, err := os.ReadFile(s.credPath())
	if err != nil {
		s.log.Error("Error reading credential file", zap.Error(err))
		return Credential{}, false
	}

	plaintext, err := s.enc.Decrypt(ctx, sealed, key)
	if err != nil {
		s.log.Error("Error decrypting credentials", zap.Error(err))
		return Credential{}, false
	}
	defer crypto.SecureZero(plaintext)

	var rec record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		s.log.Error("Error decoding credential record", zap.Error(err))
		return Credential{}, false
	}

	return Credential{Identity: rec.Identity, Secret: rec.Secret}, true
}

// MarkLoginFailed writes the failed-login sentinel. Idempotent. While the
// marker exists Load refuses to hand out the stored credential.
func (s *Store) MarkLoginFailed(ctx context.Context) {
	if err := writeFileAtomic(s.markerPath(), []byte("1"), 0o600); err != nil {
		s.log.Error("Error marking failed login", zap.Error(err))
		return
	}
	s.log.Info("Marked login as failed - will request new credentials on next run")
}

// Clear removes the credential record and the failed-login marker. The key
// file stays; it is harmless without a record.
func (s *Store) Clear(ctx context.Context) bool {
	ok := true
	for _, path := range []string{s.credPath(), s.markerPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Error("Error clearing credentials", zap.String("path", path), zap.Error(err))
			ok = false
		}
	}
	if ok {
		s.log.Info("Credentials cleared successfully")
	}
	return ok
}

// Status reports file presence without touching the key or decrypting.
func (s *Store) Status(ctx context.Context) Status {
	exists := func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	return Status{
		HasKey:      exists(s.keyPath()),
		HasRecord:   exists(s.credPath()),
		LoginFailed: exists(s.markerPath()),
	}
}
