// Package secrets encrypts short secret strings (API keys) before they are
// written to the local store. The AES-256-GCM key is re-derived from a
// stable per-installation identifier on every operation; no key material is
// ever persisted, so the secrets are readable only for the lifetime of the
// installation. Reinstalling loses access to prior secrets.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"

	"github.com/phihung0131/vocabulary-extension/internal/apperr"
	"github.com/phihung0131/vocabulary-extension/internal/store"
)

const (
	// keyIterations is the PBKDF2 round count for key derivation.
	keyIterations = 100_000
	// keyLen is the derived key length in bytes (AES-256).
	keyLen = 32
	// nonceSize is the GCM nonce length in bytes.
	nonceSize = 12
	// keyPrefix namespaces encrypted values in the secrets table.
	keyPrefix = "secure_"
	// legacyPrefix is where pre-encryption installs kept plaintext values.
	legacyPrefix = "plain_"
)

// derivationSalt is fixed: uniqueness comes from the installation ID, and a
// stored random salt would defeat the no-persisted-key-material property.
var derivationSalt = []byte("vocabulary-extension/secrets/v1")

// SecretStore encrypts and decrypts named secrets backed by a store table.
type SecretStore struct {
	store     store.Store
	installID string
	log       *zap.Logger
}

// New constructs a SecretStore bound to the given backing store and
// per-installation identifier. The identifier must be stable across runs;
// see InstallationID.
func New(s store.Store, installID string, log *zap.Logger) *SecretStore {
	return &SecretStore{store: s, installID: installID, log: log}
}

// deriveKey recomputes the 256-bit symmetric key from the installation ID.
func (s *SecretStore) deriveKey() []byte {
	return pbkdf2.Key([]byte(s.installID), derivationSalt, keyIterations, keyLen, sha256.New)
}

// newAEAD builds the AES-GCM cipher over the derived key.
func (s *SecretStore) newAEAD() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.deriveKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with a fresh random nonce and returns
// base64(nonce‖ciphertext).
func (s *SecretStore) Encrypt(plaintext string) (string, error) {
	aead, err := s.newAEAD()
	if err != nil {
		return "", apperr.Crypto("create cipher", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", apperr.Crypto("generate nonce", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails with a crypto error on malformed input
// or authentication failure and never returns partial plaintext.
func (s *SecretStore) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperr.Crypto("decode secret", err)
	}
	if len(raw) <= nonceSize {
		return "", apperr.Crypto("decode secret", errors.New("ciphertext too short"))
	}
	aead, err := s.newAEAD()
	if err != nil {
		return "", apperr.Crypto("create cipher", err)
	}
	plain, err := aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", apperr.Crypto("decrypt secret", err)
	}
	return string(plain), nil
}

// Set encrypts value and stores it under name.
func (s *SecretStore) Set(name, value string) error {
	sealed, err := s.Encrypt(value)
	if err != nil {
		return err
	}
	return s.store.Put(store.TableSecrets, keyPrefix+name, []byte(sealed))
}

// Get returns the decrypted secret and true, or "" and false if the secret
// is absent or cannot be decrypted. Failures are logged, not returned: a
// missing secret degrades to "not configured" rather than an error.
func (s *SecretStore) Get(name string) (string, bool) {
	raw, err := s.store.Get(store.TableSecrets, keyPrefix+name)
	if err != nil {
		return "", false
	}
	plain, err := s.Decrypt(string(raw))
	if err != nil {
		s.log.Warn("failed to decrypt secret", zap.String("name", name), zap.Error(err))
		return "", false
	}
	return plain, true
}

// Delete removes the secret under name.
func (s *SecretStore) Delete(name string) error {
	return s.store.Delete(store.TableSecrets, keyPrefix+name)
}

// IsEncrypted is a heuristic used only to decide whether a legacy value
// still needs migration. It is not a security boundary.
func IsEncrypted(value string) bool {
	if len(value) <= 20 {
		return false
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	for _, r := range value {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}

// MigrateSecret moves a legacy plaintext secret into the encrypted store.
// It is idempotent and best-effort: it reports whether a migration
// happened and never returns an error to the caller.
func (s *SecretStore) MigrateSecret(name string) bool {
	raw, err := s.store.Get(store.TableSecrets, legacyPrefix+name)
	if err != nil {
		return false
	}
	value := string(raw)
	if IsEncrypted(value) {
		// Already migrated by an earlier run; just drop the stale copy.
		if err := s.store.Delete(store.TableSecrets, legacyPrefix+name); err != nil {
			s.log.Warn("failed to remove migrated secret", zap.String("name", name), zap.Error(err))
		}
		return false
	}
	if err := s.Set(name, value); err != nil {
		s.log.Warn("secret migration failed", zap.String("name", name), zap.Error(err))
		return false
	}
	if err := s.store.Delete(store.TableSecrets, legacyPrefix+name); err != nil {
		s.log.Warn("failed to remove plaintext secret", zap.String("name", name), zap.Error(err))
	}
	s.log.Info("migrated legacy secret", zap.String("name", name))
	return true
}
