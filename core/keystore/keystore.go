// Package keystore owns the symmetric model key: a single base64-encoded
// 32-byte key file readable only by the owner. The raw key bytes are held
// in process memory for the worker lifetime and never appear in logs or
// responses.
package keystore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/fsx"
)

// KeySize is the length of the raw symmetric key in bytes.
const KeySize = 32

// Load reads the key from path. A missing file is a startup-fatal
// key_not_found; the worker never bootstraps its own key.
func Load(path string) ([]byte, error) {
	// #nosec G304 -- key path is explicit local configuration.
	encoded, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(fmt.Errorf("key file not found: %s", path), errors.CategoryKeyNotFound, "key_not_found", true)
		}
		return nil, errors.Wrap(fmt.Errorf("read key file: %w", err), errors.CategoryKeyNotFound, "key_read_failed", true)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("decode key: %w", err), errors.CategoryKeyNotFound, "key_decode_failed", true)
	}
	if len(key) != KeySize {
		return nil, errors.Wrap(fmt.Errorf("invalid key length: %d", len(key)), errors.CategoryKeyNotFound, "key_invalid_length", true)
	}
	return key, nil
}

// Generate creates a fresh random key at path with owner-only permissions.
// It refuses to overwrite an existing key file.
func Generate(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("key file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat key file: %w", err)
	}
	if err := fsx.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := fsx.WriteFileAtomic(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

// LoadOrGenerate returns the key at path, creating one on first run. Only
// the offline encryption tooling uses this; serving paths require an
// existing key. The second return reports whether a key was generated.
func LoadOrGenerate(path string) ([]byte, bool, error) {
	key, err := Load(path)
	if err == nil {
		return key, false, nil
	}
	if errors.CodeOf(err) != "key_not_found" {
		return nil, false, err
	}
	key, err = Generate(path)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// KeyID returns a short fingerprint for diagnostics. It identifies the key
// without revealing it.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])[:16]
}
