// Package artifact implements the encrypted model container: ciphertext
// bound to the integrity metadata computed over the plaintext at
// encryption time. Decode is structural only; decryption and verification
// belong to the secure loader.
package artifact

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/jcs"
	"github.com/verdant-labs/cropsight/core/schema"
)

// FormatVersion is written into every container this build produces.
// Decoding accepts any 1.x container.
const FormatVersion = "1.0.0"

type Metadata struct {
	OriginalSize  uint64 `json:"original_size"`
	ContentHash   string `json:"content_hash"`
	FormatVersion string `json:"format_version"`
}

type Container struct {
	Metadata   Metadata `json:"metadata"`
	Ciphertext []byte   `json:"ciphertext"`
}

// ContentHash returns the hex sha256 of plaintext, the value bound into
// container metadata at encryption time.
func ContentHash(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

// Encode hashes and encrypts plaintext under key. The nonce is prepended to
// the ciphertext. Encode keeps no reference to plaintext after returning.
func Encode(plaintext, key []byte) (Container, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Container{}, fmt.Errorf("initialize cipher: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Container{}, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return Container{
		Metadata: Metadata{
			OriginalSize:  uint64(len(plaintext)),
			ContentHash:   ContentHash(plaintext),
			FormatVersion: FormatVersion,
		},
		Ciphertext: sealed,
	}, nil
}

// Marshal serializes the container for storage.
func (c Container) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses and structurally validates a serialized container. It never
// touches the ciphertext content and never needs the key.
func Decode(raw []byte) (Container, error) {
	if err := schema.ValidateContainer(raw); err != nil {
		return Container{}, errors.Wrap(fmt.Errorf("container structure: %w", err), errors.CategoryMalformedArtifact, "container_schema_invalid", true)
	}
	var c Container
	if err := json.Unmarshal(raw, &c); err != nil {
		return Container{}, errors.Wrap(fmt.Errorf("parse container: %w", err), errors.CategoryMalformedArtifact, "container_parse_failed", true)
	}
	if major, _, _ := strings.Cut(c.Metadata.FormatVersion, "."); major != "1" {
		return Container{}, errors.Wrap(fmt.Errorf("unsupported container format version: %s", c.Metadata.FormatVersion), errors.CategoryMalformedArtifact, "container_version_unsupported", true)
	}
	return c, nil
}

// Open authenticates and decrypts the container ciphertext. Every failure
// mode (wrong key, truncated ciphertext, tampering) collapses into one
// generic decryption error so callers cannot be used as an oracle.
func Open(c Container, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, decryptionFailed()
	}
	if len(c.Ciphertext) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, decryptionFailed()
	}
	nonce := c.Ciphertext[:chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, c.Ciphertext[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return nil, decryptionFailed()
	}
	return plaintext, nil
}

func decryptionFailed() error {
	return errors.Wrap(fmt.Errorf("artifact decryption failed"), errors.CategoryDecryptionFailed, "artifact_open_failed", true)
}

// Fingerprint returns the canonical (RFC 8785) sha256 digest of a
// serialized container, used in diagnostics and offline verification.
func Fingerprint(raw []byte) (string, error) {
	return jcs.Digest(raw)
}
