// Package secureload owns the one-shot path from encrypted artifact to
// constructed model. Decrypted weights exist only inside Load: they are
// verified, handed to the constructor, then zeroed before Load returns.
// Any ambiguity about artifact authenticity resolves to refusal to serve.
package secureload

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/verdant-labs/cropsight/core/artifact"
	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/keystore"
	"github.com/verdant-labs/cropsight/core/model"
)

// Report summarizes a verified container for diagnostics and the offline
// verify command. It never carries plaintext or key material.
type Report struct {
	Fingerprint   string `json:"fingerprint"`
	ContentHash   string `json:"content_hash"`
	OriginalSize  uint64 `json:"original_size"`
	FormatVersion string `json:"format_version"`
}

// Load decrypts the container at containerPath with the key at keyPath,
// verifies plaintext integrity and hands the verified bytes to construct.
// The returned model handle is the only artifact of the call; the plaintext
// buffer is zeroed before Load returns.
func Load(containerPath, keyPath string, construct model.Constructor) (model.Model, Report, error) {
	plaintext, report, err := openVerified(containerPath, keyPath)
	if err != nil {
		return nil, Report{}, err
	}
	defer zero(plaintext)

	handle, err := construct(plaintext)
	if err != nil {
		return nil, Report{}, errors.Wrap(fmt.Errorf("construct model: %w", err), errors.CategoryInternalFailure, "model_construct_failed", true)
	}
	return handle, report, nil
}

// Verify runs the full decrypt-and-check pipeline without constructing a
// model. The decrypted buffer is zeroed before returning.
func Verify(containerPath, keyPath string) (Report, error) {
	plaintext, report, err := openVerified(containerPath, keyPath)
	if err != nil {
		return Report{}, err
	}
	zero(plaintext)
	return report, nil
}

func openVerified(containerPath, keyPath string) ([]byte, Report, error) {
	// #nosec G304 -- container path is explicit process configuration.
	raw, err := os.ReadFile(containerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Report{}, errors.Wrap(fmt.Errorf("artifact not found: %s", containerPath), errors.CategoryArtifactNotFound, "artifact_not_found", true)
		}
		return nil, Report{}, errors.Wrap(fmt.Errorf("read artifact: %w", err), errors.CategoryArtifactNotFound, "artifact_read_failed", true)
	}

	key, err := keystore.Load(keyPath)
	if err != nil {
		return nil, Report{}, err
	}

	container, err := artifact.Decode(raw)
	if err != nil {
		return nil, Report{}, err
	}

	plaintext, err := artifact.Open(container, key)
	if err != nil {
		return nil, Report{}, err
	}

	if err := verifyIntegrity(plaintext, container.Metadata); err != nil {
		zero(plaintext)
		return nil, Report{}, err
	}

	fingerprint, err := artifact.Fingerprint(raw)
	if err != nil {
		zero(plaintext)
		return nil, Report{}, errors.Wrap(fmt.Errorf("fingerprint container: %w", err), errors.CategoryMalformedArtifact, "container_fingerprint_failed", true)
	}

	return plaintext, Report{
		Fingerprint:   fingerprint,
		ContentHash:   container.Metadata.ContentHash,
		OriginalSize:  container.Metadata.OriginalSize,
		FormatVersion: container.Metadata.FormatVersion,
	}, nil
}

// verifyIntegrity recomputes the plaintext hash and compares it
// constant-time against the hash bound into the container at encryption
// time. A mismatch is a hard fail, never a warning.
func verifyIntegrity(plaintext []byte, meta artifact.Metadata) error {
	expected, err := hex.DecodeString(meta.ContentHash)
	if err != nil || len(expected) != sha256.Size {
		return integrityFailed()
	}
	sum := sha256.Sum256(plaintext)
	if subtle.ConstantTimeCompare(sum[:], expected) != 1 {
		return integrityFailed()
	}
	if uint64(len(plaintext)) != meta.OriginalSize {
		return integrityFailed()
	}
	return nil
}

func integrityFailed() error {
	return errors.Wrap(fmt.Errorf("artifact integrity check failed"), errors.CategoryIntegrityCheckFailed, "content_hash_mismatch", true)
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
