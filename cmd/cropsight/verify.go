package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/verdant-labs/cropsight/core/artifact"
	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/secureload"
)

type verifySummary struct {
	OK            bool   `json:"ok"`
	ContainerPath string `json:"container_path"`
	Decrypted     bool   `json:"decrypted"`
	Fingerprint   string `json:"fingerprint"`
	ContentHash   string `json:"content_hash,omitempty"`
	OriginalSize  uint64 `json:"original_size,omitempty"`
	FormatVersion string `json:"format_version"`
	Error         string `json:"error,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
}

// runVerify checks a container without ever exposing plaintext. With a key
// it decrypts and replays the full integrity check; without one it only
// validates structure and reports the fingerprint.
func runVerify(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Verify an encrypted container: structural check and fingerprint always, full decrypt-and-hash check when a key is supplied.")
	}
	flagSet := flag.NewFlagSet("verify", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var containerPath string
	var keyPath string
	flagSet.StringVar(&containerPath, "container", env.ContainerPath, "path to the encrypted container")
	flagSet.StringVar(&keyPath, "key", "", "path to the key file; omit for a structural check only")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		return exitInvalidInput
	}

	if keyPath != "" {
		report, err := secureload.Verify(containerPath, keyPath)
		if err != nil {
			return printVerifyFailure(containerPath, err)
		}
		printVerifySummary(verifySummary{
			OK:            true,
			ContainerPath: containerPath,
			Decrypted:     true,
			Fingerprint:   report.Fingerprint,
			ContentHash:   report.ContentHash,
			OriginalSize:  report.OriginalSize,
			FormatVersion: report.FormatVersion,
		})
		return exitOK
	}

	encoded, err := os.ReadFile(containerPath)
	if err != nil {
		return printVerifyFailure(containerPath, errors.Wrap(err, errors.CategoryArtifactNotFound, "artifact_read_failed", true))
	}
	container, err := artifact.Decode(encoded)
	if err != nil {
		return printVerifyFailure(containerPath, err)
	}
	fingerprint, err := artifact.Fingerprint(encoded)
	if err != nil {
		return printVerifyFailure(containerPath, err)
	}
	printVerifySummary(verifySummary{
		OK:            true,
		ContainerPath: containerPath,
		Fingerprint:   fingerprint,
		ContentHash:   container.Metadata.ContentHash,
		OriginalSize:  container.Metadata.OriginalSize,
		FormatVersion: container.Metadata.FormatVersion,
	})
	return exitOK
}

func printVerifyFailure(containerPath string, err error) int {
	errorType := string(errors.CategoryOf(err))
	if errorType == "" {
		errorType = string(errors.CategoryInternalFailure)
	}
	printVerifySummary(verifySummary{
		ContainerPath: containerPath,
		Error:         err.Error(),
		ErrorType:     errorType,
	})
	return exitVerifyFailed
}

func printVerifySummary(summary verifySummary) {
	encoded, err := json.Marshal(summary)
	if err != nil {
		fmt.Println(`{"ok":false,"error":"failed to encode summary","error_type":"internal_failure"}`)
		return
	}
	fmt.Println(string(encoded))
}
