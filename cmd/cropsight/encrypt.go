package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/verdant-labs/cropsight/core/artifact"
	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/fsx"
	"github.com/verdant-labs/cropsight/core/keystore"
)

type encryptSummary struct {
	OK            bool   `json:"ok"`
	ContainerPath string `json:"container_path"`
	KeyPath       string `json:"key_path"`
	KeyGenerated  bool   `json:"key_generated"`
	OriginalSize  uint64 `json:"original_size"`
	ContentHash   string `json:"content_hash"`
	Fingerprint   string `json:"fingerprint"`
}

func runEncrypt(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Seal a plaintext model file into an encrypted container, generating the key file if it does not exist yet.")
	}
	flagSet := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var inPath string
	var outPath string
	var keyPath string
	flagSet.StringVar(&inPath, "in", "", "path to the plaintext model file")
	flagSet.StringVar(&outPath, "out", env.ContainerPath, "path to write the encrypted container")
	flagSet.StringVar(&keyPath, "key", env.KeyPath, "path to the key file, generated when absent")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInvalidInput
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "encrypt: --in is required")
		return exitInvalidInput
	}

	plaintext, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt: read model:", err)
		return exitInvalidInput
	}

	key, generated, err := keystore.LoadOrGenerate(keyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}

	container, err := artifact.Encode(plaintext, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}
	encoded, err := container.Marshal()
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}
	fingerprint, err := artifact.Fingerprint(encoded)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}

	if err := fsx.EnsureDir(filepath.Dir(outPath)); err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}
	if err := fsx.WriteFileAtomic(outPath, encoded, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "encrypt:", err)
		return exitInternalFailure
	}

	summary, err := json.Marshal(encryptSummary{
		OK:            true,
		ContainerPath: outPath,
		KeyPath:       keyPath,
		KeyGenerated:  generated,
		OriginalSize:  container.Metadata.OriginalSize,
		ContentHash:   container.Metadata.ContentHash,
		Fingerprint:   fingerprint,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "encrypt: encode summary:", err)
		return exitInternalFailure
	}
	fmt.Println(string(summary))
	return exitOK
}
