package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/keystore"
)

func runKeys(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Manage model key files: generate a fresh key or print the identifier of an existing one.")
	}
	if len(arguments) < 1 {
		printKeysUsage()
		return exitInvalidInput
	}

	switch arguments[0] {
	case "generate":
		return runKeysGenerate(arguments[1:])
	case "id":
		return runKeysID(arguments[1:])
	default:
		printKeysUsage()
		return exitInvalidInput
	}
}

func runKeysGenerate(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Generate a new model key file; refuses to overwrite an existing key.")
	}
	flagSet := flag.NewFlagSet("keys generate", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var keyPath string
	flagSet.StringVar(&keyPath, "key", env.KeyPath, "path to write the key file")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "keys generate:", err)
		return exitInvalidInput
	}

	key, err := keystore.Generate(keyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keys generate:", err)
		return exitInternalFailure
	}
	printKeySummary(keyPath, keystore.KeyID(key))
	return exitOK
}

func runKeysID(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Print the non-secret identifier of an existing key file.")
	}
	flagSet := flag.NewFlagSet("keys id", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var keyPath string
	flagSet.StringVar(&keyPath, "key", env.KeyPath, "path to the key file")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "keys id:", err)
		return exitInvalidInput
	}

	key, err := keystore.Load(keyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keys id:", err)
		return exitStartupFailed
	}
	printKeySummary(keyPath, keystore.KeyID(key))
	return exitOK
}

func printKeySummary(keyPath, keyID string) {
	encoded, err := json.Marshal(struct {
		OK      bool   `json:"ok"`
		KeyPath string `json:"key_path"`
		KeyID   string `json:"key_id"`
	}{OK: true, KeyPath: keyPath, KeyID: keyID})
	if err != nil {
		fmt.Println(`{"ok":false,"error":"failed to encode summary","error_type":"internal_failure"}`)
		return
	}
	fmt.Println(string(encoded))
}

func printKeysUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  cropsight keys generate [--key path]
  cropsight keys id       [--key path]`)
}
