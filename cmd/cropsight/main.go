package main

import (
	"fmt"
	"os"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

const (
	exitOK              = 0
	exitInvalidInput    = 2
	exitStartupFailed   = 3
	exitVerifyFailed    = 4
	exitInternalFailure = 5
)

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	if len(arguments) < 2 {
		printUsage()
		return exitInvalidInput
	}
	if arguments[1] == "--explain" {
		return writeExplain("CropSight hosts an encrypted plant-health classifier behind a long-lived worker process speaking line-delimited JSON over stdin/stdout.")
	}

	switch arguments[1] {
	case "serve":
		return runServe(arguments[2:])
	case "classify":
		return runClassify(arguments[2:])
	case "encrypt":
		return runEncrypt(arguments[2:])
	case "verify":
		return runVerify(arguments[2:])
	case "keys":
		return runKeys(arguments[2:])
	case "version", "--version", "-v":
		if hasExplainFlag(arguments[2:]) {
			return writeExplain("Print the CLI version.")
		}
		fmt.Println("cropsight", version)
		return exitOK
	default:
		printUsage()
		return exitInvalidInput
	}
}

func printUsage() {
	// Usage goes to stderr: stdout is reserved for protocol and JSON output.
	fmt.Fprintln(os.Stderr, `cropsight — encrypted plant-health classification worker

Usage:
  cropsight serve     [--container path] [--key path] [--worker-id id]
  cropsight classify  --image path [--container path] [--key path]
  cropsight encrypt   --in path --out path [--key path]
  cropsight verify    --container path [--key path]
  cropsight keys      generate|id [flags]
  cropsight version

Run any command with --explain for a one-line description.`)
}
