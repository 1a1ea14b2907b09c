package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/verdant-labs/cropsight/core/model"
)

func TestRunDispatch(t *testing.T) {
	if code := run([]string{"cropsight"}); code != exitInvalidInput {
		t.Fatalf("run without args: expected %d got %d", exitInvalidInput, code)
	}
	if code := run([]string{"cropsight", "version"}); code != exitOK {
		t.Fatalf("run version: expected %d got %d", exitOK, code)
	}
	if code := run([]string{"cropsight", "unknown"}); code != exitInvalidInput {
		t.Fatalf("run unknown: expected %d got %d", exitInvalidInput, code)
	}
	if code := run([]string{"cropsight", "--explain"}); code != exitOK {
		t.Fatalf("run top-level explain: expected %d got %d", exitOK, code)
	}
	for _, command := range []string{"serve", "classify", "encrypt", "verify", "keys", "version"} {
		if code := run([]string{"cropsight", command, "--explain"}); code != exitOK {
			t.Fatalf("run %s --explain: expected %d got %d", command, exitOK, code)
		}
	}
	if code := run([]string{"cropsight", "keys"}); code != exitInvalidInput {
		t.Fatalf("run keys without subcommand: expected %d got %d", exitInvalidInput, code)
	}
	if code := run([]string{"cropsight", "keys", "unknown"}); code != exitInvalidInput {
		t.Fatalf("run keys unknown: expected %d got %d", exitInvalidInput, code)
	}
}

func TestMainEntrypoint(t *testing.T) {
	if os.Getenv("CROPSIGHT_TEST_MAIN") == "1" {
		os.Args = []string{"cropsight", "version"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMainEntrypoint")
	cmd.Env = append(os.Environ(), "CROPSIGHT_TEST_MAIN=1")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run child process: %v", err)
	}
}

func TestKeysGenerateAndID(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "model.key")

	if code := run([]string{"cropsight", "keys", "id", "--key", keyPath}); code != exitStartupFailed {
		t.Fatalf("keys id without key: expected %d got %d", exitStartupFailed, code)
	}
	if code := run([]string{"cropsight", "keys", "generate", "--key", keyPath}); code != exitOK {
		t.Fatalf("keys generate: expected %d got %d", exitOK, code)
	}
	if code := run([]string{"cropsight", "keys", "generate", "--key", keyPath}); code != exitInternalFailure {
		t.Fatalf("keys generate over existing key: expected %d got %d", exitInternalFailure, code)
	}
	if code := run([]string{"cropsight", "keys", "id", "--key", keyPath}); code != exitOK {
		t.Fatalf("keys id: expected %d got %d", exitOK, code)
	}
}

func TestEncryptVerifyClassifyRoundtrip(t *testing.T) {
	workDir := t.TempDir()
	modelPath := filepath.Join(workDir, "model.weights")
	containerPath := filepath.Join(workDir, "model.container")
	keyPath := filepath.Join(workDir, "model.key")
	imagePath := filepath.Join(workDir, "leaf.png")

	if err := os.WriteFile(modelPath, marshalFixtureModel(t), 0o600); err != nil {
		t.Fatalf("write model fixture: %v", err)
	}
	writeFixtureImage(t, imagePath)

	if code := run([]string{"cropsight", "encrypt", "--in", modelPath, "--out", containerPath, "--key", keyPath}); code != exitOK {
		t.Fatalf("encrypt: expected %d got %d", exitOK, code)
	}
	if _, err := os.Stat(keyPath); err != nil {
		t.Fatalf("expected encrypt to generate key file: %v", err)
	}

	if code := run([]string{"cropsight", "verify", "--container", containerPath}); code != exitOK {
		t.Fatalf("structural verify: expected %d got %d", exitOK, code)
	}
	if code := run([]string{"cropsight", "verify", "--container", containerPath, "--key", keyPath}); code != exitOK {
		t.Fatalf("keyed verify: expected %d got %d", exitOK, code)
	}

	if code := run([]string{"cropsight", "classify", "--image", imagePath, "--container", containerPath, "--key", keyPath}); code != exitOK {
		t.Fatalf("classify: expected %d got %d", exitOK, code)
	}
}

func TestVerifyFailures(t *testing.T) {
	workDir := t.TempDir()
	containerPath := filepath.Join(workDir, "model.container")

	if code := run([]string{"cropsight", "verify", "--container", containerPath}); code != exitVerifyFailed {
		t.Fatalf("verify missing container: expected %d got %d", exitVerifyFailed, code)
	}

	if err := os.WriteFile(containerPath, []byte(`{"not":"a container"}`), 0o600); err != nil {
		t.Fatalf("write malformed container: %v", err)
	}
	if code := run([]string{"cropsight", "verify", "--container", containerPath}); code != exitVerifyFailed {
		t.Fatalf("verify malformed container: expected %d got %d", exitVerifyFailed, code)
	}
}

func TestClassifyInputValidation(t *testing.T) {
	workDir := t.TempDir()

	if code := run([]string{"cropsight", "classify"}); code != exitInvalidInput {
		t.Fatalf("classify without image: expected %d got %d", exitInvalidInput, code)
	}

	code := run([]string{
		"cropsight", "classify",
		"--image", filepath.Join(workDir, "leaf.png"),
		"--container", filepath.Join(workDir, "missing.container"),
		"--key", filepath.Join(workDir, "missing.key"),
	})
	if code != exitStartupFailed {
		t.Fatalf("classify with missing artifact: expected %d got %d", exitStartupFailed, code)
	}
}

func TestEncryptInputValidation(t *testing.T) {
	workDir := t.TempDir()

	if code := run([]string{"cropsight", "encrypt"}); code != exitInvalidInput {
		t.Fatalf("encrypt without input: expected %d got %d", exitInvalidInput, code)
	}
	code := run([]string{
		"cropsight", "encrypt",
		"--in", filepath.Join(workDir, "missing.weights"),
		"--out", filepath.Join(workDir, "model.container"),
		"--key", filepath.Join(workDir, "model.key"),
	})
	if code != exitInvalidInput {
		t.Fatalf("encrypt missing input file: expected %d got %d", exitInvalidInput, code)
	}
}

// marshalFixtureModel builds a full-size linear model matching the serving
// preprocessor shape so classify runs end to end.
func marshalFixtureModel(t *testing.T) []byte {
	t.Helper()
	features := 3 * model.DefaultImageSize * model.DefaultImageSize
	weights := make([][]float32, 8)
	for i := range weights {
		weights[i] = make([]float32, features)
	}
	bias := []float32{4, 0, 0, 0, 0, 0, 0, 0}
	m, err := model.NewLinear(weights, bias)
	if err != nil {
		t.Fatalf("build fixture model: %v", err)
	}
	return m.Marshal()
}

func writeFixtureImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 180, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture image: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write fixture image: %v", err)
	}
}
