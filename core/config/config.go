// Package config resolves the worker's environment-supplied settings:
// artifact path, key path and worker identifier. Nothing else about the
// core is externally tunable.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultContainerPath = "./artifacts/model.container"
	DefaultKeyPath       = "./secrets/model.key"
	DefaultWorkerID      = "0"
)

type Config struct {
	ContainerPath string
	KeyPath       string
	WorkerID      string
}

// FromEnv loads a .env file when present (missing files are fine) and
// resolves each setting, preferring the CROPSIGHT_ names over the legacy
// ones.
func FromEnv() Config {
	_ = godotenv.Load()
	return Config{
		ContainerPath: lookup(DefaultContainerPath, "CROPSIGHT_MODEL_PATH", "MODEL_PATH"),
		KeyPath:       lookup(DefaultKeyPath, "CROPSIGHT_KEY_PATH", "MODEL_KEY_PATH"),
		WorkerID:      lookup(DefaultWorkerID, "CROPSIGHT_WORKER_ID", "WORKER_ID"),
	}
}

func lookup(fallback string, names ...string) string {
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
