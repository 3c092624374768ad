// config.go - Environment configuration loading and fail-fast validation.
//
// Every setting is read once at startup; a missing connection string or a
// half-configured storage backend is a startup error, never a per-request
// surprise.
package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends for uploaded images.
const (
	StorageDisk  = "disk"
	StorageMinio = "minio"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Addr string

	// Document store.
	MongoURI string
	DBName   string

	// Asset storage.
	Storage   string // "disk" or "minio"
	UploadDir string
	S3        S3Config

	MaxUploadBytes int64

	Version string
	Commit  string
}

// S3Config configures the MinIO asset backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// ConfigError is one field-level validation failure.
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// LoadConfig reads the environment and validates it, collecting every
// problem before reporting so a broken deployment shows all its mistakes
// at once.
func LoadConfig() (Config, error) {
	cfg := Config{
		Addr:      getenvDefault("AR_ADDR", ":8000"),
		MongoURI:  os.Getenv("MONGODB_URI"),
		DBName:    getenvDefault("AR_DB_NAME", "AnimalDatabase"),
		Storage:   getenvDefault("AR_STORAGE", StorageDisk),
		UploadDir: getenvDefault("AR_UPLOAD_DIR", "public/uploads"),
		S3: S3Config{
			Endpoint:  os.Getenv("AR_S3_ENDPOINT"),
			AccessKey: os.Getenv("AR_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("AR_S3_SECRET_KEY"),
			Bucket:    os.Getenv("AR_S3_BUCKET"),
		},
		Version: getenvDefault("AR_VERSION", "dev"),
		Commit:  getenvDefault("AR_COMMIT", "unknown"),
	}

	var errs []ConfigError

	if raw := os.Getenv("AR_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			errs = append(errs, ConfigError{"AR_MAX_UPLOAD_BYTES", "must be a non-negative integer"})
		} else {
			cfg.MaxUploadBytes = n
		}
	}

	if cfg.MongoURI == "" {
		errs = append(errs, ConfigError{"MONGODB_URI", "connection string is required"})
	}

	switch cfg.Storage {
	case StorageDisk:
		if cfg.UploadDir == "" {
			errs = append(errs, ConfigError{"AR_UPLOAD_DIR", "required for disk storage"})
		}
	case StorageMinio:
		if cfg.S3.Endpoint == "" || cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "" || cfg.S3.Bucket == "" {
			errs = append(errs, ConfigError{"AR_S3_*", "endpoint, access key, secret key and bucket are all required for minio storage"})
		}
	default:
		errs = append(errs, ConfigError{"AR_STORAGE", fmt.Sprintf("unknown backend %q (want %q or %q)", cfg.Storage, StorageDisk, StorageMinio)})
	}

	if len(errs) > 0 {
		return Config{}, configErrors(errs)
	}
	return cfg, nil
}

type configErrors []ConfigError

func (e configErrors) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d error(s):", len(e))
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
