package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Mode selects the persistence backend for a session.
type Mode string

const (
	ModeOffline Mode = "OFFLINE"
	ModeOnline  Mode = "ONLINE"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeOffline:
		return ModeOffline, nil
	case ModeOnline:
		return ModeOnline, nil
	}
	return "", fmt.Errorf("invalid mode %q: expected OFFLINE or ONLINE", raw)
}

// StorageConfig points at an S3-compatible bucket for product images in
// ONLINE mode. Supabase Storage exposes the same API.
type StorageConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

type Config struct {
	Port     int
	Env      string
	LogLevel string

	// Mode is the default used when a caller does not pick one explicitly.
	Mode        Mode
	DataDir     string
	DatabaseURL string
	Storage     StorageConfig

	LowStockThreshold int
	MaxImageBytes     int64
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// LocalDBPath is the OFFLINE database file.
func (c Config) LocalDBPath() string {
	return filepath.Join(c.DataDir, "isvara.db")
}

func Load() (Config, error) {
	return LoadFile(filepath.Join(".", ".env"))
}

// LoadFile reads envPath when it exists; real environment variables take
// precedence over values from the file.
func LoadFile(envPath string) (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := godotenv.Read(envPath)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", envPath, err)
		}
		values = fileValues
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}
	get := func(key string) string {
		return firstNonEmpty(os.Getenv(key), values[key])
	}

	cfg := Config{
		Port:              8080,
		Env:               firstNonEmpty(get("APP_ENV"), "development"),
		LogLevel:          get("LOG_LEVEL"),
		Mode:              ModeOffline,
		DataDir:           firstNonEmpty(get("DATA_DIR"), "data"),
		DatabaseURL:       get("DATABASE_URL"),
		LowStockThreshold: 3,
		MaxImageBytes:     5 << 20,
		Storage: StorageConfig{
			Bucket:          get("STORAGE_BUCKET"),
			Endpoint:        get("STORAGE_ENDPOINT"),
			Region:          firstNonEmpty(get("STORAGE_REGION"), "us-east-1"),
			AccessKeyID:     get("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: get("STORAGE_SECRET_ACCESS_KEY"),
			PublicURL:       strings.TrimRight(get("STORAGE_PUBLIC_URL"), "/"),
		},
	}

	if portRaw := get("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	if modeRaw := get("ISVARA_MODE"); modeRaw != "" {
		mode, err := ParseMode(modeRaw)
		if err != nil {
			return Config{}, err
		}
		cfg.Mode = mode
	}
	if cfg.Mode == ModeOnline && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when ISVARA_MODE=ONLINE (environment variable or .env)")
	}

	if raw := get("LOW_STOCK_THRESHOLD"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold < 1 {
			return Config{}, fmt.Errorf("invalid LOW_STOCK_THRESHOLD: %q", raw)
		}
		cfg.LowStockThreshold = threshold
	}

	if raw := get("MAX_IMAGE_BYTES"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_IMAGE_BYTES: %q", raw)
		}
		cfg.MaxImageBytes = size
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
