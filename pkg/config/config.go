// Package config loads service settings from the environment, after pulling
// in a local .env file when one exists.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHTTPAddr        = ":8081"
	DefaultUploadBase      = "uploads"
	DefaultAcceptThreshold = 0.75
	DefaultOCRLang         = "eng"
	DefaultAdminPassword   = "admin123"
	devJWTSecret           = "dev-insecure-secret-change"
)

type Config struct {
	DBDSN       string
	AutoMigrate bool
	JWTSecret   []byte
	HTTPAddr    string
	UploadBase  string
	// AcceptThreshold is the overall score at or above which an extracted
	// standing is accepted without review.
	AcceptThreshold float64
	OCRLang         string
	OCRWorkers      int
	// AdminPassword is used only when the admin account is first seeded.
	AdminPassword string
}

// LoadDotEnv loads key=value pairs from path (default ".env") without
// overwriting variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Load reads .env and then the environment.
func Load() *Config {
	LoadDotEnv(os.Getenv("ENV_FILE"))
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = devJWTSecret // development fallback
	}
	return &Config{
		DBDSN:           os.Getenv("DB_DSN"),
		AutoMigrate:     boolEnv("DB_AUTO_MIGRATE", true),
		JWTSecret:       []byte(secret),
		HTTPAddr:        getEnvWithDefault("HTTP_ADDR", DefaultHTTPAddr),
		UploadBase:      getEnvWithDefault("UPLOAD_BASE", DefaultUploadBase),
		AcceptThreshold: floatEnv("ACCEPT_THRESHOLD", DefaultAcceptThreshold),
		OCRLang:         getEnvWithDefault("OCR_LANG", DefaultOCRLang),
		OCRWorkers:      intEnv("OCR_WORKERS", runtime.NumCPU()),
		AdminPassword:   getEnvWithDefault("ADMIN_PASSWORD", DefaultAdminPassword),
	}
}

func getEnvWithDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "false", "0", "no", "off":
		return false
	}
	return true
}

func intEnv(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
		return n
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil && f >= 0 && f <= 1 {
		return f
	}
	return def
}
