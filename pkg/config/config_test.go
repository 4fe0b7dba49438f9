package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DB_DSN", "DB_AUTO_MIGRATE", "JWT_SECRET", "HTTP_ADDR", "UPLOAD_BASE", "ACCEPT_THRESHOLD", "OCR_LANG", "OCR_WORKERS"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if !c.AutoMigrate || c.HTTPAddr != DefaultHTTPAddr || c.UploadBase != DefaultUploadBase {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.AcceptThreshold != DefaultAcceptThreshold || c.OCRLang != "eng" || c.OCRWorkers != runtime.NumCPU() {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if string(c.JWTSecret) != devJWTSecret {
		t.Fatalf("expected dev secret fallback")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("ACCEPT_THRESHOLD", "0.6")
	t.Setenv("OCR_WORKERS", "3")
	t.Setenv("HTTP_ADDR", ":9000")
	c := FromEnv()
	if c.AutoMigrate || c.AcceptThreshold != 0.6 || c.OCRWorkers != 3 || c.HTTPAddr != ":9000" {
		t.Fatalf("overrides not applied: %+v", c)
	}
	t.Setenv("ACCEPT_THRESHOLD", "7")
	t.Setenv("OCR_WORKERS", "-2")
	c = FromEnv()
	if c.AcceptThreshold != DefaultAcceptThreshold || c.OCRWorkers != runtime.NumCPU() {
		t.Fatalf("invalid values should fall back: %+v", c)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "# local settings\nOCR_LANG=deu\nUPLOAD_BASE=/srv/shots\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UPLOAD_BASE", "/already/set")
	t.Setenv("OCR_LANG", "")
	os.Unsetenv("OCR_LANG")
	LoadDotEnv(path)
	if got := os.Getenv("OCR_LANG"); got != "deu" {
		t.Fatalf("OCR_LANG = %q", got)
	}
	if got := os.Getenv("UPLOAD_BASE"); got != "/already/set" {
		t.Fatalf("existing variable overridden: %q", got)
	}
}
