package main

import (
	"os"
	"path/filepath"
	"testing"

	"standings-ocr/pkg/ocr"
)

func TestIsSupportedExt(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"lobby.png", true},
		{"lobby.PNG", true},
		{"lobby.jpeg", true},
		{"lobby.webp", true},
		{"lobby.json", true},
		{"lobby.png.json", false},
		{"lobby.ocr.png", false},
		{"lobby.ocr.json", false},
		{"notes.txt", false},
		{"lobby", false},
	}
	for _, c := range cases {
		if got := isSupportedExt(c.name); got != c.want {
			t.Fatalf("isSupportedExt(%q) = %v want %v", c.name, got, c.want)
		}
	}
}

func TestSourceFor(t *testing.T) {
	dir := t.TempDir()
	withSidecar := filepath.Join(dir, "with.png")
	bare := filepath.Join(dir, "bare.png")
	dump := filepath.Join(dir, "dump.json")
	for _, p := range []string{withSidecar, withSidecar + ".json", bare, dump} {
		if err := os.WriteFile(p, []byte("[]"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	def := ocr.NewTesseract("eng")
	cases := []struct {
		path string
		want string
	}{
		{withSidecar, "detections-json"},
		{bare, "tesseract"},
		{dump, "detections-json"},
	}
	for _, c := range cases {
		if got := sourceFor(c.path, def).Name(); got != c.want {
			t.Fatalf("sourceFor(%s) = %s want %s", filepath.Base(c.path), got, c.want)
		}
	}
}
