package ocr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"standings-ocr/pkg/standings"
)

// Source turns a screenshot into raw text detections.
type Source interface {
	Name() string
	Detect(path string) ([]standings.Detection, error)
}

// DetectionFile reads detections that were produced elsewhere and stored as a
// JSON array next to, or instead of, the screenshot. It lets the pipeline run
// on exports from other OCR engines.
type DetectionFile struct{}

func (DetectionFile) Name() string { return "detections-json" }

// Detect reads path itself when it ends in .json, otherwise path + ".json".
func (DetectionFile) Detect(path string) ([]standings.Detection, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		path += ".json"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detections: %w", err)
	}
	var dets []standings.Detection
	if err := json.Unmarshal(b, &dets); err != nil {
		return nil, fmt.Errorf("decode detections %s: %w", path, err)
	}
	return dets, nil
}

// ForPath picks DetectionFile for .json inputs and def otherwise.
func ForPath(path string, def Source) Source {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DetectionFile{}
	}
	return def
}
