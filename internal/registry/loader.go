package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inferd/internal/common/fsutil"
	"inferd/pkg/types"
)

// modelExts lists the file extensions recognized as loadable model files.
// .task is the packaged on-device format; .gguf the llama.cpp format.
var modelExts = []string{".task", ".gguf"}

// LoadDir scans a directory for model files and builds a registry from filenames.
// ID is the full filename (including extension); Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isModelFile(name) {
			continue
		}
		// Use full filename as ID (e.g., "gemma-2b-it-q4.task")
		models = append(models, types.Model{
			ID:   name,
			Name: name,
			Path: filepath.Join(abs, name),
		})
	}
	return models, nil
}

func isModelFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range modelExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
