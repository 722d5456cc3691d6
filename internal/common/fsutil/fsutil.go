package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// ResolveModel resolves a model path or bare filename to an absolute file
// location. An already-absolute path that exists wins; otherwise the bare
// filename is looked up inside storageDir (the application's private model
// storage). Returns an error wrapping os.ErrNotExist when neither matches.
func ResolveModel(nameOrPath, storageDir string) (string, error) {
	if strings.TrimSpace(nameOrPath) == "" {
		return "", fmt.Errorf("model name is empty: %w", os.ErrNotExist)
	}
	if filepath.IsAbs(nameOrPath) {
		if fi, err := os.Stat(nameOrPath); err == nil && !fi.IsDir() {
			return nameOrPath, nil
		}
	}
	if storageDir != "" {
		base, err := ExpandHome(storageDir)
		if err != nil {
			return "", err
		}
		candidate := filepath.Join(base, filepath.Base(nameOrPath))
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", fmt.Errorf("abs path: %w", err)
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("model not found: %s: %w", nameOrPath, os.ErrNotExist)
}
