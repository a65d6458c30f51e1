package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxInputFileBytes bounds files passed to the render command.
const MaxInputFileBytes = 4 << 20

// ValidateInputFile checks that path names a readable regular file of
// reasonable size and returns its cleaned absolute form.
func ValidateInputFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > 4096 {
		return "", fmt.Errorf("path too long (max 4096 characters)")
	}

	for _, char := range path {
		if char == 0 {
			return "", fmt.Errorf("path contains null bytes")
		}
		if char < 32 && char != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}

	if len(path) >= 2 && path[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("checking file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", absPath)
	}
	if info.Size() > MaxInputFileBytes {
		return "", fmt.Errorf("file too large (%d bytes, max %d)", info.Size(), MaxInputFileBytes)
	}

	return absPath, nil
}
