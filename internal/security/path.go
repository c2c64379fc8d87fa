package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects paths that are empty, contain NUL bytes, or keep
// directory traversal components after cleaning. Absolute paths are allowed;
// config files routinely point at /var locations.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("file path contains NUL byte")
	}

	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("path contains directory traversal: %s", path)
		}
	}

	return nil
}

// ValidateFileName rejects names that would escape the directory they are
// joined onto. Media files are named after provider-issued IDs, which are
// untrusted input.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return fmt.Errorf("file name contains NUL byte")
	}
	if name != filepath.Base(name) || name == ".." || name == "." {
		return fmt.Errorf("file name contains path components: %s", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("file name contains path separators: %s", name)
	}
	return nil
}
