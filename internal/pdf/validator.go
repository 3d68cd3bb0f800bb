// Package pdf reads county sale-list PDFs and exposes their pages to the
// extraction engine.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath checks that a file path points to a readable PDF.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("cannot access file: %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("file is not a PDF (has extension %q)", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open file: %s: %w", path, err)
	}
	file.Close()

	return nil
}
