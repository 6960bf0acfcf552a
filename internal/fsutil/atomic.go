// Package fsutil holds file helpers shared by the on-disk adapters.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile describes how WriteAtomic lays a file down.
type AtomicFile struct {
	// Pattern names the temp file created next to the target, as in os.CreateTemp.
	Pattern  string
	FileMode os.FileMode
	DirMode  os.FileMode
}

// WriteAtomic writes data to a temp file in path's directory and renames it
// over path, so readers see either the old or the new content.
func WriteAtomic(path string, data []byte, opts AtomicFile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, opts.DirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, opts.Pattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Chmod(opts.FileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	cleanup = false

	return nil
}
