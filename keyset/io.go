package keyset

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCleartextFile writes the handle's keyset to path, unencrypted,
// using a temp file and atomic rename so readers never observe a partial
// keyset.
func WriteCleartextFile(h *Handle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create keyset dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, SerializeCleartext(h), 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// ReadCleartextFile reads an unencrypted keyset file written by
// WriteCleartextFile.
func ReadCleartextFile(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyset file: %w", err)
	}
	return ParseCleartext(data)
}
