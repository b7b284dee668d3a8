package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

type Storage struct{}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	err := os.WriteFile(filePath, content, 0644)
	if err != nil {
		return fmt.Errorf("error saving file: %s", err)
	}

	return nil
}

// EnsureDir creates dir (and parents) if it does not exist.
func (s *Storage) EnsureDir(dir string) error {
	if err := os.MkdirAll(filepath.Clean(dir), 0755); err != nil {
		return fmt.Errorf("error creating directory: %s", err)
	}
	return nil
}
