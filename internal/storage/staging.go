package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Staging keeps uploaded videos on disk just long enough to analyze them.
// Files are discarded once analysis completes; nothing here is durable.
type Staging interface {
	Stage(file io.Reader, originalName string) (string, error)
	Discard(path string) error
}

type LocalStaging struct {
	basePath string
}

func NewLocalStaging(basePath string) (*LocalStaging, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &LocalStaging{basePath: basePath}, nil
}

// Stage writes the upload to a uniquely named file and returns its path.
func (ls *LocalStaging) Stage(file io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".mp4"
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullPath := filepath.Join(ls.basePath, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fullPath, nil
}

// Discard removes a staged file. Paths outside the staging directory are
// rejected.
func (ls *LocalStaging) Discard(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid path")
	}
	if !strings.HasPrefix(cleanPath, filepath.Clean(ls.basePath)+string(filepath.Separator)) {
		return fmt.Errorf("path outside staging directory")
	}

	if err := os.Remove(cleanPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
