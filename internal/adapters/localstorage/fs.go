package localstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OutputDirName is the folder created next to the first input.
const OutputDirName = "output"

// Extensions accepted by the folder scan (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

// Markers that identify files written by a previous run.
var generatedMarkers = []string{"_sticker", "_processed"}

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct{}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// InitOutput creates the output directory.
func (s *LocalStorage) InitOutput(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// ReadSource reads an input image.
func (s *LocalStorage) ReadSource(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// SaveOutput writes an encoded image.
func (s *LocalStorage) SaveOutput(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// OutputPath joins dir with stem+suffix.
func (s *LocalStorage) OutputPath(dir, stem, suffix string) string {
	return filepath.Join(dir, stem+suffix)
}

// OutputDirFor returns the output directory for a batch whose first input is firstInput.
func OutputDirFor(firstInput string) string {
	return filepath.Join(filepath.Dir(firstInput), OutputDirName)
}

// IsImage reports whether path has one of the supported image extensions.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsGenerated reports whether a file name looks like a previous output.
func IsGenerated(name string) bool {
	for _, m := range generatedMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// ScanFolder lists image files directly inside dir, skipping outputs of
// earlier runs. Paths are sorted for a deterministic processing order.
func ScanFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !IsImage(name) || IsGenerated(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
