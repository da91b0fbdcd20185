package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidSource is returned for dataset names that are unsafe or unsupported.
var ErrInvalidSource = errors.New("invalid source")

// Supported source file extensions and their types
var sourceTypes = map[string]string{
	".geojson": "GeoJSON",
	".json":    "GeoJSON",
}

// SourceService manages dataset files under <data-dir>/sources.
type SourceService struct {
	sourcesDir string
}

// NewSourceService creates a new source service.
func NewSourceService(dataDir string) *SourceService {
	return &SourceService{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns all available dataset files.
func (s *SourceService) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(s.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	files := []SourceFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileType, ok := sourceTypes[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
		})
	}

	return files, nil
}

// Path validates a dataset name and returns its location on disk.
func (s *SourceService) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, name)
	}
	if _, ok := sourceTypes[strings.ToLower(filepath.Ext(name))]; !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidSource, filepath.Ext(name))
	}
	return filepath.Join(s.sourcesDir, name), nil
}

// Read returns the contents of a dataset file.
func (s *SourceService) Read(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", name, err)
	}
	return data, nil
}

// SourcesDir returns the path to the sources directory.
func (s *SourceService) SourcesDir() string {
	return s.sourcesDir
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
