// Package fileutils provides the file operations shared by the importer
// and the CLI commands.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// OpenFile opens a file for reading, returning an error if the file doesn't exist
func OpenFile(filePath string) (*os.File, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// CreateFile creates or truncates a file for writing, creating parent
// directories as needed
func CreateFile(filePath string) (*os.File, error) {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return nil, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

// ListCSVFiles returns the CSV files in a directory, sorted by path so
// import runs are deterministic. Extension matching is case-insensitive
// and hidden files are skipped. With recursive set, subdirectories are
// walked as well.
func ListCSVFiles(dirPath string, recursive bool) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}

	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Strings(files)
	log.WithFields(logrus.Fields{"dir": dirPath, "count": len(files)}).Debug("Discovered CSV files")
	return files, nil
}

// Stem returns the file name without its directory or extension, the form
// used when a transaction's source is derived from its file name.
func Stem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
