// Package workspace implements the file operations exposed to the shell's
// frontend: reading and saving project files, listing directories and
// classifying pasted paths.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("workspace")

// MaxFileSize bounds ReadProjectFile.
const MaxFileSize = 8 << 20

var (
	// ErrEmptyPath is returned when no path was supplied.
	ErrEmptyPath = errors.New("empty path")
	// ErrTooLarge is returned when a file exceeds MaxFileSize.
	ErrTooLarge = errors.New("file too large")
	// ErrNotDirectory is returned by ListDirectory for a regular file.
	ErrNotDirectory = errors.New("not a directory")
)

// DefaultIgnore lists directory entries hidden from listings.
var DefaultIgnore = []string{"node_modules", ".git", "vendor", "__pycache__", ".venv"}

// Entry is one item in a directory listing.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	IsDir   bool      `json:"isDir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// ReadProjectFile returns the contents of path as text.
func ReadProjectFile(path string) (string, error) {
	path = ExpandHome(strings.TrimSpace(path))
	if path == "" {
		return "", ErrEmptyPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// SaveProjectFile writes text to path, creating parent directories. The write
// goes through a temp file and rename so a crash never leaves a partial file.
func SaveProjectFile(path, text string) error {
	path = ExpandHome(strings.TrimSpace(path))
	if path == "" {
		return ErrEmptyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	log.Debugf("saved %s (%d bytes)", path, len(text))
	return nil
}

// ListDirectory returns the entries of dir, directories first, then by name.
// Hidden entries and DefaultIgnore names are skipped unless showHidden is set.
func ListDirectory(dir string, showHidden bool) ([]Entry, error) {
	dir = ExpandHome(strings.TrimSpace(dir))
	if dir == "" {
		return nil, ErrEmptyPath
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !showHidden && (strings.HasPrefix(name, ".") || ignored(name)) {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		e := Entry{
			Name:    name,
			Path:    filepath.Join(dir, name),
			IsDir:   de.IsDir(),
			ModTime: fi.ModTime(),
		}
		if !e.IsDir {
			e.Size = fi.Size()
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

func ignored(name string) bool {
	for _, p := range DefaultIgnore {
		if name == p {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
