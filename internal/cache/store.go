// Package cache persists the last-known-good remote document in a single slot.
//
// There is one file and no history: Write replaces whatever was there. The
// slot is never deleted by the shell.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/revden/webdeck/internal/content"
	"github.com/revden/webdeck/internal/fingerprint"
	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("cache")

// FileName is the name of the slot file inside the cache directory.
const FileName = "cache.html"

// ErrWrite is matched by every error returned from Store.Write.
var ErrWrite = errors.New("cache write failed")

// Store is a single-slot document cache backed by one file.
type Store struct {
	path string
}

// NewStore returns a store whose slot lives at dir/cache.html. Leftover temp
// files from an interrupted write are removed.
func NewStore(dir string) *Store {
	s := &Store{path: filepath.Join(dir, FileName)}
	s.cleanupTempFile()
	return s
}

// Path returns the slot file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the cached document. ok is false if the slot is missing or cannot
// be read; a missing slot is not an error.
func (s *Store) Read() (blob content.Blob, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("failed to read %s, treating as absent: %v", s.path, err)
		}
		return content.Blob{}, false
	}
	return content.FromBytes(data), true
}

// Fingerprint returns the fingerprint of the cached document, or
// fingerprint.None when the slot is absent.
func (s *Store) Fingerprint() string {
	blob, ok := s.Read()
	if !ok {
		return fingerprint.None
	}
	return fingerprint.FromString(blob.Text)
}

// Write replaces the slot with blob. The write goes to a temp file that is
// synced and renamed over the slot, so readers see either the old or the new
// document. Errors wrap ErrWrite.
func (s *Store) Write(blob content.Blob) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: create cache directory: %v", ErrWrite, err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, blob.Bytes(), 0600); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %v", ErrWrite, err)
	}

	if err := syncFile(tmpPath); err != nil {
		log.Warnf("fsync failed for %s: %v", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: finalize: %v", ErrWrite, err)
	}

	log.Infof("stored %d bytes in %s", blob.Len(), s.path)
	return nil
}

func (s *Store) cleanupTempFile() {
	tmpPath := s.path + ".tmp"
	if _, err := os.Stat(tmpPath); err == nil {
		if err := os.Remove(tmpPath); err != nil {
			log.Warnf("failed to clean up temp file %s: %v", tmpPath, err)
		}
	}
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
