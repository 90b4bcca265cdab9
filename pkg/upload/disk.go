package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiskStore keeps uploads in a local directory, one data file plus a JSON
// sidecar with the original filename and MIME type per temp ID.
type DiskStore struct {
	dir     string
	maxSize int64
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewDiskStore creates a disk-backed store rooted at dir, creating it if
// needed. maxSize of 0 means no limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Save implements Store.
func (s *DiskStore) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	tempID := uuid.NewString()
	path := s.dataPath(tempID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	var limit io.Reader = r
	if s.maxSize > 0 {
		limit = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(f, limit)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(path)
		return "", ErrTooLarge
	}

	meta := diskMeta{
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		SavedAt:     time.Now(),
	}
	data, err := json.Marshal(meta)
	if err == nil {
		err = os.WriteFile(s.metaPath(tempID), data, 0o600)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload metadata: %w", err)
	}
	return tempID, nil
}

// Claim implements Store. The returned reader deletes both files on close.
func (s *DiskStore) Claim(tempID string) (*File, error) {
	raw, err := os.ReadFile(s.metaPath(tempID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read upload metadata: %w", err)
	}
	var meta diskMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode upload metadata: %w", err)
	}

	f, err := os.Open(s.dataPath(tempID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open temp file: %w", err)
	}

	return &File{
		ID:          tempID,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Reader: &removeOnClose{
			file:  f,
			paths: []string{s.dataPath(tempID), s.metaPath(tempID)},
		},
	}, nil
}

// Cleanup implements Store.
func (s *DiskStore) Cleanup(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read upload dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var meta diskMeta
		if err := json.Unmarshal(raw, &meta); err != nil || meta.SavedAt.After(cutoff) {
			continue
		}
		tempID := strings.TrimSuffix(e.Name(), ".json")
		os.Remove(s.dataPath(tempID))
		os.Remove(s.metaPath(tempID))
	}
	return nil
}

func (s *DiskStore) dataPath(tempID string) string {
	return filepath.Join(s.dir, tempID+".bin")
}

func (s *DiskStore) metaPath(tempID string) string {
	return filepath.Join(s.dir, tempID+".json")
}

type removeOnClose struct {
	file  *os.File
	paths []string
}

func (r *removeOnClose) Read(p []byte) (int, error) { return r.file.Read(p) }

func (r *removeOnClose) Close() error {
	err := r.file.Close()
	for _, p := range r.paths {
		os.Remove(p)
	}
	return err
}
