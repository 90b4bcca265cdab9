package upload

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps uploads in process memory. Suitable for development and
// tests; production deployments should prefer S3Store or another remote
// backend.
type MemoryStore struct {
	mu      sync.Mutex
	files   map[string]*memoryFile
	maxSize int64
}

type memoryFile struct {
	filename    string
	contentType string
	data        []byte
	savedAt     time.Time
}

// NewMemoryStore creates an in-memory store. maxSize of 0 means no limit.
func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		files:   make(map[string]*memoryFile),
		maxSize: maxSize,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	var buf bytes.Buffer
	if s.maxSize > 0 {
		n, err := io.Copy(&buf, io.LimitReader(r, s.maxSize+1))
		if err != nil {
			return "", err
		}
		if n > s.maxSize {
			return "", ErrTooLarge
		}
	} else if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.files[id] = &memoryFile{
		filename:    filename,
		contentType: contentType,
		data:        buf.Bytes(),
		savedAt:     time.Now(),
	}
	s.mu.Unlock()
	return id, nil
}

// Claim implements Store. Claiming consumes the temp file.
func (s *MemoryStore) Claim(tempID string) (*File, error) {
	s.mu.Lock()
	f, ok := s.files[tempID]
	if ok {
		delete(s.files, tempID)
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &File{
		ID:          tempID,
		Filename:    f.filename,
		ContentType: f.contentType,
		Size:        int64(len(f.data)),
		Reader:      io.NopCloser(bytes.NewReader(f.data)),
	}, nil
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	for id, f := range s.files {
		if f.savedAt.Before(cutoff) {
			delete(s.files, id)
		}
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of unclaimed files.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
