// Package upload stores files received through the multipart endpoint
// fallback. Files are parked under a temp ID until the owning endpoint
// claims them; unclaimed files are dropped by periodic cleanup.
package upload

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a temp file does not exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrTooLarge is returned when a file exceeds the store's size limit.
var ErrTooLarge = errors.New("upload: file too large")

// Store is the interface for upload storage backends.
type Store interface {
	// Save stores the file and returns its temp ID.
	Save(filename, contentType string, size int64, r io.Reader) (tempID string, err error)

	// Claim retrieves and consumes a temp file.
	Claim(tempID string) (*File, error)

	// Cleanup removes temp files older than maxAge.
	Cleanup(maxAge time.Duration) error
}

// File is a stored upload.
type File struct {
	// ID is the temp identifier the endpoint body carried.
	ID string

	// Filename is the original client filename.
	Filename string

	// ContentType is the MIME type reported by the client.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// URL is a direct-access URL for remote backends, when available.
	URL string

	// Reader provides the file contents.
	Reader io.ReadCloser
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}
