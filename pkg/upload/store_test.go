package upload

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestMemoryStoreSaveClaim(t *testing.T) {
	s := NewMemoryStore(0)

	id, err := s.Save("report.pdf", "application/pdf", 5, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("empty temp ID")
	}

	f, err := s.Claim(id)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	defer f.Close()

	if f.Filename != "report.pdf" || f.ContentType != "application/pdf" {
		t.Errorf("metadata = %q/%q", f.Filename, f.ContentType)
	}
	data, _ := io.ReadAll(f.Reader)
	if string(data) != "hello" {
		t.Errorf("contents = %q", data)
	}

	// Claim consumes.
	if _, err := s.Claim(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Claim err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreTooLarge(t *testing.T) {
	s := NewMemoryStore(4)
	if _, err := s.Save("big.bin", "application/octet-stream", 10, strings.NewReader("0123456789")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	s := NewMemoryStore(0)
	id, err := s.Save("x", "text/plain", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := s.Cleanup(time.Nanosecond); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := s.Claim(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after cleanup", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestDiskStoreSaveClaim(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	id, err := s.Save("notes.txt", "text/plain", 4, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := s.Claim(id)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	data, _ := io.ReadAll(f.Reader)
	if string(data) != "data" {
		t.Errorf("contents = %q", data)
	}
	if f.Size != 4 {
		t.Errorf("size = %d, want 4", f.Size)
	}
	f.Close()

	// Closing the claimed file removes it from disk.
	if _, err := s.Claim(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after claim+close", err)
	}
}

func TestDiskStoreTooLarge(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := s.Save("big", "text/plain", 5, strings.NewReader("01234")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("declared-size err = %v, want ErrTooLarge", err)
	}
	// A lying declared size is caught while streaming.
	if _, err := s.Save("big", "text/plain", 1, strings.NewReader("01234")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("streamed-size err = %v, want ErrTooLarge", err)
	}
}

func TestDiskStoreCleanup(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	id, err := s.Save("x", "text/plain", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := s.Cleanup(time.Nanosecond); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := s.Claim(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after cleanup", err)
	}
}
