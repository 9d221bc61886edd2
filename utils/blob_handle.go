package utils

import (
	"fmt"
	"os"
	"sync"

	"payment-collection/monitoring"
)

// BlobHandle is a transient local copy of a downloaded artifact. The backing
// file lives until Release is called. Release is safe to call more than once;
// only the first call takes effect.
type BlobHandle struct {
	name string
	path string

	once     sync.Once
	released bool
}

// NewBlobHandle writes data to a temp file and wraps it in a revocable handle.
func NewBlobHandle(name string, data []byte) (*BlobHandle, error) {
	f, err := os.CreateTemp("", "receipt-*.blob")
	if err != nil {
		return nil, fmt.Errorf("NewBlobHandle: os.CreateTemp: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("NewBlobHandle: f.Write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("NewBlobHandle: f.Close: %w", err)
	}

	monitoring.TrackBlobOpened()

	return &BlobHandle{
		name: name,
		path: f.Name(),
	}, nil
}

// Name is the user-facing filename for the artifact.
func (h *BlobHandle) Name() string {
	return h.name
}

// Path is the location of the backing temp file. Invalid after Release.
func (h *BlobHandle) Path() string {
	return h.path
}

// Released reports whether the handle has been revoked.
func (h *BlobHandle) Released() bool {
	return h.released
}

// Release removes the backing file. Subsequent calls are no-ops.
func (h *BlobHandle) Release() {
	h.once.Do(func() {
		h.released = true
		os.Remove(h.path)
		monitoring.TrackBlobReleased()
	})
}
