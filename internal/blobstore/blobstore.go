// Package blobstore provides a minimal container/blob storage abstraction
// with SQLite, filesystem and in-memory backends.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dietstat/internal/config"
)

var (
	// ErrContainerExists is returned by CreateContainer for an existing container.
	ErrContainerExists = errors.New("container already exists")
	// ErrContainerNotFound indicates an operation on a missing container.
	ErrContainerNotFound = errors.New("container not found")
	// ErrBlobNotFound indicates GetBlob found no blob with the given name.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrInvalidName indicates an unusable container or blob name.
	ErrInvalidName = errors.New("invalid name")
)

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a container/blob store.
type Store interface {
	// CreateContainer creates a container, returning ErrContainerExists when
	// it is already present.
	CreateContainer(ctx context.Context, name string) error
	// PutBlob writes data under name, replacing any existing blob.
	PutBlob(ctx context.Context, container, name string, data []byte) error
	// GetBlob returns the blob contents.
	GetBlob(ctx context.Context, container, name string) ([]byte, error)
	// ListBlobs returns the blobs of a container ordered by name.
	ListBlobs(ctx context.Context, container string) ([]BlobInfo, error)
	Close() error
}

// Open creates the store selected by cfg.
func Open(cfg config.Blob) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		store, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendFilesystem:
		store, err := OpenFilesystem(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q (supported: %s, %s, %s)",
			cfg.Backend, config.BackendSQLite, config.BackendFilesystem, config.BackendMemory)
	}
}

// ValidateContainerName rejects empty names and names with path separators.
func ValidateContainerName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: container %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateBlobName rejects empty names and names that escape their container.
func ValidateBlobName(name string) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, `\`) {
		return fmt.Errorf("%w: blob %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("%w: blob %q", ErrInvalidName, name)
		}
	}
	return nil
}

func validate(container, blob string) error {
	if err := ValidateContainerName(container); err != nil {
		return err
	}
	return ValidateBlobName(blob)
}
