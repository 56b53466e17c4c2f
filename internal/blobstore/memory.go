package blobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryBlob struct {
	data      []byte
	updatedAt time.Time
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string]memoryBlob
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{containers: make(map[string]map[string]memoryBlob)}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// CreateContainer implements Store.
func (s *MemoryStore) CreateContainer(ctx context.Context, name string) error {
	if err := ValidateContainerName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.containers[name]; ok {
		return fmt.Errorf("%w: %s", ErrContainerExists, name)
	}
	s.containers[name] = make(map[string]memoryBlob)
	return nil
}

// PutBlob implements Store.
func (s *MemoryStore) PutBlob(ctx context.Context, container, name string, data []byte) error {
	if err := validate(container, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	blobs, ok := s.containers[container]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}
	blobs[name] = memoryBlob{data: append([]byte(nil), data...), updatedAt: time.Now().UTC()}
	return nil
}

// GetBlob implements Store.
func (s *MemoryStore) GetBlob(ctx context.Context, container, name string) ([]byte, error) {
	if err := validate(container, name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.containers[container][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
	}
	return append([]byte(nil), blob.data...), nil
}

// ListBlobs implements Store.
func (s *MemoryStore) ListBlobs(ctx context.Context, container string) ([]BlobInfo, error) {
	if err := ValidateContainerName(container); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blobs, ok := s.containers[container]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}
	out := make([]BlobInfo, 0, len(blobs))
	for name, blob := range blobs {
		out = append(out, BlobInfo{Name: name, Size: int64(len(blob.data)), UpdatedAt: blob.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
