package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dietstat/internal/fileutil"
)

// FilesystemStore maps containers to directories under a root and blobs to
// files inside them. Blob names are path-escaped into single file names.
type FilesystemStore struct {
	root string
}

// OpenFilesystem uses root as the store directory, creating it if needed.
func OpenFilesystem(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, errors.New("filesystem blob store requires a path")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// Close is a no-op.
func (s *FilesystemStore) Close() error { return nil }

func encodeBlobName(name string) string {
	escaped := url.PathEscape(name)
	if strings.HasPrefix(escaped, ".") {
		escaped = "%2E" + escaped[1:]
	}
	return escaped
}

func (s *FilesystemStore) containerDir(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, name)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("container %s: %s is not a directory", name, dir)
	}
	return dir, nil
}

// CreateContainer implements Store.
func (s *FilesystemStore) CreateContainer(ctx context.Context, name string) error {
	if err := ValidateContainerName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Mkdir(filepath.Join(s.root, name), 0o755)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrContainerExists, name)
	}
	if err != nil {
		return fmt.Errorf("create container %s: %w", name, err)
	}
	return nil
}

// PutBlob implements Store.
func (s *FilesystemStore) PutBlob(ctx context.Context, container, name string, data []byte) error {
	if err := validate(container, name); err != nil {
		return err
	}
	dir, err := s.containerDir(ctx, container)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, encodeBlobName(name)), data, 0o644); err != nil {
		return fmt.Errorf("put blob %s/%s: %w", container, name, err)
	}
	return nil
}

// GetBlob implements Store.
func (s *FilesystemStore) GetBlob(ctx context.Context, container, name string) ([]byte, error) {
	if err := validate(container, name); err != nil {
		return nil, err
	}
	dir, err := s.containerDir(ctx, container)
	if errors.Is(err, ErrContainerNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, encodeBlobName(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s/%s: %w", container, name, err)
	}
	return data, nil
}

// ListBlobs implements Store.
func (s *FilesystemStore) ListBlobs(ctx context.Context, container string) ([]BlobInfo, error) {
	if err := ValidateContainerName(container); err != nil {
		return nil, err
	}
	dir, err := s.containerDir(ctx, container)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", container, err)
	}
	var out []BlobInfo
	for _, entry := range entries {
		// Dot files are in-flight temp files from atomic writes.
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name, err := url.PathUnescape(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat blob %s/%s: %w", container, name, err)
		}
		out = append(out, BlobInfo{Name: name, Size: info.Size(), UpdatedAt: info.ModTime().UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
