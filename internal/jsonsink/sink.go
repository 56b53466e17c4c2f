// Package jsonsink maintains an append-only JSON array file shared between
// runs and processes.
package jsonsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"dietstat/internal/fileutil"
)

// ErrCorruptSink indicates the sink file exists but is not a JSON array.
var ErrCorruptSink = errors.New("sink file is not a JSON array")

const lockRetryDelay = 50 * time.Millisecond

// Sink appends records to a JSON array file. Each Append is a locked
// read-merge-write; the file is replaced atomically.
type Sink struct {
	path string
	lock *flock.Flock
}

// New returns a Sink for path. The lock file lives at path + ".lock".
func New(path string) *Sink {
	return &Sink{path: path, lock: flock.New(path + ".lock")}
}

// Append adds records after the existing entries and returns the new total.
// When the existing file cannot be read or parsed it is left untouched.
func (s *Sink) Append(ctx context.Context, records []Record) (int, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("create sink directory: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("lock sink %s: %w", s.path, err)
	}
	if !locked {
		return 0, fmt.Errorf("lock sink %s: not acquired", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()

	existing, err := s.read()
	if err != nil {
		return 0, err
	}

	merged := make([]any, 0, len(existing)+len(records))
	for _, raw := range existing {
		merged = append(merged, raw)
	}
	for _, rec := range records {
		merged = append(merged, rec)
	}

	data, err := json.MarshalIndent(merged, "", "    ")
	if err != nil {
		return 0, fmt.Errorf("encode sink: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write sink: %w", err)
	}
	return len(merged), nil
}

// Entries returns the raw entries currently stored in the sink.
func (s *Sink) Entries() ([]json.RawMessage, error) {
	return s.read()
}

func (s *Sink) read() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sink %s: %w", s.path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: %s: top-level value is null, not an array", ErrCorruptSink, s.path)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSink, s.path, err)
	}
	return entries, nil
}
