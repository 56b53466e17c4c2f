package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"dietstat/internal/blobstore"
	"dietstat/internal/jsonsink"
	"dietstat/internal/logging"
)

// ErrSourceNotFound indicates the local CSV to mirror does not exist.
var ErrSourceNotFound = errors.New("source csv not found")

// Options describes one mirror run.
type Options struct {
	SourceCSV string
	Container string
	BlobName  string
	SinkPath  string
	// Preview is the number of sink entries returned in Result.Preview.
	Preview int
}

// Result reports what a run did.
type Result struct {
	Container        string               `json:"container"`
	ContainerCreated bool                 `json:"container_created"`
	BlobName         string               `json:"blob_name"`
	UploadedBytes    int64                `json:"uploaded_bytes"`
	Blobs            []blobstore.BlobInfo `json:"blobs"`
	Records          int                  `json:"records"`
	DroppedFields    int                  `json:"dropped_fields"`
	SinkPath         string               `json:"sink_path"`
	Total            int                  `json:"total"`
	Preview          []json.RawMessage    `json:"preview,omitempty"`
	StartedAt        time.Time            `json:"started_at"`
	CompletedAt      time.Time            `json:"completed_at"`
}

// Service runs mirror jobs against a blob store.
type Service struct {
	store  blobstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(store blobstore.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "mirror"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run uploads the source CSV, downloads it again and appends its rows to the
// sink. Any error aborts the run before the sink is written.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	if s.store == nil {
		return nil, errors.New("mirror service requires a blob store")
	}
	logger := logging.WithContext(ctx, s.logger)
	result := &Result{
		Container: opts.Container,
		BlobName:  opts.BlobName,
		SinkPath:  opts.SinkPath,
		StartedAt: s.now(),
	}

	created, err := s.ensureContainer(ctx, logger, opts.Container)
	if err != nil {
		return nil, err
	}
	result.ContainerCreated = created

	data, err := os.ReadFile(opts.SourceCSV)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.SourceCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("read source csv: %w", err)
	}

	logger.Info("uploading blob",
		logging.String("source", opts.SourceCSV),
		logging.String("blob", opts.BlobName),
		logging.String("size", humanize.Bytes(uint64(len(data)))),
	)
	if err := s.store.PutBlob(ctx, opts.Container, opts.BlobName, data); err != nil {
		return nil, fmt.Errorf("upload %s: %w", opts.BlobName, err)
	}
	result.UploadedBytes = int64(len(data))

	blobs, err := s.store.ListBlobs(ctx, opts.Container)
	if err != nil {
		return nil, fmt.Errorf("list container %s: %w", opts.Container, err)
	}
	result.Blobs = blobs
	for _, b := range blobs {
		logger.Info("blob in container",
			logging.String("container", opts.Container),
			logging.String("blob", b.Name),
			logging.String("size", humanize.Bytes(uint64(b.Size))),
		)
	}

	downloaded, err := s.store.GetBlob(ctx, opts.Container, opts.BlobName)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", opts.BlobName, err)
	}
	records, dropped, err := ParseRecords(downloaded)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.BlobName, err)
	}
	logDropped(logger, opts.BlobName, dropped)
	Stamp(records, s.now)
	result.Records = len(records)
	result.DroppedFields = dropped

	sink := jsonsink.New(opts.SinkPath)
	total, err := sink.Append(ctx, records)
	if err != nil {
		return nil, err
	}
	result.Total = total
	logger.Info("sink updated",
		logging.String("sink", opts.SinkPath),
		logging.Int("appended", len(records)),
		logging.Int("total", total),
	)

	if opts.Preview > 0 {
		entries, err := sink.Entries()
		if err != nil {
			return nil, err
		}
		if len(entries) > opts.Preview {
			entries = entries[:opts.Preview]
		}
		result.Preview = entries
	}
	result.CompletedAt = s.now()
	return result, nil
}

func (s *Service) ensureContainer(ctx context.Context, logger *slog.Logger, name string) (bool, error) {
	err := s.store.CreateContainer(ctx, name)
	switch {
	case err == nil:
		logger.Info("container created", logging.String("container", name))
		return true, nil
	case errors.Is(err, blobstore.ErrContainerExists):
		logger.Info("container already exists", logging.String("container", name))
		return false, nil
	default:
		return false, fmt.Errorf("create container %s: %w", name, err)
	}
}
