package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"dietstat/internal/blobstore"
	"dietstat/internal/cleaner"
	"dietstat/internal/dataset"
	"dietstat/internal/jsonsink"
	"dietstat/internal/mirror"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("i/o error")
)

// Wrap tags err with marker and a "stage: operation: message" detail.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns an operator-facing suggestion for err, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, dataset.ErrInputNotFound), errors.Is(err, mirror.ErrSourceNotFound):
		return "check paths.input_csv / mirror.source_csv or pass the path as a flag"
	case errors.Is(err, cleaner.ErrAllValuesMissingInColumn):
		return "the column has no parsable numbers; fix the dataset or drop the column from analysis.numeric_columns"
	case errors.As(err, new(*dataset.MissingColumnsError)):
		return "the CSV header lacks required columns; adjust the [analysis] section"
	case errors.Is(err, jsonsink.ErrCorruptSink):
		return "the JSON sink is not an array; move it aside to start a new one"
	case errors.Is(err, blobstore.ErrBlobNotFound), errors.Is(err, blobstore.ErrContainerNotFound):
		return "the blob store does not hold the expected object"
	case errors.Is(err, ErrConfiguration):
		return "run 'dietstat config validate' for details"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
