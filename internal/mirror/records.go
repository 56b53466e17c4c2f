package mirror

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"dietstat/internal/dataset"
	"dietstat/internal/jsonsink"
	"dietstat/internal/logging"
)

// UploadedAtField is the key added to every mirrored record.
const UploadedAtField = "_uploaded_at"

// TimestampLayout renders ISO-8601 with microseconds and a numeric UTC offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// ParseRecords decodes CSV bytes into ordered records keyed by the header.
// Missing trailing fields become null; fields beyond the header are dropped
// and the returned count is the number of dropped fields.
func ParseRecords(data []byte) ([]jsonsink.Record, int, error) {
	header, rows, err := dataset.ReadRows(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, 0, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
	}

	dropped := 0
	records := make([]jsonsink.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(jsonsink.Record, 0, len(header)+1)
		for i, key := range header {
			if i < len(row) {
				rec = append(rec, jsonsink.Field{Key: key, Value: row[i]})
			} else {
				rec = append(rec, jsonsink.Field{Key: key, Value: nil})
			}
		}
		if extra := len(row) - len(header); extra > 0 {
			dropped += extra
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

// Stamp sets UploadedAtField on every record using now.
func Stamp(records []jsonsink.Record, now func() time.Time) {
	for i := range records {
		records[i] = records[i].Set(UploadedAtField, now().Format(TimestampLayout))
	}
}

func logDropped(logger *slog.Logger, blob string, dropped int) {
	if dropped == 0 {
		return
	}
	logging.WarnWithContext(logger, "fields beyond the header were dropped", "mirror_extra_fields",
		logging.String("blob", blob),
		logging.Int("fields", dropped),
		logging.String(logging.FieldImpact, "extra fields were not mirrored"),
		logging.String(logging.FieldErrorHint, "check the CSV for unquoted delimiters"),
	)
}
