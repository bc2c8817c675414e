package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

const reportTimeLayout = "2006-01-02T15:04:05Z"

// Writer persists one report file per billed hour under the records
// directory. Files are written to a temp path first and renamed into
// place, so a crash mid-write never leaves a truncated report behind.
type Writer struct {
	dir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dir: filepath.Join(dataDir, "records")}
}

func (w *Writer) Path(hour time.Time) string {
	return filepath.Join(w.dir, hour.UTC().Format(reportTimeLayout)+".xml")
}

func (w *Writer) Write(ctx context.Context, hour time.Time, records *domain.RecordSet) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("could not create records directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, ".report-*.xml")
	if err != nil {
		return fmt.Errorf("could not create temporary report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not flush report file: %w", err)
	}

	path := w.Path(hour)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not move report into place: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Int("records", records.Len()).
		Msg("wrote billing report")

	return nil
}
