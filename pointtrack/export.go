package pointtrack

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const exportTimeLayout = "20060102-150405"

// WriteRecords writes one "frame;objectId;x;y;userStatus" line per record, without header
func WriteRecords(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	for _, record := range records {
		err := writer.Write([]string{
			strconv.Itoa(record.Frame),
			strconv.Itoa(record.ObjectID),
			strconv.FormatFloat(record.Snapshot.Position.X, 'f', -1, 64),
			strconv.FormatFloat(record.Snapshot.Position.Y, 'f', -1, 64),
			strconv.FormatUint(uint64(record.Snapshot.UserStatus), 10),
		})
		if err != nil {
			return errors.Wrapf(err, "Can't write record of object %d at frame %d", record.ObjectID, record.Frame)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush records")
}

// ExportFileName returns collision free export file name for given moment and session
func ExportFileName(now time.Time, session uuid.UUID) string {
	return "trajectories_" + now.Format(exportTimeLayout) + "_" + session.String()[:8] + ".csv"
}

// Export writes every valid snapshot to w
func (t *LucasKanadeTracker) Export(w io.Writer) error {
	t.mu.Lock()
	records := t.store.Records()
	t.mu.Unlock()
	return WriteRecords(w, records)
}

// ExportToDir writes every valid snapshot into new file in dir and returns its path
func (t *LucasKanadeTracker) ExportToDir(dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, ExportFileName(now, t.Session()))
	if err := writeFile(path, t.Export); err != nil {
		return "", err
	}
	return path, nil
}

// writeFile creates path and fills it with write. A file write failed on is removed.
func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Can't create export file")
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return errors.Wrap(err, "Can't close export file")
	}
	return nil
}
