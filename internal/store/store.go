// Package store persists the latest snapshot and the append-only history.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

// WriteSnapshot replaces the snapshot at path with rows as an indented JSON
// array. Readers see either the previous file or the new one, never a mix.
func WriteSnapshot(path string, rows []report.Row) error {
	if rows == nil {
		rows = []report.Row{}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	slog.Debug("Snapshot written", "path", path, "rows", len(rows))
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// AppendHistory adds the report's rows to the CSV history at path.
//
// A missing or empty file is created with the header and seeded with the
// report. An existing file is appended to only when no row already carries
// the report's run time, so replaying a run is a no-op. Existing rows are
// never rewritten, and new rows follow the existing file's columns. It
// reports whether any rows were written.
func AppendHistory(path string, rep *report.Report) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0):
		return seedHistory(path, rep)
	case err != nil:
		return false, fmt.Errorf("failed to stat history %s: %w", path, err)
	}

	if len(rep.Rows) == 0 {
		return false, nil
	}

	header, seen, err := scanHistory(path, rep.RunTime)
	if err != nil {
		return false, err
	}
	if seen {
		slog.Info("Run already present in history, not appending",
			"path", path,
			"runTime", rep.RunTime)
		return false, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	defer f.Close()

	if err := writeRows(f, header, rep.Rows); err != nil {
		return false, fmt.Errorf("failed to append history %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return false, fmt.Errorf("failed to sync history %s: %w", path, err)
	}

	slog.Debug("History appended", "path", path, "rows", len(rep.Rows))
	return true, nil
}

func seedHistory(path string, rep *report.Report) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to create history %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(report.Header); err != nil {
		return false, fmt.Errorf("failed to write history header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("failed to write history header: %w", err)
	}

	if err := writeRows(f, report.Header, rep.Rows); err != nil {
		return false, fmt.Errorf("failed to seed history %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return false, fmt.Errorf("failed to sync history %s: %w", path, err)
	}

	slog.Info("History created", "path", path, "rows", len(rep.Rows))
	return len(rep.Rows) > 0, nil
}

// writeRows writes rows laid out by header. Columns the header lacks are
// dropped and columns unknown to Row are left empty, so every record has
// exactly len(header) fields.
func writeRows(w io.Writer, header []string, rows []report.Row) error {
	cw := csv.NewWriter(w)
	record := make([]string, len(header))
	for _, row := range rows {
		values := row.Record()
		for i, name := range header {
			record[i] = ""
			if col := columnIndex(report.Header, name); col >= 0 {
				record[i] = values[col]
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// scanHistory returns the file's header and whether any row carries runTime
func scanHistory(path, runTime string) ([]string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open history %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// tolerate files already ragged by older writers
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history header %s: %w", path, err)
	}

	col := columnIndex(header, "run_time")
	if col < 0 {
		return nil, false, fmt.Errorf("history %s has no run_time column", path)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return header, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read history %s: %w", path, err)
		}
		if col < len(record) && record[col] == runTime {
			return header, true, nil
		}
	}
}
