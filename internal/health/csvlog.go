package health

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var csvHeader = []string{"timestamp_iso", "status", "latency_ms", "http_status", "error"}

// CSVLog is the append-only health record log. It is a plain CSV file so
// out-of-process dashboards can tail it directly.
type CSVLog struct {
	path string
	now  func() time.Time
}

// NewCSVLog creates a log handle for the given file path.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path, now: time.Now}
}

// NewCSVLogWithClock creates a log handle with an injected clock, for
// deterministic window tests.
func NewCSVLogWithClock(path string, now func() time.Time) *CSVLog {
	return &CSVLog{path: path, now: now}
}

// Append writes one record to the log, creating the file and writing the
// header row on first use.
func (l *CSVLog) Append(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	_, statErr := os.Stat(l.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open health log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	latency := ""
	if rec.LatencyMS != nil {
		latency = strconv.FormatFloat(*rec.LatencyMS, 'f', -1, 64)
	}
	httpStatus := ""
	if rec.HTTPStatus != nil {
		httpStatus = strconv.Itoa(*rec.HTTPStatus)
	}

	row := []string{
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.Status,
		latency,
		httpStatus,
		rec.Error,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadWindow returns all records with a timestamp within the trailing
// window. Rows that fail to parse are skipped rather than aborting the
// whole read; a missing file yields an empty window.
func (l *CSVLog) ReadWindow(minutes int) ([]Record, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open health log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	cutoff := l.now().UTC().Add(-time.Duration(minutes) * time.Minute)
	var records []Record
	for line := 0; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows, keep the window readable
		}
		if line == 0 || len(row) < 5 {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}

		rec := Record{Timestamp: ts, Status: row[1], Error: row[4]}
		if row[2] != "" {
			if v, err := strconv.ParseFloat(row[2], 64); err == nil {
				rec.LatencyMS = &v
			}
		}
		if row[3] != "" {
			if v, err := strconv.Atoi(row[3]); err == nil {
				rec.HTTPStatus = &v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
