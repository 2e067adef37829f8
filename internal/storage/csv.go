package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"climate-pipeline/internal/models"
)

type StoreErrorKind int

const (
	KindIOFailure StoreErrorKind = iota
	KindUnexpected
)

func (k StoreErrorKind) String() string {
	if k == KindIOFailure {
		return "io-failure"
	}
	return "unexpected"
}

// StoreError is the only error type that crosses the recorder boundary.
type StoreError struct {
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CSVRecorder appends merged records to a delimited log file, one row per
// pipeline run. The log is append-only: it is never rewritten or compacted,
// and identical inputs produce a new row, not a replacement.
//
// Appends are not locked against other processes. Two hosts sharing the same
// log file can interleave rows; the pipeline serializes runs within one
// process and accepts the cross-process race.
type CSVRecorder struct {
	logger *zap.Logger
}

func NewCSVRecorder(logger *zap.Logger) *CSVRecorder {
	return &CSVRecorder{logger: logger}
}

// Append merges the two readings and writes one row to the configured log
// file, creating it with a header row first when absent or empty. Every
// failure is mapped to a *StoreError.
func (r *CSVRecorder) Append(aqi *models.AirQualityReading, weather *models.WeatherReading, cfg *models.Configuration) error {
	filename := cfg.Storage.CSVFilename

	rec := Merge(aqi, weather)
	columns, extensions := Reconcile(rec, canonicalColumns)
	if len(extensions) > 0 {
		r.logger.Warn("Merged record carries keys outside the canonical schema",
			zap.Strings("extensions", extensions))
	}

	needHeader, err := fileMissingOrEmpty(filename)
	if err != nil {
		return &StoreError{Kind: KindUnexpected, Err: err}
	}

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &StoreError{Kind: KindIOFailure, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if needHeader {
		if err := w.Write(columns); err != nil {
			return &StoreError{Kind: KindIOFailure, Err: err}
		}
		r.logger.Info("Created CSV log and wrote header", zap.String("filename", filename))
	}

	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = rec.Values[col]
	}
	if err := w.Write(row); err != nil {
		return &StoreError{Kind: KindIOFailure, Err: err}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &StoreError{Kind: KindIOFailure, Err: err}
	}

	r.logger.Info("Data appended to CSV log", zap.String("filename", filename))
	return nil
}

func fileMissingOrEmpty(filename string) (bool, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return info.Size() == 0, nil
}

// Tail returns up to n of the most recent data rows, newest last, keyed by
// the header. The read is an unsynchronized best-effort snapshot of the log.
func (r *CSVRecorder) Tail(cfg *models.Configuration, n int) ([]map[string]string, error) {
	f, err := os.Open(cfg.Storage.CSVFilename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreError{Kind: KindIOFailure, Err: err}
		}
		return nil, &StoreError{Kind: KindUnexpected, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Rows written after a schema extension can be wider than the header.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &StoreError{Kind: KindUnexpected, Err: err}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StoreError{Kind: KindUnexpected, Err: err}
		}
		rows = append(rows, record)
	}

	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}

	out := make([]map[string]string, 0, len(rows))
	for _, record := range rows {
		entry := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				entry[col] = record[i]
			}
		}
		out = append(out, entry)
	}

	return out, nil
}
