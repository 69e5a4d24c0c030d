package export

import (
	"encoding/csv"
	"io"

	"adpnorm/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first so Excel on Windows reads
// the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter wraps csv.Writer for exporting fields.
type CSVWriter struct {
	w   io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w, csv: csv.NewWriter(w)}
}

// WriteHeader writes the BOM and the header row.
func (w *CSVWriter) WriteHeader() error {
	if _, err := w.w.Write(BOM); err != nil {
		return err
	}
	return w.csv.Write(columns)
}

// WriteFields writes one row per field.
func (w *CSVWriter) WriteFields(fields []domain.Field, pages Pages) error {
	for _, row := range rows(fields, pages) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer and reports its error.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
