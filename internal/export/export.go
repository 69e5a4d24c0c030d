package export

import (
	"bytes"
	"fmt"
	"strings"

	"adpnorm/internal/domain"
)

// ParseFormat reads a format name, ignoring case. An empty name means CSV.
func ParseFormat(s string) (domain.ExportFormat, error) {
	format := domain.ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if format == "" {
		return domain.ExportFormatCSV, nil
	}
	if _, ok := domain.ExportContentTypes[format]; !ok {
		return "", fmt.Errorf("export.ParseFormat: %q: %w", s, domain.ErrUnsupportedExport)
	}
	return format, nil
}

// Fields renders fields in format.
func Fields(format domain.ExportFormat, fields []domain.Field, pages Pages) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case domain.ExportFormatCSV:
		w := NewCSVWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			return nil, fmt.Errorf("export.Fields: %w", err)
		}
		if err := w.WriteFields(fields, pages); err != nil {
			return nil, fmt.Errorf("export.Fields: %w", err)
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("export.Fields: %w", err)
		}
	case domain.ExportFormatXLSX:
		if err := WriteXLSX(&buf, fields, pages); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("export.Fields: %q: %w", format, domain.ErrUnsupportedExport)
	}
	return buf.Bytes(), nil
}
