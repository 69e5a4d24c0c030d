package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"adpnorm/internal/domain"
)

func sampleFields() ([]domain.Field, Pages) {
	pageID := uuid.New()
	table := domain.Field{ID: uuid.New(), PageID: pageID, Seq: 0, Name: "LineItems_ADP", Type: "LineItems", Text: "_TABLE_ZONE_", Status: 1, Tier: "High"}
	lineItem, seqItem := 1, 1
	row := domain.Field{
		ID: uuid.New(), PageID: pageID, ParentID: &table.ID, Seq: 1, Name: "Lineitem_ADP0", Type: "Lineitem",
		LineItemID: &lineItem, SeqLineItemID: &seqItem,
	}
	cell := domain.Field{
		ID: uuid.New(), PageID: pageID, ParentID: &row.ID, Seq: 2, Name: "Quantity_ADP", Type: "Quantity", Text: "5",
		Confidence: 90, KeyClass: "Quantity", Tier: "Medium", Sensitivity: true, Pos: "700,640,720,660", KeyPos: "700,610,740,630",
	}
	return []domain.Field{table, row, cell}, Pages{pageID: "TM000001"}
}

func TestFields_CSV(t *testing.T) {
	fields, pages := sampleFields()

	out, err := Fields(domain.ExportFormatCSV, fields, pages)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, columns, records[0])
	assert.Equal(t, []string{"TM000001", "0", "LineItems_ADP", "", "LineItems", "_TABLE_ZONE_", "1", "0", "", "High", "No", "", "", "", ""}, records[1])
	assert.Equal(t, "LineItems_ADP", records[2][3])
	assert.Equal(t, "1", records[2][11])
	assert.Equal(t, []string{"TM000001", "2", "Quantity_ADP", "Lineitem_ADP0", "Quantity", "5", "0", "90", "Quantity", "Medium", "Yes", "", "", "700,640,720,660", "700,610,740,630"}, records[3])
}

func TestFields_XLSX(t *testing.T) {
	fields, pages := sampleFields()

	out, err := Fields(domain.ExportFormatXLSX, fields, pages)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Page", got[0][0])
	assert.Equal(t, "Quantity_ADP", got[3][2])
	assert.Equal(t, "Lineitem_ADP0", got[3][3])
}

func TestFields_Unsupported(t *testing.T) {
	_, err := Fields("pdf", nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedExport)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want domain.ExportFormat
		err  bool
	}{
		{"", domain.ExportFormatCSV, false},
		{"CSV", domain.ExportFormatCSV, false},
		{" xlsx ", domain.ExportFormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, domain.ErrUnsupportedExport)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "job_42_invoice", SanitizeFilename("job #42 / invoice"))
	assert.Equal(t, "a", SanitizeFilename("__a__"))
	assert.Len(t, SanitizeFilename(string(bytes.Repeat([]byte("x"), 150))), 100)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "job-1_fields_2026-03-04.xlsx", BuildFilename("job-1", domain.ExportFormatXLSX, now))
}
