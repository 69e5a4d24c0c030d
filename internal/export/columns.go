// Package export writes a job's field records as CSV or XLSX.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"adpnorm/internal/domain"
)

// columns defines the header row shared by every format.
var columns = []string{
	"Page",
	"Seq",
	"Name",
	"Parent",
	"Type",
	"Text",
	"Status",
	"Confidence",
	"Key Class",
	"Tier",
	"Sensitive",
	"Line Item ID",
	"Seq Line Item ID",
	"Position",
	"Key Position",
}

// Pages maps a job page's row id to its document page id.
type Pages map[uuid.UUID]string

// rows converts fields, which must be in emission order, into string rows.
func rows(fields []domain.Field, pages Pages) [][]string {
	names := make(map[uuid.UUID]string, len(fields))
	for i := range fields {
		names[fields[i].ID] = fields[i].Name
	}

	out := make([][]string, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		parent := ""
		if f.ParentID != nil {
			parent = names[*f.ParentID]
		}
		out = append(out, []string{
			pages[f.PageID],
			strconv.Itoa(f.Seq),
			f.Name,
			parent,
			f.Type,
			f.Text,
			strconv.Itoa(f.Status),
			strconv.Itoa(f.Confidence),
			f.KeyClass,
			f.Tier,
			formatBool(f.Sensitivity),
			formatOptional(f.LineItemID),
			formatOptional(f.SeqLineItemID),
			f.Pos,
			f.KeyPos,
		})
	}
	return out
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatOptional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename keeps letters, digits, hyphens and underscores, collapses
// underscore runs and truncates to 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {name}_fields_{YYYY-MM-DD}.{format}.
func BuildFilename(name string, format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_fields_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}
