package adp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"adpnorm/internal/domain"
)

// Document is a parsed analysis result. Sections are decoded on access so a
// malformed section degrades only the accessor that reads it.
type Document struct {
	data  map[string]json.RawMessage
	pages []json.RawMessage
}

// DocClass is a document class name with the service's match score, kept as
// the string the service sent.
type DocClass struct {
	Name       string
	Confidence string
}

// Dimensions is the page geometry used for the layout root element.
type Dimensions struct {
	Width         int
	Height        int
	DPIX          int
	DPIY          int
	OCRConfidence string
}

type envelope struct {
	Result []struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

// Parse reads the {"result":[{"data":{...}}]} envelope. Only input that is not
// JSON at all is rejected; a missing or oddly shaped envelope yields a
// Document whose accessors return empty results.
func Parse(raw []byte) (*Document, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("adp.Parse: %w", domain.ErrMalformedDocument)
	}

	doc := &Document{}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("adp.Parse: unexpected envelope: %v", err)
		return doc, nil
	}
	if len(env.Result) == 0 || isNull(env.Result[0].Data) || len(env.Result[0].Data) == 0 {
		log.Printf("adp.Parse: result[0].data is missing")
		return doc, nil
	}
	if err := json.Unmarshal(env.Result[0].Data, &doc.data); err != nil {
		log.Printf("adp.Parse: result[0].data is not an object: %v", err)
		return doc, nil
	}

	if pl, ok := doc.data["pageList"]; ok && !isNull(pl) {
		if err := json.Unmarshal(pl, &doc.pages); err != nil {
			log.Printf("adp.Parse: pageList is not an array: %v", err)
			doc.pages = nil
		}
	}
	return doc, nil
}

// PageCount returns the number of pageList entries.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// OCRText returns DSOutput[0].Content, or "" when absent.
func (d *Document) OCRText() string {
	var out []dsOutput
	if !d.section("OCRText", d.data["DSOutput"], &out) {
		return ""
	}
	if len(out) == 0 {
		log.Printf("adp.OCRText: DSOutput is empty")
		return ""
	}
	return out[0].Content.Value
}

// DocumentClasses returns the primary class followed by the alternates. An
// absent ClassMatch on the primary class becomes "".
func (d *Document) DocumentClasses() []DocClass {
	var c Classification
	if !d.section("DocumentClasses", d.data["Classification"], &c) {
		return nil
	}
	if c.DocumentClass == nil {
		log.Printf("adp.DocumentClasses: Classification.DocumentClass is missing")
		return nil
	}

	classes := make([]DocClass, 0, 1+len(c.AlternateDocumentClass))
	classes = append(classes, DocClass{
		Name:       c.DocumentClass.Actual.Value,
		Confidence: c.DocumentClass.ClassMatch.Value,
	})
	for _, alt := range c.AlternateDocumentClass {
		classes = append(classes, DocClass{Name: alt.Name.Value, Confidence: alt.ClassMatch.Value})
	}
	return classes
}

// PageDimensions reads pageList[0].PageInfo. Values that fail to coerce stay 0.
func (d *Document) PageDimensions() Dimensions {
	fields := d.page("PageDimensions", 0)
	if fields == nil {
		return Dimensions{}
	}
	var info PageInfo
	if !d.section("PageDimensions", fields["PageInfo"], &info) {
		return Dimensions{}
	}
	return Dimensions{
		Width:         coerce("PageDimensions", "PageWidth", info.PageWidth),
		Height:        coerce("PageDimensions", "PageHeight", info.PageHeight),
		DPIX:          coerce("PageDimensions", "dpix", info.DPIX),
		DPIY:          coerce("PageDimensions", "dpiy", info.DPIY),
		OCRConfidence: info.PageOCRConfidence.Value,
	}
}

// Rankings returns KeyClassRankedList. Entries that do not decode are skipped.
func (d *Document) Rankings() []KeyClassRanking {
	return decodeList[KeyClassRanking]("Rankings", d.data["KeyClassRankedList"])
}

// Blocks returns pageList[page].BlockList.
func (d *Document) Blocks(page int) []Block {
	fields := d.page("Blocks", page)
	if fields == nil {
		return nil
	}
	return decodeList[Block]("Blocks", fields["BlockList"])
}

// Tables returns pageList[page].TableList.
func (d *Document) Tables(page int) []Table {
	fields := d.page("Tables", page)
	if fields == nil {
		return nil
	}
	return decodeList[Table]("Tables", fields["TableList"])
}

// KVPTable returns pageList[page].KVPTable.
func (d *Document) KVPTable(page int) []KVPRecord {
	fields := d.page("KVPTable", page)
	if fields == nil {
		return nil
	}
	return decodeList[KVPRecord]("KVPTable", fields["KVPTable"])
}

func (d *Document) page(accessor string, page int) map[string]json.RawMessage {
	if page < 0 || page >= len(d.pages) {
		log.Printf("adp.%s: page %d not in pageList (%d pages)", accessor, page, len(d.pages))
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(d.pages[page], &fields); err != nil {
		log.Printf("adp.%s: pageList[%d] is not an object: %v", accessor, page, err)
		return nil
	}
	return fields
}

func (d *Document) section(accessor string, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || isNull(raw) {
		log.Printf("adp.%s: section is missing", accessor)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("adp.%s: could not decode section: %v", accessor, err)
		return false
	}
	return true
}

// decodeList decodes an array element by element so one bad entry does not
// discard its siblings.
func decodeList[T any](accessor string, raw json.RawMessage) []T {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("adp.%s: expected an array: %v", accessor, err)
		return nil
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			log.Printf("adp.%s: skipping entry %d: %v", accessor, i, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func coerce(accessor, field string, v Int) int {
	if v.Invalid() {
		log.Printf("adp.%s: %s is not an integer: %s", accessor, field, v.Raw)
	}
	return v.Or(0)
}

// Compact returns the JSON with insignificant whitespace removed, used when a
// caller stores the source next to its outputs.
func Compact(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("adp.Compact: %w", domain.ErrMalformedDocument)
	}
	return buf.Bytes(), nil
}
