package service

import (
	"context"
	"fmt"
	"log"
	"slices"

	"adpnorm/internal/adp"
	"adpnorm/internal/domain"
	"adpnorm/internal/fields"
	"adpnorm/internal/kvp"
	"adpnorm/internal/layout"
)

// NormalizeOptions control how one page's pairs become fields.
type NormalizeOptions struct {
	Selection     kvp.SelectionMode
	Suffix        string
	DocClassVar   string
	QualityAdjust bool
}

// PageRequest names the document page to produce and the analysis page to
// read it from.
type PageRequest struct {
	PageID   string
	JSONPage int
	Options  NormalizeOptions
}

// PageResult is everything derived from one analysis page.
type PageResult struct {
	PageID     string
	LayoutFile string
	// Layout is the layout document encoded as UTF-16LE with a BOM.
	Layout []byte
	Fields *fields.Field
	Normal []*kvp.Pair
	Tables []*kvp.Pair
}

// Normalizer turns analysis pages into layout documents and field trees. It
// holds no state; every call builds its structures from scratch.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizePage builds the layout tree of the requested page, renders it,
// then extracts, selects and materializes the page's key-value pairs.
func (n *Normalizer) NormalizePage(doc *adp.Document, req PageRequest) (*PageResult, error) {
	blocks := layout.BuildBlocks(doc.Blocks(req.JSONPage))
	tables := layout.BuildTables(doc.Tables(req.JSONPage))

	dims := doc.PageDimensions()
	meta := layout.PageMeta{
		ID:     req.PageID,
		Width:  dims.Width,
		Height: dims.Height,
		DPIX:   dims.DPIX,
		DPIY:   dims.DPIY,
	}
	encoded, err := layout.EncodeUTF16(layout.Render(meta, blocks, tables))
	if err != nil {
		return nil, fmt.Errorf("normalizer.NormalizePage: %s: %w", req.PageID, err)
	}

	records := doc.KVPTable(req.JSONPage)
	normal := kvp.Extract(records, kvp.RankingsFrom(doc.Rankings()), req.Options.Selection)
	tablePairs := kvp.ExtractTables(records)

	m := fields.NewMaterializer(fields.Options{
		Suffix:      req.Options.Suffix,
		DocClassVar: req.Options.DocClassVar,
	})
	if req.Options.QualityAdjust {
		m = m.WithQuality(fields.NewQualityAdjuster(slices.Concat(blocks, tables)))
	}
	page := fields.NewPage(req.PageID)
	m.Apply(page, doc.DocumentClasses(), normal, tablePairs)

	log.Printf("normalizer.NormalizePage: page %s from analysis page %d: %d blocks, %d tables, %d pairs, %d table pairs, %d fields",
		req.PageID, req.JSONPage, len(blocks), len(tables), len(normal), len(tablePairs), len(page.Children))

	return &PageResult{
		PageID:     req.PageID,
		LayoutFile: meta.FileName(),
		Layout:     encoded,
		Fields:     page,
		Normal:     normal,
		Tables:     tablePairs,
	}, nil
}

// SourcePage marks a document page that carries the analysis result for the
// other pages and gets no fields of its own.
const SourcePage = -1

// AssignPages maps each of pageCount document pages to the analysis page
// applied to it. A single page reads analysis page 0. With useAllPages every
// page k reads page k; otherwise page 0 is the multi-page source and page k
// reads page k-1.
func AssignPages(pageCount int, useAllPages bool) []int {
	out := make([]int, pageCount)
	for k := range out {
		switch {
		case pageCount == 1:
			out[k] = 0
		case useAllPages:
			out[k] = k
		default:
			out[k] = k - 1
		}
	}
	return out
}

// PageAssignment names a document page and the analysis page applied to it.
type PageAssignment struct {
	PageID   string
	JSONPage int
}

// Assignments pairs pageIDs with AssignPages.
func Assignments(pageIDs []string, useAllPages bool) []PageAssignment {
	jsonPages := AssignPages(len(pageIDs), useAllPages)
	out := make([]PageAssignment, len(pageIDs))
	for i, id := range pageIDs {
		out[i] = PageAssignment{PageID: id, JSONPage: jsonPages[i]}
	}
	return out
}

// DocumentOptions control a whole-document run.
type DocumentOptions struct {
	NormalizeOptions
	Retention   fields.RetentionMode
	Consolidate bool
}

// PageOutcome is what became of one document page. Result is nil for the
// source page and for pages that failed.
type PageOutcome struct {
	PageAssignment
	Result *PageResult
	Err    error
	// Merged marks a page whose fields Consolidate moved to the first page.
	Merged bool
}

// NormalizeDocument normalizes every assigned page, prunes the fields the
// retention mode drops and, when asked, consolidates all pages onto the
// first normalized one. A page failure is recorded in its outcome; only
// cancellation, checked between pages, aborts the run.
func (n *Normalizer) NormalizeDocument(ctx context.Context, doc *adp.Document, pages []PageAssignment, opts DocumentOptions) ([]PageOutcome, error) {
	outcomes := make([]PageOutcome, len(pages))
	var normalized []int

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes[i].PageAssignment = page

		switch {
		case page.JSONPage == SourcePage:
			continue
		case page.JSONPage < 0 || page.JSONPage >= doc.PageCount():
			outcomes[i].Err = fmt.Errorf("analysis page %d of %d: %w", page.JSONPage, doc.PageCount(), domain.ErrPageIndexOutOfRange)
			continue
		}

		result, err := n.NormalizePage(doc, PageRequest{PageID: page.PageID, JSONPage: page.JSONPage, Options: opts.NormalizeOptions})
		if err != nil {
			outcomes[i].Err = err
			continue
		}
		if removed := fields.Prune(result.Fields, opts.Retention); removed > 0 {
			log.Printf("normalizer.NormalizeDocument: page %s: %s removed %d field(s)", page.PageID, opts.Retention, removed)
		}
		outcomes[i].Result = result
		normalized = append(normalized, i)
	}

	if opts.Consolidate && len(normalized) > 1 {
		trees := make([]*fields.Field, len(normalized))
		for k, i := range normalized {
			trees[k] = outcomes[i].Result.Fields
			outcomes[i].Merged = k > 0
		}
		fields.Consolidate(trees)
	}
	return outcomes, nil
}
