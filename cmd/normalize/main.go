// Command normalize converts an analysis result file into layout documents
// and a field listing without the server.
// Usage: go run ./cmd/normalize -in result.json -out out/ [-format yaml]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"adpnorm/internal/adp"
	"adpnorm/internal/domain"
	"adpnorm/internal/export"
	"adpnorm/internal/fields"
	"adpnorm/internal/kvp"
	"adpnorm/internal/service"
)

// options is the run configuration. A -config YAML file sets it first;
// flags given on the command line override the file.
type options struct {
	Selection   string `yaml:"selection_mode"`
	Retention   string `yaml:"retention_mode"`
	Suffix      string `yaml:"field_suffix"`
	DocClassVar string `yaml:"doc_class_var"`
	UseAllPages bool   `yaml:"use_all_pages"`
	Consolidate bool   `yaml:"consolidate"`
	Quality     bool   `yaml:"quality_adjust"`
}

// fieldOutput is one field as written to YAML or JSON.
type fieldOutput struct {
	Name      string            `yaml:"name" json:"name"`
	Type      string            `yaml:"type" json:"type"`
	Text      string            `yaml:"text,omitempty" json:"text,omitempty"`
	Status    int               `yaml:"status" json:"status"`
	Variables map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
	Children  []fieldOutput     `yaml:"children,omitempty" json:"children,omitempty"`
}

type pageOutput struct {
	PageID    string            `yaml:"page_id" json:"page_id"`
	JSONPage  int               `yaml:"json_page" json:"json_page"`
	Layout    string            `yaml:"layout,omitempty" json:"layout,omitempty"`
	Merged    bool              `yaml:"merged,omitempty" json:"merged,omitempty"`
	Error     string            `yaml:"error,omitempty" json:"error,omitempty"`
	Variables map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
	Fields    []fieldOutput     `yaml:"fields" json:"fields"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := options{Selection: "keepall", Retention: "keepall", Suffix: fields.DefaultSuffix, DocClassVar: "ADPDocType", UseAllPages: true}

	configPath := flag.String("config", "", "YAML file with default options")
	inPath := flag.String("in", "", "analysis result JSON file (required)")
	outDir := flag.String("out", "out", "directory for layout documents and the field listing")
	pageList := flag.String("pages", "", "comma separated page ids (default page_1..page_n)")
	format := flag.String("format", "yaml", "field listing format: yaml, json, csv or xlsx")
	describe := flag.Bool("describe", false, "print the extracted pairs of every page")
	flag.StringVar(&opts.Selection, "selection", opts.Selection, "KVP selection mode")
	flag.StringVar(&opts.Retention, "retention", opts.Retention, "field retention mode")
	flag.StringVar(&opts.Suffix, "suffix", opts.Suffix, "field name suffix")
	flag.BoolVar(&opts.UseAllPages, "use-all-pages", opts.UseAllPages, "apply analysis page k to document page k")
	flag.BoolVar(&opts.Consolidate, "consolidate", opts.Consolidate, "move every field to the first page")
	flag.BoolVar(&opts.Quality, "quality", opts.Quality, "lower validity by OCR quality")
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}
	if *configPath != "" {
		if err := loadOptions(*configPath, &opts); err != nil {
			return err
		}
	}

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	doc, err := adp.Parse(raw)
	if err != nil {
		return err
	}

	pageIDs := splitPages(*pageList, doc.PageCount())
	outcomes, err := service.NewNormalizer().NormalizeDocument(context.Background(), doc,
		service.Assignments(pageIDs, opts.UseAllPages),
		service.DocumentOptions{
			NormalizeOptions: service.NormalizeOptions{
				Selection:     kvp.ParseSelectionMode(opts.Selection),
				Suffix:        opts.Suffix,
				DocClassVar:   opts.DocClassVar,
				QualityAdjust: opts.Quality,
			},
			Retention:   fields.ParseRetentionMode(opts.Retention),
			Consolidate: opts.Consolidate,
		})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		path := filepath.Join(*outDir, o.Result.LayoutFile)
		if err := os.WriteFile(path, o.Result.Layout, 0o644); err != nil {
			return fmt.Errorf("write layout %s: %w", path, err)
		}
		if *describe {
			fmt.Printf("page %s (analysis page %d)\n", o.PageID, o.JSONPage)
			kvp.Describe(os.Stdout, o.Result.Normal)
			kvp.Describe(os.Stdout, o.Result.Tables)
		}
	}

	listing, name, err := render(*format, outcomes)
	if err != nil {
		return err
	}
	path := filepath.Join(*outDir, name)
	if err := os.WriteFile(path, listing, 0o644); err != nil {
		return fmt.Errorf("write field listing: %w", err)
	}

	log.Printf("Normalized %d page(s) from %s into %s", len(outcomes), *inPath, *outDir)
	return nil
}

func loadOptions(path string, opts *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	fromFile := *opts
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["selection"] {
		opts.Selection = fromFile.Selection
	}
	if !set["retention"] {
		opts.Retention = fromFile.Retention
	}
	if !set["suffix"] {
		opts.Suffix = fromFile.Suffix
	}
	if !set["use-all-pages"] {
		opts.UseAllPages = fromFile.UseAllPages
	}
	if !set["consolidate"] {
		opts.Consolidate = fromFile.Consolidate
	}
	if !set["quality"] {
		opts.Quality = fromFile.Quality
	}
	if fromFile.DocClassVar != "" {
		opts.DocClassVar = fromFile.DocClassVar
	}
	return nil
}

func splitPages(list string, analysisPages int) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	for i := range max(analysisPages, 1) {
		ids = append(ids, fmt.Sprintf("page_%d", i+1))
	}
	return ids
}

func render(format string, outcomes []service.PageOutcome) ([]byte, string, error) {
	switch format {
	case "yaml", "json":
		pages := make([]pageOutput, len(outcomes))
		for i, o := range outcomes {
			pages[i] = toPageOutput(o)
		}
		if format == "json" {
			b, err := json.MarshalIndent(pages, "", "  ")
			return b, "fields.json", err
		}
		b, err := yaml.Marshal(pages)
		return b, "fields.yaml", err
	}

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	jobID := uuid.New()
	var rows []domain.Field
	names := export.Pages{}
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		pageID := uuid.New()
		names[pageID] = o.PageID
		pageRows, err := fields.Flatten(o.Result.Fields, jobID, pageID)
		if err != nil {
			return nil, "", err
		}
		rows = append(rows, pageRows...)
	}
	b, err := export.Fields(exportFormat, rows, names)
	return b, "fields." + string(exportFormat), err
}

func toPageOutput(o service.PageOutcome) pageOutput {
	out := pageOutput{PageID: o.PageID, JSONPage: o.JSONPage, Merged: o.Merged, Fields: []fieldOutput{}}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	if o.Result != nil {
		out.Layout = o.Result.LayoutFile
		out.Variables = o.Result.Fields.Vars.Map()
		out.Fields = toFieldOutputs(o.Result.Fields.Children)
	}
	return out
}

func toFieldOutputs(in []*fields.Field) []fieldOutput {
	out := make([]fieldOutput, 0, len(in))
	for _, f := range in {
		out = append(out, fieldOutput{
			Name:      f.Name,
			Type:      f.Type,
			Text:      f.Text,
			Status:    f.Status,
			Variables: f.Vars.Map(),
			Children:  toFieldOutputs(f.Children),
		})
	}
	return out
}
