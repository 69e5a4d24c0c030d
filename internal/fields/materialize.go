package fields

import (
	"log"
	"slices"
	"strconv"
	"strings"

	"adpnorm/internal/adp"
	"adpnorm/internal/domain"
	"adpnorm/internal/kvp"
	"adpnorm/internal/layout"
)

// Field variable names.
const (
	VarEntityType         = "entityType"
	VarPosition           = "Position"
	VarLeft               = "l"
	VarTop                = "t"
	VarRight              = "r"
	VarBottom             = "b"
	VarEntityName         = "entityName"
	VarKeyMatch           = "KeyMatch"
	VarKeyPosition        = "KeyPosition"
	VarConfidence         = "confidence"
	VarValidity           = "validityPercentage"
	VarLabel              = "label"
	VarSubMatch           = "subMatch1"
	VarKeyClassName       = "ADPKeyClassName"
	VarKeyClassConfidence = "ADPKeyClassConfidence"
	VarSensitivity        = "ADPSensitivity"
	VarLineItemID         = "ADPLineItemID"
	VarSeqLineItemID      = "ADPSeqLineItemID"

	// VarLayout is the page variable naming the page's layout document.
	VarLayout = "layout"
)

const (
	DefaultSuffix      = "_ADP"
	DefaultDocClassVar = "ADPDocType"

	lineItemName = "Lineitem"
	maxNameTries = 100
)

// emission passes, in order
var tiers = []string{"high", "medium", "low"}

// Options control naming.
type Options struct {
	// Suffix is appended to every generated field name.
	Suffix string
	// DocClassVar is the page variable holding the best document class.
	DocClassVar string
}

// Materializer writes a page's classes and selected pairs into its field
// tree.
type Materializer struct {
	opts    Options
	quality *QualityAdjuster
}

func NewMaterializer(opts Options) *Materializer {
	if opts.DocClassVar == "" {
		opts.DocClassVar = DefaultDocClassVar
	}
	return &Materializer{opts: opts}
}

// WithQuality returns a materializer that lowers each field's validity by the
// OCR quality of the layout node at the field's value box.
func (m *Materializer) WithQuality(q *QualityAdjuster) *Materializer {
	cp := *m
	cp.quality = q
	return &cp
}

// Apply sets the classification variables on page, emits the normal pairs
// grouped by tier and key class, then the tables with their line items and
// cells, and finally records the page's layout document name.
func (m *Materializer) Apply(page *Field, classes []adp.DocClass, normal, tables []*kvp.Pair) {
	m.setClasses(page, classes)

	sorted := slices.Clone(normal)
	kvp.Sort(sorted)
	m.emitNormal(page, sorted)

	for _, table := range tables {
		count := classCount(sorted, table.KeyClass)
		tableField := m.set(page, table, "", count, "")
		for row, item := range table.Nested {
			rowField := m.set(tableField, item, strconv.Itoa(row), 0, lineItemName)
			for _, cell := range item.Nested {
				m.set(rowField, cell, "", 0, "")
			}
		}
	}

	page.Vars.Set(VarLayout, layout.PageMeta{ID: page.Name}.FileName())
}

func (m *Materializer) setClasses(page *Field, classes []adp.DocClass) {
	if len(classes) == 0 {
		return
	}
	name := m.opts.DocClassVar
	page.Vars.Set(name, classes[0].Name)
	page.Vars.Set(name+"Confidence", classes[0].Confidence)
	for i, c := range classes {
		indexed := name + "_" + strconv.Itoa(i)
		page.Vars.Set(indexed, c.Name)
		page.Vars.Set(indexed+"Confidence", c.Confidence)
	}
}

// emitNormal walks the sorted pairs once per tier. Each unemitted pair of the
// pass's tier is emitted, followed by every later pair of the same key class,
// tier by tier. Unclassified pairs form one class of their own. Pairs without
// a tier are never emitted.
func (m *Materializer) emitNormal(page *Field, sorted []*kvp.Pair) {
	emitted := make([]bool, len(sorted))
	for _, tier := range tiers {
		for i, p := range sorted {
			if emitted[i] || !p.HasTier(tier) {
				continue
			}
			count := classCount(sorted, p.KeyClass)
			m.set(page, p, "", count, "")
			emitted[i] = true

			for _, inner := range tiers {
				for j := i + 1; j < len(sorted); j++ {
					o := sorted[j]
					if emitted[j] || !o.HasTier(inner) || !sameClassFold(p.KeyClass, o.KeyClass) {
						continue
					}
					m.set(page, o, "", count, "")
					emitted[j] = true
				}
			}
		}
	}

	for i, p := range sorted {
		if !emitted[i] {
			log.Printf("fields.Materializer.Apply: %q (class %q) has no tier, not emitted", p.Key, p.KeyClass)
		}
	}
}

// classCount counts the pairs whose trimmed key class equals keyClass's.
func classCount(pairs []*kvp.Pair, keyClass string) int {
	want := strings.TrimSpace(keyClass)
	n := 0
	for _, p := range pairs {
		if strings.TrimSpace(p.KeyClass) == want {
			n++
		}
	}
	return n
}

func sameClassFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// set creates or updates the field for p under parent and returns it.
func (m *Materializer) set(parent *Field, p *kvp.Pair, rowSuffix string, count int, override string) *Field {
	base := override
	if base == "" {
		base = p.KeyClass
	}
	if strings.TrimSpace(base) == "" {
		base = p.Key
	}
	name := m.uniqueName(parent, base, count) + rowSuffix

	keyBox, valueBox := p.KeyBox(), p.ValueBox()
	validity := p.Confidence
	if m.quality != nil {
		validity = m.quality.Adjust(validity, valueBox)
	}

	f := parent.FindOrAdd(name)
	f.Type = base
	f.Text = p.Value
	f.Status = 1
	if validity >= 90 {
		f.Status = 0
	}

	f.Vars.Set(VarEntityType, domain.FieldEntityType)
	f.Vars.Set(VarPosition, valueBox.Position())
	f.Vars.Set(VarLeft, strconv.Itoa(valueBox.Left))
	f.Vars.Set(VarTop, strconv.Itoa(valueBox.Top))
	f.Vars.Set(VarRight, strconv.Itoa(valueBox.Right))
	f.Vars.Set(VarBottom, strconv.Itoa(valueBox.Bottom))
	f.Vars.Set(VarEntityName, name)
	f.Vars.Set(VarKeyMatch, p.Key)
	f.Vars.Set(VarKeyPosition, keyBox.Position())
	f.Vars.Set(VarConfidence, strconv.Itoa(validity))
	f.Vars.Set(VarValidity, strconv.Itoa(validity))
	f.Vars.Set(VarLabel, name)
	f.Vars.Set(VarSubMatch, p.Value)
	f.Vars.Set(VarKeyClassName, p.KeyClass)
	f.Vars.Set(VarKeyClassConfidence, p.Tier)
	f.Vars.Set(VarSensitivity, boolText(p.Sensitivity))
	if p.HasLineItem {
		f.Vars.Set(VarLineItemID, strconv.Itoa(p.LineItemID))
		f.Vars.Set(VarSeqLineItemID, strconv.Itoa(p.SeqLineItemID))
	}
	return f
}

// uniqueName picks the name for a new field among parent's children.
//
// With more than one pair in the key class the name is base+suffix+"_n" for
// the first free n. With exactly one it is base+suffix, or base when that is
// taken. With none it is base+suffix when free and base otherwise.
func (m *Materializer) uniqueName(parent *Field, base string, count int) string {
	candidate := base + m.opts.Suffix
	if count <= 1 {
		if parent.ChildIndex(candidate) < 0 {
			return candidate
		}
		if count == 0 {
			log.Printf("fields.Materializer.Apply: %s is taken, using %s", candidate, base)
		}
		return base
	}
	for idx := 0; idx <= maxNameTries; idx++ {
		name := candidate + "_" + strconv.Itoa(idx)
		if parent.ChildIndex(name) < 0 {
			return name
		}
	}
	log.Printf("fields.Materializer.Apply: more than %d fields named %s, using %s", maxNameTries, candidate, base)
	return base
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
