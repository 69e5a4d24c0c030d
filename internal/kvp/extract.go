package kvp

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"adpnorm/internal/adp"
)

// Extract converts a page's KVPTable into the pairs selected by mode. Table
// records are left to ExtractTables.
func Extract(records []adp.KVPRecord, rankings RankingIndex, mode SelectionMode) []*Pair {
	pairs := make([]*Pair, 0, len(records))
	for i := range records {
		r := &records[i]
		if isTable(r) {
			continue
		}
		p := normalPair(r)
		if !Select(mode, p, rankings) {
			log.Printf("kvp.Extract: %s drops %q (class %q, id %q)", mode, p.Key, p.KeyClass, p.KVPID)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func isTable(r *adp.KVPRecord) bool {
	return strings.EqualFold(strings.TrimSpace(r.ValueType.Value), "table")
}

func normalPair(r *adp.KVPRecord) *Pair {
	p := &Pair{
		Key:         r.Key.Value,
		Value:       r.Value.Value,
		KeyClass:    r.KeyClass.Value,
		KeyClassID:  r.KeyClassID.Value,
		KVPID:       r.KVPID.Value,
		Tier:        normalTier(r.KeyClassConfidence),
		ValueX:      intOrZero("ValueStartX", r.ValueStartX),
		ValueY:      intOrZero("ValueStartY", r.ValueStartY),
		ValueWidth:  intOrZero("ValueWidth", r.ValueWidth),
		ValueHeight: intOrZero("ValueHeight", r.ValueHeight),
		Sensitivity: flag("Sensitivity", r.Sensitivity),
	}
	if r.ValueConfidence.Present {
		if r.ValueConfidence.Valid {
			p.Confidence = (r.ValueConfidence.Value + 1) * 10
		} else {
			log.Printf("kvp.Extract: ValueConfidence is not an integer: %s", r.ValueConfidence.Raw)
		}
	}
	if r.Value.Present {
		p.KeyX = intOrZero("KeyStartX", r.KeyStartX)
		p.KeyY = intOrZero("KeyStartY", r.KeyStartY)
		p.KeyWidth = intOrZero("KeyWidth", r.KeyWidth)
		p.KeyHeight = intOrZero("KeyHeight", r.KeyHeight)
		p.OriginalKey = r.OriginalKey.Value
		p.OriginalValue = r.OriginalValue.Value
	}
	return p
}

// normalTier maps a KVP's KeyClassConfidence onto a tier. Whatever string
// results is read again as an integer and then as a float, so a numeric
// string is bucketed like a number.
func normalTier(c adp.Confidence) string {
	var tier string
	switch c.Kind {
	case adp.ConfidenceAbsent:
		return ""
	case adp.ConfidenceString:
		tier = c.Str
		if tier == "" {
			tier = TierLow
		}
	case adp.ConfidenceInteger:
		tier = tierFor(float64(c.Int))
	case adp.ConfidenceFloat:
		tier = tierFor(c.Float)
	default:
		log.Printf("kvp.Extract: KeyClassConfidence has unsupported value %s", c.Raw)
		return ""
	}

	s := strings.TrimSpace(tier)
	if n, err := strconv.Atoi(s); err == nil {
		tier = tierFor(float64(n))
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		tier = tierFor(f)
	}
	return tier
}

// ExtractTables converts the page's table records, with their line items
// and cells, into nested pairs.
func ExtractTables(records []adp.KVPRecord) []*Pair {
	var tables []*Pair
	for i := range records {
		r := &records[i]
		if !isTable(r) {
			continue
		}
		if r.ComplexKVPStructure == nil {
			log.Printf("kvp.ExtractTables: table %q has no ComplexKVPStructure, skipping", r.Key.Value)
			continue
		}

		table := &Pair{
			Key:         r.Key.Value,
			Value:       r.Value.Value,
			KeyClass:    r.KeyClass.Value,
			Tier:        tableTier(r.KeyClassConfidence),
			ValueX:      tableInt("ValueStartX", r.ValueStartX),
			ValueY:      tableInt("ValueStartY", r.ValueStartY),
			ValueWidth:  tableInt("ValueWidth", r.ValueWidth),
			ValueHeight: tableInt("ValueHeight", r.ValueHeight),
			Sensitivity: flag("Sensitivity", r.Sensitivity),
		}
		if r.Value.Present && r.Value.Value != TableZone {
			table.KeyX = tableInt("KeyStartX", r.KeyStartX)
			table.KeyY = tableInt("KeyStartY", r.KeyStartY)
			table.KeyWidth = tableInt("KeyWidth", r.KeyWidth)
			table.KeyHeight = tableInt("KeyHeight", r.KeyHeight)
			table.OriginalKey = r.OriginalKey.Value
			table.OriginalValue = r.OriginalValue.Value
		}

		for a, column := range r.ComplexKVPStructure.Attributes {
			for v := range column.ValueList {
				item, err := lineItem(&column.ValueList[v])
				if err != nil {
					log.Printf("kvp.ExtractTables: table %q attribute %d line item %d: %v", table.Key, a, v, err)
					continue
				}
				table.Nested = append(table.Nested, item)
			}
		}
		tables = append(tables, table)
	}
	return tables
}

var errNoCells = errors.New("line item has no ComplexKVPStructure")

func lineItem(src *adp.LineItem) (*Pair, error) {
	if src.ComplexKVPStructure == nil {
		return nil, errNoCells
	}
	item := &Pair{
		ValueX:        tableInt("ValueStartX", src.ValueStartX),
		ValueY:        tableInt("ValueStartY", src.ValueStartY),
		ValueWidth:    tableInt("ValueWidth", src.ValueWidth),
		ValueHeight:   tableInt("ValueHeight", src.ValueHeight),
		LineItemID:    tableInt("LineItemID", src.LineItemID),
		SeqLineItemID: tableInt("SeqLineItemID", src.SeqLineItemID),
		Sensitivity:   flag("Sensitivity", src.Sensitivity),
		HasLineItem:   src.LineItemID.Present && src.SeqLineItemID.Present,
	}
	for i := range src.ComplexKVPStructure.Attributes {
		attr := &src.ComplexKVPStructure.Attributes[i]
		if attr.Key.Value == "" || attr.Value.Value == "" {
			continue
		}
		item.Nested = append(item.Nested, cell(attr))
	}
	return item, nil
}

func cell(attr *adp.Attribute) *Pair {
	c := &Pair{
		Key:           attr.Key.Value,
		Value:         attr.Value.Value,
		KeyClass:      attr.KeyClass.Value,
		Tier:          attr.KeyClassConfidence.String(),
		ValueX:        tableInt("ValueStartX", attr.ValueStartX),
		ValueY:        tableInt("ValueStartY", attr.ValueStartY),
		ValueWidth:    tableInt("ValueWidth", attr.ValueWidth),
		ValueHeight:   tableInt("ValueHeight", attr.ValueHeight),
		KeyX:          tableInt("KeyStartX", attr.KeyStartX),
		KeyY:          tableInt("KeyStartY", attr.KeyStartY),
		KeyWidth:      tableInt("KeyWidth", attr.KeyWidth),
		KeyHeight:     tableInt("KeyHeight", attr.KeyHeight),
		OriginalKey:   attr.OriginalKey.Value,
		OriginalValue: attr.OriginalValue.Value,
		Sensitivity:   flag("Sensitivity", attr.Sensitivity),
	}
	if attr.ValueConfidence.Present {
		c.Confidence = (tableInt("ValueConfidence", attr.ValueConfidence) + 1) * 10
	}
	return c
}

// tableTier buckets a table record's KeyClassConfidence by its JSON type
// only; strings are not read again as numbers.
func tableTier(c adp.Confidence) string {
	switch c.Kind {
	case adp.ConfidenceString:
		if c.Str == "" {
			return TierLow
		}
		return c.Str
	case adp.ConfidenceInteger:
		return tierFor(float64(c.Int))
	case adp.ConfidenceFloat:
		return tierFor(c.Float)
	default:
		return ""
	}
}

func intOrZero(field string, v adp.Int) int {
	if v.Invalid() {
		log.Printf("kvp.Extract: %s is not an integer: %s", field, v.Raw)
	}
	return v.Or(0)
}

// tableInt reads table coordinates and ids: absent is 0, unreadable is -1.
func tableInt(field string, v adp.Int) int {
	if !v.Present {
		return 0
	}
	if !v.Valid {
		log.Printf("kvp.ExtractTables: %s is not an integer: %s", field, v.Raw)
		return -1
	}
	return v.Value
}

func flag(field string, b adp.Bool) bool {
	if b.Present && !b.Valid {
		log.Printf("kvp.Extract: %s is not a boolean, treating as false", field)
	}
	return b.Value
}
