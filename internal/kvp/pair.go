package kvp

import (
	"strings"

	"adpnorm/internal/layout"
)

// Confidence tiers assigned to a key class.
const (
	TierHigh   = "High"
	TierMedium = "Medium"
	TierLow    = "Low"
)

// TableZone is the Value the service reports for a table record that spans a
// whole zone rather than a single value.
const TableZone = "_TABLE_ZONE_"

// Pair is one extracted key-value pair. Boxes are kept as origin plus size,
// the way the service reports them. A table pair nests one Pair per line
// item, and each line item nests its cells.
type Pair struct {
	Key   string
	Value string

	KeyX, KeyY, KeyWidth, KeyHeight         int
	ValueX, ValueY, ValueWidth, ValueHeight int

	KeyClass      string
	KeyClassID    string
	Tier          string
	KVPID         string
	OriginalKey   string
	OriginalValue string
	Confidence    int
	Sensitivity   bool

	HasLineItem   bool
	LineItemID    int
	SeqLineItemID int

	Nested []*Pair
}

func (p *Pair) KeyBox() layout.Box {
	return layout.FromXYWH(p.KeyX, p.KeyY, p.KeyWidth, p.KeyHeight)
}

func (p *Pair) ValueBox() layout.Box {
	return layout.FromXYWH(p.ValueX, p.ValueY, p.ValueWidth, p.ValueHeight)
}

// HasTier reports whether the pair's tier is tier, ignoring case and
// surrounding space. A pair with no tier matches nothing.
func (p *Pair) HasTier(tier string) bool {
	return p.Tier != "" && strings.EqualFold(strings.TrimSpace(p.Tier), tier)
}

// tierFor buckets a numeric key-class confidence.
func tierFor(v float64) string {
	switch {
	case v >= 80:
		return TierHigh
	case v >= 60:
		return TierMedium
	default:
		return TierLow
	}
}
