package fields

import "adpnorm/internal/layout"

// QualityAdjuster lowers a field's validity when the OCR quality of the text
// under its value box is poor.
type QualityAdjuster struct {
	nodes []*layout.Node
}

// NewQualityAdjuster searches nodes, a page's blocks and tables.
func NewQualityAdjuster(nodes []*layout.Node) *QualityAdjuster {
	return &QualityAdjuster{nodes: nodes}
}

// Quality returns the confidence of the layout node whose box is exactly box,
// or 0 when there is none.
func (q *QualityAdjuster) Quality(box layout.Box) int {
	if n := layout.FindByBox(q.nodes, box); n != nil {
		return n.Confidence
	}
	return 0
}

// Adjust lowers validity by ValidityDecrease of the quality at box.
func (q *QualityAdjuster) Adjust(validity int, box layout.Box) int {
	return validity - ValidityDecrease(q.Quality(box))
}

// ValidityDecrease maps an OCR quality to the validity penalty. Unknown
// quality (0) costs nothing.
func ValidityDecrease(quality int) int {
	switch {
	case quality >= 90 || quality == 0:
		return 0
	case quality >= 70:
		return 5
	case quality >= 50:
		return 7
	default:
		return 11
	}
}
