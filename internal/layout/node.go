package layout

import "strings"

// Kind is the closed set of layout node kinds.
type Kind int

const (
	KindNone Kind = iota
	KindBlock
	KindParagraph
	KindLine
	KindTable
	KindPicture
	KindCell
	KindRow
	KindPage
	KindWord
	KindWordGroup
	KindWordGroupLine
	KindWordGroupBlock
	KindWgTable
	KindWgRow
	KindWgColumn
	KindRowGroup
)

var kindNames = [...]string{
	KindNone:           "None",
	KindBlock:          "Block",
	KindParagraph:      "Paragraph",
	KindLine:           "Line",
	KindTable:          "Table",
	KindPicture:        "Picture",
	KindCell:           "Cell",
	KindRow:            "Row",
	KindPage:           "Page",
	KindWord:           "Word",
	KindWordGroup:      "WordGroup",
	KindWordGroupLine:  "WordGroupLine",
	KindWordGroupBlock: "WordGroupBlock",
	KindWgTable:        "WgTable",
	KindWgRow:          "WgRow",
	KindWgColumn:       "WgColumn",
	KindRowGroup:       "RowGroup",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// AuxLine is a text line recorded on a node alongside its box, OCR quality and
// the raw font size string reported for it.
type AuxLine struct {
	Text     string
	Box      Box
	Quality  int
	FontSize string
}

// Node is one element of a page's layout tree. A node exclusively owns its
// children. Confidence and FontSize are only set directly on words; every
// other kind derives them from its descendants.
type Node struct {
	Kind          Kind
	Box           Box
	Confidence    int
	FontSize      int
	Lines         []string
	OriginalLines []string
	Children      []*Node
	Aux           []AuxLine
}

func NewNode(kind Kind, box Box) *Node {
	return &Node{Kind: kind, Box: box}
}

// Append adds child as the last child. The node keeps its reported box.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// AddLine records a text line and its auxiliary data.
func (n *Node) AddLine(aux AuxLine) {
	n.Lines = append(n.Lines, aux.Text)
	n.Aux = append(n.Aux, aux)
}

// AllLines joins every text line, trimmed and followed by a single space.
func (n *Node) AllLines() string {
	var sb strings.Builder
	for _, l := range n.Lines {
		sb.WriteString(strings.TrimSpace(l))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Text returns the first text line, which for a word is its value.
func (n *Node) Text() string {
	if len(n.Lines) == 0 {
		return ""
	}
	return n.Lines[0]
}

// ChildrenOf returns the direct children of the given kind. Asking for cells
// looks through direct table and row children.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	if kind == KindCell {
		for _, t := range n.Children {
			if t.Kind != KindTable {
				continue
			}
			for _, r := range t.Children {
				if r.Kind != KindRow {
					continue
				}
				for _, c := range r.Children {
					if c.Kind == KindCell {
						out = append(out, c)
					}
				}
			}
		}
		return out
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
