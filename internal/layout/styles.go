package layout

import "log"

// StyleTable maps each distinct normalized font size to a style id, assigned
// from 0 in first-seen order. A table belongs to one serialization.
type StyleTable struct {
	sizes []int
	ids   map[int]int
}

func NewStyleTable() *StyleTable {
	return &StyleTable{ids: make(map[int]int)}
}

// normalizeSize undoes the service's habit of reporting some sizes times 100.
func normalizeSize(size int) int {
	if size%100 == 0 {
		return size / 100
	}
	return size
}

// StyleSources lists the nodes whose words define the page's styles: every
// block, then every line of every table cell.
func StyleSources(blocks, tables []*Node) []*Node {
	out := make([]*Node, 0, len(blocks))
	out = append(out, blocks...)
	for _, t := range tables {
		for _, row := range t.Children {
			for _, cell := range row.Children {
				out = append(out, cell.Children...)
			}
		}
	}
	return out
}

// CollectStyles builds the style table from the font sizes found under nodes.
func CollectStyles(nodes []*Node) *StyleTable {
	st := NewStyleTable()
	st.collect(nodes)
	return st
}

func (s *StyleTable) collect(nodes []*Node) {
	for _, n := range nodes {
		switch n.Kind {
		case KindWord:
			s.add(normalizeSize(n.FontSize))
		case KindWordGroup:
			// a word group speaks for its words with its own size
			for range n.ChildrenOf(KindWord) {
				s.add(normalizeSize(n.FontSize))
			}
		default:
			s.collect(n.Children)
		}
	}
}

func (s *StyleTable) add(size int) {
	if _, ok := s.ids[size]; ok {
		return
	}
	s.ids[size] = len(s.sizes)
	s.sizes = append(s.sizes, size)
}

// Sizes returns the normalized sizes in id order.
func (s *StyleTable) Sizes() []int {
	return s.sizes
}

func (s *StyleTable) Len() int {
	return len(s.sizes)
}

// ID resolves a raw font size to a style id: exact size first, then the size
// divided by 100 when it is a multiple of 100, otherwise style 0.
func (s *StyleTable) ID(size int) int {
	if id, ok := s.ids[size]; ok {
		return id
	}
	if id, ok := s.ids[normalizeSize(size)]; ok {
		return id
	}
	log.Printf("layout.StyleTable.ID: no style for font size %d among %v", size, s.sizes)
	return 0
}

// Closest returns size when it is in the table, otherwise the table size with
// the smallest absolute distance to it. Ties go to the size seen later. An
// empty table returns size unchanged.
func (s *StyleTable) Closest(size int) int {
	if _, ok := s.ids[size]; ok {
		return size
	}
	if len(s.sizes) == 0 {
		return size
	}
	best := s.sizes[0]
	for _, candidate := range s.sizes[1:] {
		if !(abs(best-size) < abs(candidate-size)) {
			best = candidate
		}
	}
	return best
}

// LineSize averages the raw sizes of a node's direct words and snaps the
// result to the closest table size. A node without words has size 0.
func (s *StyleTable) LineSize(n *Node) int {
	words := n.ChildrenOf(KindWord)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += w.FontSize
	}
	return s.Closest(total / len(words))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
