package layout

import "log"

// farCorner bounds the coordinates a node may have and still be picked.
const farCorner = 100000

// SortTopLeft merges blocks and tables and orders them greedily by closeness to
// the top-left corner. Each round scans the remaining nodes in input order and
// takes a node as the new best only when its top AND its left are both
// smaller than the current best's. This is not a lexicographic sort: a node
// with a smaller top but a larger left than an earlier candidate is skipped.
func SortTopLeft(blocks, tables []*Node) []*Node {
	pending := make([]*Node, 0, len(blocks)+len(tables))
	pending = append(pending, blocks...)
	pending = append(pending, tables...)

	sorted := make([]*Node, 0, len(pending))
	for {
		idx := closestToTopLeft(pending)
		if idx < 0 {
			break
		}
		sorted = append(sorted, pending[idx])
		pending = append(pending[:idx], pending[idx+1:]...)
	}

	if len(pending) > 0 {
		log.Printf("layout.SortTopLeft: %d nodes start beyond %d px, appending them in input order", len(pending), farCorner)
		sorted = append(sorted, pending...)
	}
	return sorted
}

func closestToTopLeft(nodes []*Node) int {
	bestLeft, bestTop := farCorner, farCorner
	idx := -1
	for i, n := range nodes {
		if n.Box.Top < bestTop && n.Box.Left < bestLeft {
			bestLeft = n.Box.Left
			bestTop = n.Box.Top
			idx = i
		}
	}
	return idx
}
