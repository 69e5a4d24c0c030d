package layout

// lookupOrder is the order in which node kinds are tried by FindByBox.
var lookupOrder = []Kind{KindWordGroup, KindWordGroupLine, KindWordGroupBlock, KindWord}

// FindByBox returns the node whose box equals box. Word groups are preferred,
// then words, then any other node, each searched depth first across nodes.
// It returns nil when nothing matches.
func FindByBox(nodes []*Node, box Box) *Node {
	for _, kind := range lookupOrder {
		if n := findKind(nodes, box, func(k Kind) bool { return k == kind }); n != nil {
			return n
		}
	}
	return findKind(nodes, box, func(Kind) bool { return true })
}

func findKind(nodes []*Node, box Box, match func(Kind) bool) *Node {
	var found *Node
	for _, root := range nodes {
		root.Walk(func(n *Node) bool {
			if match(n.Kind) && n.Box.Equal(box) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}
