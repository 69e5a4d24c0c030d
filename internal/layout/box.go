package layout

import "strconv"

// Box is an axis-aligned rectangle in device pixels.
type Box struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// FromXYWH builds a box from a start point and extent as the analysis service
// reports them.
func FromXYWH(x, y, w, h int) Box {
	return Box{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Left:   min(b.Left, o.Left),
		Top:    min(b.Top, o.Top),
		Right:  max(b.Right, o.Right),
		Bottom: max(b.Bottom, o.Bottom),
	}
}

func (b Box) Equal(o Box) bool {
	return b == o
}

func (b Box) Width() int {
	return b.Right - b.Left
}

func (b Box) Height() int {
	return b.Bottom - b.Top
}

// Position renders "left,top,right,bottom".
func (b Box) Position() string {
	buf := make([]byte, 0, 24)
	buf = strconv.AppendInt(buf, int64(b.Left), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(b.Top), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(b.Right), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(b.Bottom), 10)
	return string(buf)
}

// Extent returns the union of the boxes of nodes, and false when nodes is empty.
func Extent(nodes []*Node) (Box, bool) {
	if len(nodes) == 0 {
		return Box{}, false
	}
	ext := nodes[0].Box
	for _, n := range nodes[1:] {
		ext = ext.Union(n.Box)
	}
	return ext, true
}
