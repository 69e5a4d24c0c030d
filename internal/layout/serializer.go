package layout

import (
	"bytes"
	"io"
	"log"
	"strconv"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="utf-16"?>`
	eol       = "\r\n"
	indent    = "  "
)

// PageMeta describes the page element of a layout document.
type PageMeta struct {
	ID     string
	Width  int
	Height int
	DPIX   int
	DPIY   int
}

// FileName is the name a page's layout document is stored under.
func (p PageMeta) FileName() string {
	return p.ID + "_layout.xml"
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
)

// tableContext numbers the rows and cells of the table being written.
type tableContext struct {
	row  int
	cell int
}

// Serializer writes layout documents against one style table.
type Serializer struct {
	styles *StyleTable
}

func NewSerializer(styles *StyleTable) *Serializer {
	return &Serializer{styles: styles}
}

// Render sorts blocks and tables into reading order and returns the page's
// layout document as UTF-8 text.
func Render(page PageMeta, blocks, tables []*Node) []byte {
	styles := CollectStyles(StyleSources(blocks, tables))
	sorted := SortTopLeft(blocks, tables)

	if page.Width <= 0 || page.Height <= 0 {
		if ext, ok := Extent(sorted); ok {
			log.Printf("layout.Render: page %s has no dimensions, using content extent %s", page.ID, ext.Position())
			page.Width, page.Height = ext.Right, ext.Bottom
		}
	}

	var buf bytes.Buffer
	// writes to a bytes.Buffer cannot fail
	_ = NewSerializer(styles).Write(&buf, sorted, page)
	return buf.Bytes()
}

// Write emits the document for nodes, which must already be in reading order.
func (s *Serializer) Write(w io.Writer, nodes []*Node, page PageMeta) error {
	var buf bytes.Buffer

	width, height := strconv.Itoa(page.Width), strconv.Itoa(page.Height)
	buf.WriteString(xmlHeader + eol)
	buf.WriteString(`<Page xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" pos="0,0,`)
	buf.WriteString(width + "," + height)
	buf.WriteString(`" lang="English" id="`)
	buf.WriteString(page.ID)
	buf.WriteString(`" printArea="0,0,`)
	buf.WriteString(width + "," + height)
	buf.WriteString(`" xdpi="` + strconv.Itoa(page.DPIX))
	buf.WriteString(`" ydpi="` + strconv.Itoa(page.DPIY))
	buf.WriteString(`" >` + eol)

	s.writeNodes(&buf, nodes, "", &tableContext{})

	for id, size := range s.styles.Sizes() {
		buf.WriteString(indent + `<Style id="` + strconv.Itoa(id))
		buf.WriteString(`" v="color: 000000; font-name: arial; font-family: ft_sansserif; font-size: `)
		buf.WriteString(strconv.Itoa(size) + `pt; " />` + eol)
	}
	buf.WriteString("</Page>" + eol)

	_, err := w.Write(buf.Bytes())
	return err
}

// writeNodes writes siblings one level deeper than pad.
func (s *Serializer) writeNodes(buf *bytes.Buffer, nodes []*Node, pad string, tc *tableContext) {
	pad += indent
	for i, n := range nodes {
		switch n.Kind {
		case KindBlock, KindWordGroupBlock:
			s.writeContainer(buf, n, pad, "<Block pos=\""+n.Box.Position()+"\">", "</Block>", tc)
		case KindLine, KindWordGroup, KindWordGroupLine:
			s.writeContainer(buf, n, pad, s.styledOpen("L", n), "</L>", tc)
		case KindParagraph:
			s.writeContainer(buf, n, pad, s.styledOpen("Para", n), "</Para>", tc)
		case KindTable, KindWgTable:
			s.writeTable(buf, n, pad)
		case KindRow:
			tc.cell = 0
			s.writeContainer(buf, n, pad, "<Row pos=\""+n.Box.Position()+"\">", "</Row>", tc)
			tc.row++
		case KindCell:
			open := "<Cell col=\"" + strconv.Itoa(tc.cell) + "\" pos=\"" + n.Box.Position() +
				"\" row=\"" + strconv.Itoa(tc.row) + "\" columnSpan=\"1\">"
			s.writeContainer(buf, n, pad, open, "</Cell>", tc)
			tc.cell++
		case KindWord:
			s.writeWord(buf, n, pad, i+1 < len(nodes))
		}
	}
}

func (s *Serializer) styledOpen(tag string, n *Node) string {
	style := s.styles.ID(s.styles.LineSize(n))
	return "<" + tag + " pos=\"" + n.Box.Position() + "\" s=\"" + strconv.Itoa(style) + "\">"
}

func (s *Serializer) writeContainer(buf *bytes.Buffer, n *Node, pad, open, closing string, tc *tableContext) {
	buf.WriteString(pad + open + eol)
	s.writeNodes(buf, n.Children, pad+indent, tc)
	buf.WriteString(pad + closing + eol)
}

func (s *Serializer) writeTable(buf *bytes.Buffer, n *Node, pad string) {
	columns := 0
	if len(n.Children) > 0 {
		columns = len(n.Children[0].Children)
	}
	open := "<Table columns=\"" + strconv.Itoa(columns) + "\" pos=\"" + n.Box.Position() +
		"\" rows=\"" + strconv.Itoa(len(n.Children)) + "\">"
	s.writeContainer(buf, n, pad, open, "</Table>", &tableContext{})
}

// writeWord emits the word and one interpolated character box per character,
// followed by a space marker unless the word is the last sibling.
func (s *Serializer) writeWord(buf *bytes.Buffer, n *Node, pad string, more bool) {
	text := []rune(n.Text())
	style := strconv.Itoa(s.styles.ID(n.FontSize))

	buf.WriteString(pad + `<W pos="` + n.Box.Position() + `" v="` + attrEscaper.Replace(string(text)))
	buf.WriteString(`" s="` + style + `" cn="` + wordScore(n.Confidence, len(text)) + `">` + eol)

	charScore := strconv.Itoa(n.Confidence / 10)
	for k, r := range text {
		buf.WriteString(pad + indent + `<C pos="` + charBox(n.Box, len(text), k).Position())
		buf.WriteString(`" v="` + attrEscaper.Replace(string(r)) + `" s="` + style + `" cn="` + charScore + `" />` + eol)
	}
	buf.WriteString(pad + "</W>" + eol)

	if more {
		buf.WriteString(pad + "<S />" + eol)
	}
}

// charBox splits the word box evenly; the k-th character spans
// [left+k*avg, left+(k+1)*avg] with avg the integer share of the width.
func charBox(word Box, count, k int) Box {
	avg := word.Width() / count
	left := word.Left + k*avg
	return Box{Left: left, Top: word.Top, Right: left + avg, Bottom: word.Bottom}
}

// wordScore is one digit per character: the word confidence in tenths less
// one, kept within 0..9.
func wordScore(confidence, count int) string {
	score := confidence/10 - 1
	score = max(0, min(9, score))
	return strings.Repeat(strconv.Itoa(score), count)
}
