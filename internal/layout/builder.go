package layout

import (
	"log"
	"strconv"
	"strings"

	"adpnorm/internal/adp"
)

// BuildBlocks turns a page's BlockList into Block -> Line -> Word trees.
func BuildBlocks(blocks []adp.Block) []*Node {
	out := make([]*Node, 0, len(blocks))
	for _, b := range blocks {
		block := NewNode(KindBlock, boxOf("block", b.StartX, b.StartY, b.Width, b.Height))

		var digits strings.Builder
		for _, l := range b.LineList {
			line, lineDigits, text := buildLine(l)
			digits.WriteString(lineDigits)
			block.Append(line)
			block.Lines = append(block.Lines, text)
			block.FontSize = line.FontSize
		}
		block.OriginalLines = block.Lines
		block.Confidence = Confidence(digits.String())
		out = append(out, block)
	}
	return out
}

// BuildTables turns a page's TableList into Table -> Row -> Cell -> Line ->
// Word trees. Rows and tables record one aux line per child; cells record one
// per text line.
func BuildTables(tables []adp.Table) []*Node {
	out := make([]*Node, 0, len(tables))
	for _, t := range tables {
		table := NewNode(KindTable, boxOf("table", t.StartX, t.StartY, t.Width, t.Height))

		var tableDigits strings.Builder
		for _, r := range t.RowList {
			row := NewNode(KindRow, boxOf("row", r.StartX, r.StartY, r.Width, r.Height))

			var rowDigits strings.Builder
			for _, c := range r.CellList {
				cell := buildCell(c, &rowDigits)
				row.Append(cell)
				row.AddLine(AuxLine{Text: cell.AllLines(), Box: cell.Box})
				row.FontSize = cell.FontSize
			}
			row.Confidence = Confidence(rowDigits.String())

			tableDigits.WriteString(rowDigits.String())
			table.Append(row)
			table.AddLine(AuxLine{Text: row.AllLines(), Box: row.Box})
			table.FontSize = row.FontSize
		}
		table.Confidence = Confidence(tableDigits.String())
		out = append(out, table)
	}
	return out
}

func buildCell(c adp.Cell, rowDigits *strings.Builder) *Node {
	cell := NewNode(KindCell, boxOf("cell", c.StartX, c.StartY, c.Width, c.Height))

	var digits strings.Builder
	for _, l := range c.LineList {
		line, lineDigits, _ := buildLine(l)
		digits.WriteString(lineDigits)

		lastRaw := ""
		if len(line.Aux) > 0 {
			lastRaw = line.Aux[len(line.Aux)-1].FontSize
		}
		cell.Append(line)
		cell.AddLine(AuxLine{
			Text:     line.AllLines(),
			Box:      line.Box,
			Quality:  Confidence(digits.String()),
			FontSize: lastRaw,
		})
		cell.FontSize = line.FontSize
	}
	cell.Confidence = Confidence(digits.String())
	rowDigits.WriteString(digits.String())
	return cell
}

// buildLine returns the line node, its concatenated word digits and its text
// (each word followed by a space).
func buildLine(l adp.Line) (*Node, string, string) {
	line := NewNode(KindLine, boxOf("line", l.StartX, l.StartY, l.Width, l.Height))

	var digits, text strings.Builder
	for _, w := range l.WordList {
		word := buildWord(w)
		raw := w.OCRConfidence.Value
		digits.WriteString(raw)
		text.WriteString(word.Text())
		text.WriteByte(' ')

		line.AddLine(AuxLine{
			Text:     word.Text(),
			Box:      word.Box,
			Quality:  word.Confidence,
			FontSize: w.FontSize.Value,
		})
		line.Append(word)
		line.FontSize = word.FontSize
	}
	line.Confidence = Confidence(digits.String())
	return line, digits.String(), text.String()
}

func buildWord(w adp.Word) *Node {
	word := NewNode(KindWord, boxOf("word", w.StartX, w.StartY, w.Width, w.Height))
	value := w.Value.Value
	word.Lines = []string{value}
	word.OriginalLines = []string{value}
	word.Confidence = Confidence(w.OCRConfidence.Value)
	word.FontSize = parseFontSize(w.FontSize.Value)
	return word
}

// parseFontSize reads the reported size as an integer; anything else is 0.
func parseFontSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func boxOf(what string, x, y, w, h adp.Int) Box {
	for _, v := range [...]adp.Int{x, y, w, h} {
		if v.Invalid() {
			log.Printf("layout.Build: %s coordinate is not an integer: %s", what, v.Raw)
		}
	}
	return FromXYWH(x.Or(0), y.Or(0), w.Or(0), h.Or(0))
}
