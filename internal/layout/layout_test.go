package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"adpnorm/internal/adp"
)

func blocksFromJSON(t *testing.T, raw string) []adp.Block {
	t.Helper()
	var blocks []adp.Block
	require.NoError(t, json.Unmarshal([]byte(raw), &blocks))
	return blocks
}

func tablesFromJSON(t *testing.T, raw string) []adp.Table {
	t.Helper()
	var tables []adp.Table
	require.NoError(t, json.Unmarshal([]byte(raw), &tables))
	return tables
}

func word(text string, box Box, conf, size int) *Node {
	n := NewNode(KindWord, box)
	n.Lines = []string{text}
	n.OriginalLines = []string{text}
	n.Confidence = conf
	n.FontSize = size
	return n
}

const abcBlock = `[{
	"BlockStartX": 10, "BlockStartY": 10, "BlockWidth": 30, "BlockHeight": 20,
	"LineList": [{
		"LineStartX": 10, "LineStartY": 10, "LineWidth": 30, "LineHeight": 20,
		"WordList": [{
			"WordStartX": 10, "WordStartY": 10, "WordWidth": 30, "WordHeight": 20,
			"WordValue": "ABC", "WordOCRConfidence": "999", "WordFontSize": "12"
		}]
	}]
}]`

func TestConfidence(t *testing.T) {
	tests := []struct {
		digits string
		want   int
	}{
		{"9999", 100},
		{"0000", 0},
		{"5", 60},
		{"", 0},
		{"987055", 65},
		{"9x", 50},
		{"1", 20},
		{"09", 50},
	}
	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.digits))
		})
	}
}

func TestConfidence_MatchesFormula(t *testing.T) {
	for _, s := range []string{"0123456789", "5555", "90909", "8", "77777777"} {
		sum := 0
		for _, c := range s {
			d := int(c - '0')
			sum += d
			if d != 0 {
				sum++
			}
		}
		assert.Equal(t, sum*10/len(s), Confidence(s), s)
	}
}

func TestBox(t *testing.T) {
	a := FromXYWH(10, 20, 30, 40)
	assert.Equal(t, Box{Left: 10, Top: 20, Right: 40, Bottom: 60}, a)
	assert.Equal(t, "10,20,40,60", a.Position())
	assert.Equal(t, 30, a.Width())
	assert.Equal(t, 40, a.Height())

	b := Box{Left: 0, Top: 50, Right: 35, Bottom: 100}
	assert.Equal(t, a.Union(b), b.Union(a))
	assert.Equal(t, a, a.Union(a))
	assert.Equal(t, Box{Left: 0, Top: 20, Right: 40, Bottom: 100}, a.Union(b))
	assert.True(t, a.Equal(FromXYWH(10, 20, 30, 40)))
	assert.False(t, a.Equal(b))
}

func TestExtent(t *testing.T) {
	_, ok := Extent(nil)
	assert.False(t, ok)

	ext, ok := Extent([]*Node{
		NewNode(KindBlock, Box{Left: 5, Top: 5, Right: 10, Bottom: 10}),
		NewNode(KindTable, Box{Left: 1, Top: 8, Right: 30, Bottom: 40}),
	})
	require.True(t, ok)
	assert.Equal(t, Box{Left: 1, Top: 5, Right: 30, Bottom: 40}, ext)
}

func TestNode_AppendAndLines(t *testing.T) {
	parent := NewNode(KindWordGroup, Box{Left: 10, Top: 10, Right: 20, Bottom: 20})
	parent.Append(word("a", Box{Left: 0, Top: 12, Right: 5, Bottom: 15}, 90, 10))
	parent.Append(word("b", Box{Left: 15, Top: 5, Right: 25, Bottom: 18}, 90, 10))
	assert.Equal(t, Box{Left: 10, Top: 10, Right: 20, Bottom: 20}, parent.Box, "children outside the box leave it alone")
	assert.Len(t, parent.ChildrenOf(KindWord), 2)

	parent.AddLine(AuxLine{Text: "  hello "})
	parent.AddLine(AuxLine{Text: "world"})
	assert.Equal(t, "hello world ", parent.AllLines())
	assert.Len(t, parent.Aux, 2)
	assert.Equal(t, "Block", KindBlock.String())
	assert.Equal(t, "RowGroup", KindRowGroup.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

func TestBuildBlocks(t *testing.T) {
	blocks := BuildBlocks(blocksFromJSON(t, `[{
		"BlockStartX": 0, "BlockStartY": 0, "BlockWidth": 200, "BlockHeight": 60,
		"LineList": [
			{"LineStartX": 0, "LineStartY": 0, "LineWidth": 200, "LineHeight": 30, "WordList": [
				{"WordStartX": 0, "WordStartY": 0, "WordWidth": 40, "WordHeight": 30, "WordValue": "Total", "WordOCRConfidence": "98", "WordFontSize": "1100"},
				{"WordStartX": 50, "WordStartY": 0, "WordWidth": 40, "WordHeight": 30, "WordValue": "due", "WordOCRConfidence": "7", "WordFontSize": "11"}
			]},
			{"LineStartX": 0, "LineStartY": 30, "LineWidth": 200, "LineHeight": 30, "WordList": [
				{"WordStartX": 0, "WordStartY": 30, "WordWidth": 40, "WordHeight": 30, "WordValue": "42", "WordOCRConfidence": "0", "WordFontSize": "n/a"},
				{"WordStartX": 50, "WordStartY": 30, "WordWidth": 40, "WordHeight": 30, "WordValue": "EUR", "WordOCRConfidence": "55", "WordFontSize": "9"}
			]}
		]
	}]`))
	require.Len(t, blocks, 1)
	block := blocks[0]

	assert.Equal(t, KindBlock, block.Kind)
	assert.Equal(t, Box{Left: 0, Top: 0, Right: 200, Bottom: 60}, block.Box)
	assert.Equal(t, Confidence("987055"), block.Confidence)
	assert.Equal(t, 65, block.Confidence)
	assert.Equal(t, []string{"Total due ", "42 EUR "}, block.Lines)
	assert.Equal(t, block.Lines, block.OriginalLines)
	assert.Equal(t, "Total due 42 EUR ", block.AllLines())

	require.Len(t, block.Children, 2)
	line := block.Children[0]
	assert.Equal(t, KindLine, line.Kind)
	assert.Equal(t, Confidence("987"), line.Confidence)
	assert.Equal(t, []string{"Total", "due"}, line.Lines)
	require.Len(t, line.Aux, 2)
	assert.Equal(t, AuxLine{Text: "Total", Box: FromXYWH(0, 0, 40, 30), Quality: 95, FontSize: "1100"}, line.Aux[0])

	require.Len(t, line.Children, 2)
	w := line.Children[0]
	assert.Equal(t, KindWord, w.Kind)
	assert.Equal(t, "Total", w.Text())
	assert.Equal(t, 95, w.Confidence)
	assert.Equal(t, 1100, w.FontSize)

	assert.Equal(t, 0, block.Children[1].Children[0].FontSize)
}

func TestBuildBlocks_InvalidCoordinateDefaultsToZero(t *testing.T) {
	blocks := BuildBlocks(blocksFromJSON(t, `[{"BlockStartX": "left", "BlockStartY": 5, "BlockWidth": 10, "BlockHeight": 10}]`))
	require.Len(t, blocks, 1)
	assert.Equal(t, Box{Left: 0, Top: 5, Right: 10, Bottom: 15}, blocks[0].Box)
	assert.Empty(t, blocks[0].Children)
	assert.Equal(t, 0, blocks[0].Confidence)
}

const qtyTable = `[{
	"TableStartX": 0, "TableStartY": 100, "TableWidth": 200, "TableHeight": 100,
	"RowList": [
		{"RowStartX": 0, "RowStartY": 100, "RowWidth": 200, "RowHeight": 50, "CellList": [
			{"CellStartX": 0, "CellStartY": 100, "CellWidth": 100, "CellHeight": 50, "LineList": [
				{"LineStartX": 5, "LineStartY": 105, "LineWidth": 30, "LineHeight": 20, "WordList": [
					{"WordStartX": 5, "WordStartY": 105, "WordWidth": 30, "WordHeight": 20, "WordValue": "Qty", "WordOCRConfidence": "999", "WordFontSize": "10"}
				]}
			]},
			{"CellStartX": 100, "CellStartY": 100, "CellWidth": 100, "CellHeight": 50, "LineList": [
				{"LineStartX": 105, "LineStartY": 105, "LineWidth": 10, "LineHeight": 20, "WordList": [
					{"WordStartX": 105, "WordStartY": 105, "WordWidth": 10, "WordHeight": 20, "WordValue": "5", "WordOCRConfidence": "8", "WordFontSize": "1000"}
				]}
			]}
		]},
		{"RowStartX": 0, "RowStartY": 150, "RowWidth": 200, "RowHeight": 50, "CellList": [
			{"CellStartX": 0, "CellStartY": 150, "CellWidth": 100, "CellHeight": 50, "LineList": []},
			{"CellStartX": 100, "CellStartY": 150, "CellWidth": 100, "CellHeight": 50}
		]}
	]
}]`

func TestBuildTables(t *testing.T) {
	tables := BuildTables(tablesFromJSON(t, qtyTable))
	require.Len(t, tables, 1)
	table := tables[0]
	assert.Equal(t, KindTable, table.Kind)
	require.Len(t, table.Children, 2)

	row := table.Children[0]
	assert.Equal(t, KindRow, row.Kind)
	assert.Equal(t, Confidence("9998"), row.Confidence)
	require.Len(t, row.Children, 2)

	qty := row.Children[0]
	assert.Equal(t, KindCell, qty.Kind)
	assert.Equal(t, 100, qty.Confidence)
	assert.Equal(t, 10, qty.FontSize)
	require.Len(t, qty.Aux, 1)
	assert.Equal(t, AuxLine{Text: "Qty ", Box: FromXYWH(5, 105, 30, 20), Quality: 100, FontSize: "10"}, qty.Aux[0])

	five := row.Children[1]
	assert.Equal(t, 90, five.Confidence)
	assert.Equal(t, 1000, five.FontSize)
	assert.Equal(t, 1000, five.Children[0].FontSize)

	require.Len(t, row.Aux, 2)
	assert.Equal(t, AuxLine{Text: "Qty ", Box: qty.Box}, row.Aux[0])
	assert.Equal(t, AuxLine{Text: "5 ", Box: five.Box}, row.Aux[1])

	require.Len(t, table.Aux, 2)
	assert.Equal(t, "Qty 5 ", table.Aux[0].Text)
	assert.Equal(t, "  ", table.Aux[1].Text)
	assert.Equal(t, Confidence("9998"), table.Confidence)

	empty := table.Children[1]
	assert.Equal(t, 0, empty.Confidence)
	assert.Empty(t, empty.Children[0].Children)
	assert.Empty(t, empty.Children[1].Children)
}

func TestSortTopLeft_NotLexicographic(t *testing.T) {
	a := NewNode(KindBlock, FromXYWH(30, 5, 10, 10))
	b := NewNode(KindBlock, FromXYWH(10, 5, 10, 10))
	c := NewNode(KindTable, FromXYWH(0, 20, 10, 10))

	t.Run("smaller left seen first", func(t *testing.T) {
		sorted := SortTopLeft([]*Node{b, a}, []*Node{c})
		assert.Equal(t, []*Node{b, a, c}, sorted)
	})

	t.Run("equal tops never replace the candidate", func(t *testing.T) {
		// a lexicographic sort would put b first
		sorted := SortTopLeft([]*Node{a, b}, []*Node{c})
		assert.Equal(t, []*Node{a, b, c}, sorted)
	})

	t.Run("smaller top with larger left is skipped", func(t *testing.T) {
		first := NewNode(KindBlock, FromXYWH(0, 50, 10, 10))
		higher := NewNode(KindBlock, FromXYWH(40, 10, 10, 10))
		sorted := SortTopLeft([]*Node{first, higher}, nil)
		assert.Equal(t, []*Node{first, higher}, sorted)
	})

	t.Run("reproducible", func(t *testing.T) {
		first := SortTopLeft([]*Node{a, b}, []*Node{c})
		second := SortTopLeft([]*Node{a, b}, []*Node{c})
		assert.Equal(t, first, second)
	})
}

func TestSortTopLeft_FarNodesKept(t *testing.T) {
	far := NewNode(KindBlock, FromXYWH(5, 100000, 10, 10))
	near := NewNode(KindBlock, FromXYWH(5, 5, 10, 10))
	sorted := SortTopLeft([]*Node{far, near}, nil)
	assert.Equal(t, []*Node{near, far}, sorted)
}

func TestStyleTable(t *testing.T) {
	line := NewNode(KindLine, Box{})
	line.Append(word("a", Box{}, 90, 1200))
	line.Append(word("b", Box{}, 90, 12))
	line.Append(word("c", Box{}, 90, 1000))
	line.Append(word("d", Box{}, 90, 14))
	block := NewNode(KindBlock, Box{})
	block.Append(line)

	st := CollectStyles([]*Node{block})
	assert.Equal(t, []int{12, 10, 14}, st.Sizes())
	assert.Equal(t, 3, st.Len())

	assert.Equal(t, 0, st.ID(12))
	assert.Equal(t, 0, st.ID(1200))
	assert.Equal(t, 1, st.ID(10))
	assert.Equal(t, 2, st.ID(14))
	assert.Equal(t, 0, st.ID(15))

	assert.Equal(t, 12, st.Closest(12))
	assert.Equal(t, 10, st.Closest(9))
	assert.Equal(t, 14, st.Closest(13), "tie between 12 and 14 goes to the later size")
	assert.Equal(t, 14, st.Closest(600))

	assert.Equal(t, 7, NewStyleTable().Closest(7))
}

func TestStyleTable_WordGroupUsesOwnSize(t *testing.T) {
	group := NewNode(KindWordGroup, Box{})
	group.FontSize = 900
	group.Append(word("x", Box{}, 90, 5))
	group.Append(word("y", Box{}, 90, 5))
	empty := NewNode(KindWordGroup, Box{})
	empty.FontSize = 33

	st := CollectStyles([]*Node{group, empty})
	assert.Equal(t, []int{9}, st.Sizes())
}

func TestStyleTable_LineSize(t *testing.T) {
	st := CollectStyles([]*Node{word("a", Box{}, 0, 1200), word("b", Box{}, 0, 8)})

	line := NewNode(KindLine, Box{})
	line.Append(word("a", Box{}, 0, 1200))
	line.Append(word("b", Box{}, 0, 1200))
	assert.Equal(t, 12, st.LineSize(line))

	assert.Equal(t, 0, st.LineSize(NewNode(KindLine, Box{})))

	small := NewNode(KindLine, Box{})
	small.Append(word("c", Box{}, 0, 9))
	small.Append(word("d", Box{}, 0, 8))
	assert.Equal(t, 8, st.LineSize(small))
}

func TestRender_ABCRoundTrip(t *testing.T) {
	blocks := BuildBlocks(blocksFromJSON(t, abcBlock))
	out := Render(PageMeta{ID: "p1", Width: 100, Height: 50, DPIX: 300, DPIY: 300}, blocks, nil)

	want := strings.Join([]string{
		`<?xml version="1.0" encoding="utf-16"?>`,
		`<Page xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" pos="0,0,100,50" lang="English" id="p1" printArea="0,0,100,50" xdpi="300" ydpi="300" >`,
		`  <Block pos="10,10,40,30">`,
		`      <L pos="10,10,40,30" s="0">`,
		`          <W pos="10,10,40,30" v="ABC" s="0" cn="999">`,
		`            <C pos="10,10,20,30" v="A" s="0" cn="10" />`,
		`            <C pos="20,10,30,30" v="B" s="0" cn="10" />`,
		`            <C pos="30,10,40,30" v="C" s="0" cn="10" />`,
		`          </W>`,
		`      </L>`,
		`  </Block>`,
		`  <Style id="0" v="color: 000000; font-name: arial; font-family: ft_sansserif; font-size: 12pt; " />`,
		`</Page>`,
		``,
	}, "\r\n")
	assert.Equal(t, want, string(out))
}

func TestRender_Table(t *testing.T) {
	tables := BuildTables(tablesFromJSON(t, qtyTable))
	out := string(Render(PageMeta{ID: "p2", Width: 300, Height: 300, DPIX: 200, DPIY: 200}, nil, tables))

	assert.Contains(t, out, "\r\n  <Table columns=\"2\" pos=\"0,100,200,200\" rows=\"2\">\r\n")
	assert.Contains(t, out, "\r\n      <Row pos=\"0,100,200,150\">\r\n")
	assert.Contains(t, out, "\r\n          <Cell col=\"0\" pos=\"0,100,100,150\" row=\"0\" columnSpan=\"1\">\r\n")
	assert.Contains(t, out, "\r\n          <Cell col=\"1\" pos=\"100,100,200,150\" row=\"0\" columnSpan=\"1\">\r\n")
	assert.Contains(t, out, "\r\n          <Cell col=\"0\" pos=\"0,150,100,200\" row=\"1\" columnSpan=\"1\">\r\n")
	assert.Contains(t, out, "\r\n          <Cell col=\"1\" pos=\"100,150,200,200\" row=\"1\" columnSpan=\"1\">\r\n")
	assert.Contains(t, out, "\r\n              <L pos=\"5,105,35,125\" s=\"0\">\r\n")
	assert.Contains(t, out, "\r\n                  <W pos=\"5,105,35,125\" v=\"Qty\" s=\"0\" cn=\"999\">\r\n")
	assert.Contains(t, out, "\r\n                  <W pos=\"105,105,115,125\" v=\"5\" s=\"0\" cn=\"8\">\r\n")
	assert.Contains(t, out, `font-size: 10pt; " />`)
	assert.Equal(t, 1, strings.Count(out, "<Style "))
}

func TestRender_WordSeparatorsAndEscaping(t *testing.T) {
	line := NewNode(KindLine, FromXYWH(0, 0, 100, 10))
	line.Append(word(`a<"&'>`, FromXYWH(0, 0, 60, 10), 5, 10))
	line.Append(word("z", FromXYWH(70, 0, 10, 10), 100, 10))
	block := NewNode(KindBlock, FromXYWH(0, 0, 100, 10))
	block.Append(line)

	out := string(Render(PageMeta{ID: "p3", Width: 100, Height: 10}, []*Node{block}, nil))

	assert.Contains(t, out, `v="a&lt;&quot;&amp;&apos;&gt;" s="0" cn="000000"`)
	assert.Contains(t, out, `<C pos="10,0,20,10" v="&lt;" s="0" cn="0" />`)
	assert.Contains(t, out, `v="z" s="0" cn="9"`)
	assert.Contains(t, out, `<C pos="70,0,80,10" v="z" s="0" cn="10" />`)
	assert.Equal(t, 1, strings.Count(out, "<S />"))
	assert.Contains(t, out, "          </W>\r\n          <S />\r\n          <W pos=\"70,0,80,10\"")
}

func TestRender_UsesExtentWithoutDimensions(t *testing.T) {
	blocks := BuildBlocks(blocksFromJSON(t, abcBlock))
	out := string(Render(PageMeta{ID: "p4"}, blocks, nil))
	assert.Contains(t, out, `pos="0,0,40,30" lang="English" id="p4" printArea="0,0,40,30" xdpi="0" ydpi="0" >`)
}

func TestRender_SkipsRowGroups(t *testing.T) {
	group := NewNode(KindRowGroup, FromXYWH(0, 0, 5, 5))
	group.Append(word("hidden", FromXYWH(0, 0, 5, 5), 90, 10))
	out := string(renderNodes(t, []*Node{group}))
	assert.NotContains(t, out, "hidden")
}

func renderNodes(t *testing.T, nodes []*Node) []byte {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, NewSerializer(CollectStyles(nodes)).Write(&sb, nodes, PageMeta{ID: "x", Width: 1, Height: 1}))
	return []byte(sb.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "page7_layout.xml", PageMeta{ID: "page7"}.FileName())
}

func TestUTF16RoundTrip(t *testing.T) {
	doc := []byte("<a v=\"é\"/>\r\n")
	enc, err := EncodeUTF16(doc)
	require.NoError(t, err)
	require.True(t, len(enc) > 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, enc[:2])
	assert.Equal(t, []byte{'<', 0, 'a', 0}, enc[2:6])

	dec, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(enc)
	require.NoError(t, err)
	assert.Equal(t, doc, dec)
}

func TestFindByBox(t *testing.T) {
	blocks := BuildBlocks(blocksFromJSON(t, abcBlock))
	box := FromXYWH(10, 10, 30, 20)

	found := FindByBox(blocks, box)
	require.NotNil(t, found)
	assert.Equal(t, KindWord, found.Kind, "word is preferred over line and block with the same box")

	group := NewNode(KindWordGroup, box)
	found = FindByBox(append(blocks, group), box)
	require.NotNil(t, found)
	assert.Equal(t, KindWordGroup, found.Kind)

	tables := BuildTables(tablesFromJSON(t, qtyTable))
	found = FindByBox(tables, FromXYWH(0, 100, 100, 50))
	require.NotNil(t, found)
	assert.Equal(t, KindCell, found.Kind)

	assert.Nil(t, FindByBox(blocks, FromXYWH(1, 2, 3, 4)))
}

func TestChildrenOf_CellsThroughTables(t *testing.T) {
	page := NewNode(KindPage, Box{})
	for _, table := range BuildTables(tablesFromJSON(t, qtyTable)) {
		page.Append(table)
	}
	assert.Len(t, page.ChildrenOf(KindCell), 4)
	assert.Len(t, page.ChildrenOf(KindTable), 1)
}
