package fields

import (
	"strconv"
	"strings"
	"unicode"
)

// VarFirstPage is set to "1" on the first page and "0" on the pages
// Consolidate emptied.
const VarFirstPage = "IsFirstPage"

// Consolidate moves every field of pages[1:] onto pages[0].
//
// A table whose entityName matches a table already on the first page
// contributes its line items to that table, numbered on from the table's
// last line item. Any other field keeps its name unless the first page has a
// field of that name, in which case "_<n>" is appended to its name, type
// and label until it is free; n counts pages from 1.
func Consolidate(pages []*Field) {
	if len(pages) == 0 {
		return
	}
	first := pages[0]
	first.Vars.Set(VarFirstPage, "1")
	for i, page := range pages[1:] {
		pageNum := i + 2
		for _, f := range page.Children {
			moveField(f, first, pageNum)
		}
		page.Children = nil
		page.Vars.Set(VarFirstPage, "0")
	}
}

func moveField(f, to *Field, pageNum int) {
	if f.IsTable() {
		if match := matchingTable(f, to); match != nil {
			appendLineItems(f, match)
			return
		}
	}

	name, typ, labelSuffix := f.Name, f.Type, ""
	for to.Child(name) != nil {
		s := "_" + strconv.Itoa(pageNum)
		name += s
		typ += s
		labelSuffix += s
	}
	copyField(f, to, name, typ, labelSuffix)
}

func copyField(src, to *Field, name, typ, labelSuffix string) {
	dst := to.AddChild(name)
	for _, n := range src.Vars.Names() {
		v := src.Vars.Value(n)
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "label", "type":
			v += labelSuffix
		}
		dst.Vars.Set(n, v)
	}
	dst.Text = src.Text
	dst.Status = src.Status
	dst.Type = typ
	for _, c := range src.Children {
		moveField(c, dst, 0)
	}
}

func matchingTable(src, page *Field) *Field {
	name := src.Vars.Value(VarEntityName)
	if strings.TrimSpace(name) == "" {
		return nil
	}
	for _, c := range page.Children {
		if c.IsTable() && c.Vars.Value(VarEntityName) == name {
			return c
		}
	}
	return nil
}

// appendLineItems copies from's line items into to, naming them after to's
// last line item with the numbers that follow it.
func appendLineItems(from, to *Field) {
	last := lastLineItem(to)
	if last == nil {
		return
	}
	number := lastNumber(last.Name)
	prefix := strings.TrimFunc(last.Name, unicode.IsDigit)
	for i, item := range from.Children {
		copyField(item, to, prefix+strconv.Itoa(number+i+1), item.Type, "_0")
	}
}

func lastLineItem(table *Field) *Field {
	for i := len(table.Children) - 1; i >= 0; i-- {
		if len(table.Children[i].Children) > 0 {
			return table.Children[i]
		}
	}
	return nil
}

// lastNumber returns the last run of digits in s, or -1 when s has none.
func lastNumber(s string) int {
	end := strings.LastIndexFunc(s, unicode.IsDigit)
	if end < 0 {
		return -1
	}
	start := end
	for start > 0 && unicode.IsDigit(rune(s[start-1])) {
		start--
	}
	n, err := strconv.Atoi(s[start : end+1])
	if err != nil {
		return -1
	}
	return n
}
