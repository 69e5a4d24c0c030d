package kvp

import (
	"fmt"
	"io"
	"strings"
)

// Describe writes an indented listing of pairs and their nested pairs, one
// line each, for debug logs.
func Describe(w io.Writer, pairs []*Pair) {
	describe(w, pairs, "")
}

func describe(w io.Writer, pairs []*Pair, pad string) {
	for _, p := range pairs {
		fmt.Fprintf(w, "%sclass=%q tier=%q key=%q value=%q key loc (%s) value loc (%s) key size (%d, %d) value size (%d, %d)\n",
			pad, p.KeyClass, p.Tier, p.Key, p.Value,
			p.KeyBox().Position(), p.ValueBox().Position(),
			p.KeyWidth, p.KeyHeight, p.ValueWidth, p.ValueHeight)
		if len(p.Nested) > 0 {
			describe(w, p.Nested, pad+strings.Repeat(" ", 4))
		}
	}
}
