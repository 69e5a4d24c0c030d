package kvp

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpnorm/internal/adp"
	"adpnorm/internal/layout"
)

func loadInvoice(t *testing.T) *adp.Document {
	t.Helper()
	raw, err := os.ReadFile("../adp/testdata/invoice.json")
	require.NoError(t, err)
	doc, err := adp.Parse(raw)
	require.NoError(t, err)
	return doc
}

func recordsFromJSON(t *testing.T, raw string) []adp.KVPRecord {
	t.Helper()
	var records []adp.KVPRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestExtract_Invoice(t *testing.T) {
	doc := loadInvoice(t)
	pairs := Extract(doc.KVPTable(0), RankingsFrom(doc.Rankings()), KeepAll)
	require.Len(t, pairs, 2)

	first := pairs[0]
	assert.Equal(t, "Invoice Number", first.Key)
	assert.Equal(t, "INV-42", first.Value)
	assert.Equal(t, "InvoiceNumber", first.KeyClass)
	assert.Equal(t, "kc-1", first.KeyClassID)
	assert.Equal(t, "kvp-1", first.KVPID)
	assert.Equal(t, TierHigh, first.Tier)
	assert.Equal(t, 90, first.Confidence)
	assert.False(t, first.Sensitivity)
	assert.Equal(t, layout.Box{Left: 100, Top: 200, Right: 250, Bottom: 230}, first.KeyBox())
	assert.Equal(t, layout.Box{Left: 300, Top: 200, Right: 420, Bottom: 230}, first.ValueBox())
	assert.Equal(t, "Invoice Number:", first.OriginalKey)
	assert.Equal(t, "INV-42", first.OriginalValue)
	assert.False(t, first.HasLineItem)

	second := pairs[1]
	assert.Equal(t, TierLow, second.Tier)
	assert.Equal(t, 40, second.Confidence)
	assert.True(t, second.Sensitivity)
	assert.Empty(t, second.OriginalKey)
}

func TestExtract_KeepAllKeepsEveryNonTableRecord(t *testing.T) {
	records := recordsFromJSON(t, `[
		{"Key": "a", "Value": "1", "KeyClass": "A", "KVPID": "1"},
		{"Key": "b", "Value": "2", "KVPID": "2"},
		{"Key": "c", "Value": "3", "KeyClass": "A", "KVPID": "3"},
		{"Key": "t", "Value": "_TABLE_ZONE_", "ValueType": "Table", "ComplexKVPStructure": {"Attributes": []}},
		{"Key": "d"}
	]`)
	pairs := Extract(records, nil, KeepAll)
	assert.Len(t, pairs, 4)
	for _, p := range pairs {
		assert.NotEqual(t, "t", p.Key)
	}
}

func TestExtract_SelectionModes(t *testing.T) {
	doc := loadInvoice(t)
	rankings := RankingsFrom(doc.Rankings())

	tests := []struct {
		mode SelectionMode
		ids  []string
	}{
		{KeepAll, []string{"kvp-1", "kvp-2"}},
		{KeepAllWithKeyClass, []string{"kvp-1", "kvp-2"}},
		{KeepSingleBest, []string{"kvp-1"}},
		{KeepSingleBestWithKeyClass, []string{"kvp-1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var ids []string
			for _, p := range Extract(doc.KVPTable(0), rankings, tt.mode) {
				ids = append(ids, p.KVPID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestExtract_SingleBestWithKeyClassKeepsOnePerClass(t *testing.T) {
	records := recordsFromJSON(t, `[
		{"Key": "a", "Value": "1", "KeyClass": "Total", "KeyClassID": "k1", "KVPID": "x"},
		{"Key": "b", "Value": "2", "KeyClass": "Total", "KeyClassID": "k1", "KVPID": "y"},
		{"Key": "c", "Value": "3", "KeyClass": "Date", "KeyClassID": "k2", "KVPID": "z"},
		{"Key": "d", "Value": "4", "KeyClass": "Date", "KeyClassID": "k2", "KVPID": "w"},
		{"Key": "e", "Value": "5", "KVPID": "v"}
	]`)
	rankings := RankingIndex{
		{KeyClassID: "k1", KeyClassName: "Total", Ranked: []Rank{{KVPID: "y"}, {KVPID: "x"}}},
		{KeyClassID: "k2", KeyClassName: "Date", Ranked: []Rank{{KVPID: "z"}, {KVPID: "w"}}},
	}

	pairs := Extract(records, rankings, KeepSingleBestWithKeyClass)
	perClass := map[string]int{}
	for _, p := range pairs {
		perClass[p.KeyClass]++
	}
	assert.Equal(t, map[string]int{"Total": 1, "Date": 1}, perClass)
	assert.Equal(t, "y", pairs[0].KVPID)
	assert.Equal(t, "z", pairs[1].KVPID)
}

func TestExtract_KeyBoxNeedsValue(t *testing.T) {
	records := recordsFromJSON(t, `[
		{"Key": "k", "KeyStartX": 5, "KeyStartY": 5, "KeyWidth": 5, "KeyHeight": 5, "OriginalKey": "k:"}
	]`)
	pairs := Extract(records, nil, KeepAll)
	require.Len(t, pairs, 1)
	assert.Equal(t, layout.Box{}, pairs[0].KeyBox())
	assert.Empty(t, pairs[0].OriginalKey)
}

func TestExtract_UnreadableValuesKeepDefaults(t *testing.T) {
	records := recordsFromJSON(t, `[
		{"Key": "k", "Value": "v", "ValueConfidence": "high", "ValueStartX": "left", "ValueStartY": 7,
		 "Sensitivity": "maybe", "KeyClassConfidence": {"score": 1}}
	]`)
	pairs := Extract(records, nil, KeepAll)
	require.Len(t, pairs, 1)
	p := pairs[0]
	assert.Equal(t, 0, p.Confidence)
	assert.Equal(t, 0, p.ValueX)
	assert.Equal(t, 7, p.ValueY)
	assert.False(t, p.Sensitivity)
	assert.Empty(t, p.Tier)
}

func TestNormalTier(t *testing.T) {
	tests := []struct {
		name string
		in   adp.Confidence
		want string
	}{
		{"absent", adp.Confidence{}, ""},
		{"label", adp.Confidence{Kind: adp.ConfidenceString, Str: "High"}, "High"},
		{"label kept verbatim", adp.Confidence{Kind: adp.ConfidenceString, Str: "medium "}, "medium "},
		{"empty string", adp.Confidence{Kind: adp.ConfidenceString, Str: ""}, TierLow},
		{"numeric string", adp.Confidence{Kind: adp.ConfidenceString, Str: "85"}, TierHigh},
		{"padded numeric string", adp.Confidence{Kind: adp.ConfidenceString, Str: " 65 "}, TierMedium},
		{"float string", adp.Confidence{Kind: adp.ConfidenceString, Str: "12.5"}, TierLow},
		{"int 80", adp.Confidence{Kind: adp.ConfidenceInteger, Int: 80}, TierHigh},
		{"int 60", adp.Confidence{Kind: adp.ConfidenceInteger, Int: 60}, TierMedium},
		{"int 59", adp.Confidence{Kind: adp.ConfidenceInteger, Int: 59}, TierLow},
		{"float 79.9", adp.Confidence{Kind: adp.ConfidenceFloat, Float: 79.9}, TierMedium},
		{"float 81.5", adp.Confidence{Kind: adp.ConfidenceFloat, Float: 81.5}, TierHigh},
		{"invalid", adp.Confidence{Kind: adp.ConfidenceInvalid, Raw: "[]"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalTier(tt.in))
		})
	}
}

func TestTableTier_NoReparse(t *testing.T) {
	assert.Equal(t, "85", tableTier(adp.Confidence{Kind: adp.ConfidenceString, Str: "85"}))
	assert.Equal(t, TierLow, tableTier(adp.Confidence{Kind: adp.ConfidenceString}))
	assert.Equal(t, TierHigh, tableTier(adp.Confidence{Kind: adp.ConfidenceFloat, Float: 81.5}))
	assert.Equal(t, TierMedium, tableTier(adp.Confidence{Kind: adp.ConfidenceInteger, Int: 70}))
	assert.Equal(t, "", tableTier(adp.Confidence{}))
}

func TestExtractTables_QtyNesting(t *testing.T) {
	doc := loadInvoice(t)
	tables := ExtractTables(doc.KVPTable(0))
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "Items", table.Key)
	assert.Equal(t, TableZone, table.Value)
	assert.Equal(t, "LineItems", table.KeyClass)
	assert.Equal(t, TierHigh, table.Tier)
	assert.Equal(t, 100, table.ValueX)
	assert.Equal(t, 600, table.ValueY)
	assert.Equal(t, 800, table.ValueWidth)
	assert.Equal(t, -1, table.ValueHeight)
	assert.Equal(t, layout.Box{}, table.KeyBox())

	require.Len(t, table.Nested, 1)
	row := table.Nested[0]
	assert.True(t, row.HasLineItem)
	assert.Equal(t, 1, row.LineItemID)
	assert.Equal(t, 1, row.SeqLineItemID)
	assert.Equal(t, layout.Box{Left: 100, Top: 650, Right: 900, Bottom: 700}, row.ValueBox())

	require.Len(t, row.Nested, 1, "cells with an empty value are dropped")
	qty := row.Nested[0]
	assert.Equal(t, "Qty", qty.Key)
	assert.Equal(t, "5", qty.Value)
	assert.Equal(t, "Quantity", qty.KeyClass)
	assert.Equal(t, "Medium", qty.Tier)
	assert.Equal(t, 90, qty.Confidence)
	assert.Equal(t, layout.Box{Left: 510, Top: 655, Right: 530, Bottom: 685}, qty.ValueBox())
	assert.Equal(t, layout.Box{Left: 110, Top: 605, Right: 170, Bottom: 635}, qty.KeyBox())
}

func TestExtractTables_Degraded(t *testing.T) {
	records := recordsFromJSON(t, `[
		{"Key": "plain", "Value": "1"},
		{"Key": "nostructure", "ValueType": "table"},
		{"Key": "T", "Value": "total", "ValueType": "TABLE", "KeyClassConfidence": "55",
		 "KeyStartX": "x", "KeyStartY": 3,
		 "ComplexKVPStructure": {"Attributes": [{"ValueList": [
			{"LineItemID": 4},
			{"ValueStartX": 1, "ComplexKVPStructure": {"Attributes": [
				{"Key": "Price", "Value": "9.99", "KeyClassConfidence": 72, "ValueConfidence": "bad"}
			]}}
		]}]}}
	]`)
	tables := ExtractTables(records)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "55", table.Tier)
	assert.Equal(t, -1, table.KeyX)
	assert.Equal(t, 3, table.KeyY)

	require.Len(t, table.Nested, 1, "line item without cells is skipped")
	item := table.Nested[0]
	assert.False(t, item.HasLineItem)
	assert.Equal(t, 1, item.ValueX)
	require.Len(t, item.Nested, 1)
	assert.Equal(t, "72", item.Nested[0].Tier)
	assert.Equal(t, 0, item.Nested[0].Confidence)
}

func TestRankingIndex_Find(t *testing.T) {
	idx := RankingIndex{
		{KeyClassID: "k1", KeyClassName: "Total", Ranked: []Rank{{KVPID: "a"}, {KVPID: "b"}}},
		{KeyClassID: "k1", KeyClassName: "Total", Ranked: []Rank{{KVPID: "c"}}},
		{KeyClassID: "", KeyClassName: "", Ranked: []Rank{{KVPID: ""}}},
	}
	assert.Equal(t, 0, idx.Find("Total", "k1", "a"))
	assert.Equal(t, 1, idx.Find("Total", "k1", "b"))
	assert.Equal(t, -1, idx.Find("Total", "k1", "c"), "only the first matching ranking is searched")
	assert.Equal(t, -1, idx.Find("total", "k1", "a"))
	assert.Equal(t, -1, idx.Find("Total", "k2", "a"))
	assert.Equal(t, -1, idx.Find("", "", ""))
}

func TestRankingsFrom(t *testing.T) {
	rankings := RankingsFrom(loadInvoice(t).Rankings())
	require.Len(t, rankings, 1)
	assert.Equal(t, Ranking{
		KeyClassID:   "kc-1",
		KeyClassName: "InvoiceNumber",
		KeyClassType: "string",
		Ranked: []Rank{
			{PageNo: 1, KVPID: "kvp-1", Reserved: "INV-42"},
			{PageNo: 1, KVPID: "kvp-2", Reserved: "INV-4Z"},
		},
	}, rankings[0])
}

func TestSelect(t *testing.T) {
	rankings := RankingIndex{{KeyClassID: "k", KeyClassName: "C", Ranked: []Rank{{KVPID: "best"}, {KVPID: "runnerup"}}}}
	unclassified := &Pair{KVPID: "u"}
	best := &Pair{KeyClass: "C", KeyClassID: "k", KVPID: "best"}
	runnerUp := &Pair{KeyClass: "C", KeyClassID: "k", KVPID: "runnerup"}
	unranked := &Pair{KeyClass: "C", KeyClassID: "k", KVPID: "missing"}

	tests := []struct {
		mode                                   SelectionMode
		unclassified, best, runnerUp, unranked bool
	}{
		{KeepAll, true, true, true, true},
		{KeepAllWithKeyClass, false, true, true, true},
		{KeepSingleBestWithKeyClass, false, true, false, false},
		{KeepSingleBest, true, true, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.unclassified, Select(tt.mode, unclassified, rankings), "unclassified")
			assert.Equal(t, tt.best, Select(tt.mode, best, rankings), "rank 0")
			assert.Equal(t, tt.runnerUp, Select(tt.mode, runnerUp, rankings), "rank 1")
			assert.Equal(t, tt.unranked, Select(tt.mode, unranked, rankings), "not ranked")
		})
	}
}

func TestParseSelectionMode(t *testing.T) {
	assert.Equal(t, KeepAll, ParseSelectionMode("keepall"))
	assert.Equal(t, KeepAllWithKeyClass, ParseSelectionMode(" KeepAllWithKeyClass "))
	assert.Equal(t, KeepSingleBest, ParseSelectionMode("KEEPSINGLEBEST"))
	assert.Equal(t, KeepSingleBestWithKeyClass, ParseSelectionMode("keepSingleBestWithKeyClass"))
	assert.Equal(t, KeepAll, ParseSelectionMode("keepbest"))
	assert.Equal(t, KeepAll, ParseSelectionMode(""))
}

func TestSort(t *testing.T) {
	lowTop := &Pair{Key: "lowTop", Tier: "Low", ValueY: 10}
	highBottom := &Pair{Key: "highBottom", Tier: " HIGH ", ValueY: 900}
	mediumMid := &Pair{Key: "mediumMid", Tier: "Medium", ValueY: 500}
	highTop := &Pair{Key: "highTop", Tier: "High", ValueY: 100, ValueX: 50}
	highTopLeft := &Pair{Key: "highTopLeft", Tier: "High", ValueY: 100, ValueX: 10}

	pairs := []*Pair{lowTop, highBottom, mediumMid, highTop, highTopLeft}
	Sort(pairs)

	var keys []string
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"highTopLeft", "highTop", "highBottom", "mediumMid", "lowTop"}, keys)
}

func TestCompare_TierIgnoredWhenEitherMissing(t *testing.T) {
	high := &Pair{Tier: TierHigh, ValueY: 50}
	untiered := &Pair{ValueY: 10}
	assert.Equal(t, 1, Compare(high, untiered))
	assert.Equal(t, -1, Compare(untiered, high))
}

func TestCompare_KeyBoxBreaksTies(t *testing.T) {
	a := &Pair{Tier: TierLow, ValueY: 5, KeyY: 1, KeyX: 9}
	b := &Pair{Tier: "unknown", ValueY: 5, KeyY: 1, KeyX: 3}
	assert.Equal(t, 1, Compare(a, b))
	assert.Equal(t, 0, Compare(a, a))
}

func TestSort_Reproducible(t *testing.T) {
	build := func() []*Pair {
		return []*Pair{
			{Key: "a", Tier: TierLow, ValueY: 1},
			{Key: "b", Tier: TierLow, ValueY: 1},
			{Key: "c", Tier: TierHigh, ValueY: 3},
			{Key: "d", ValueY: 1},
		}
	}
	first, second := build(), build()
	Sort(first)
	Sort(second)
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
	}
}

func TestDescribe(t *testing.T) {
	doc := loadInvoice(t)
	var buf bytes.Buffer
	Describe(&buf, ExtractTables(doc.KVPTable(0)))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), `class="LineItems"`)
	assert.Contains(t, string(lines[1]), "    class=\"\"")
	assert.Contains(t, string(lines[2]), "        class=\"Quantity\"")
	assert.Contains(t, string(lines[2]), "value loc (510,655,530,685)")
}
