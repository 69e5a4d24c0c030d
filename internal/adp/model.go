package adp

// Block is one entry of a page's BlockList.
type Block struct {
	StartX   Int    `json:"BlockStartX"`
	StartY   Int    `json:"BlockStartY"`
	Width    Int    `json:"BlockWidth"`
	Height   Int    `json:"BlockHeight"`
	LineList []Line `json:"LineList"`
}

// Line is a text line inside a block or a table cell.
type Line struct {
	StartX   Int    `json:"LineStartX"`
	StartY   Int    `json:"LineStartY"`
	Width    Int    `json:"LineWidth"`
	Height   Int    `json:"LineHeight"`
	WordList []Word `json:"WordList"`
}

// Word carries the recognized text, one confidence digit per character and a
// font size that is sometimes scaled by 100.
type Word struct {
	StartX        Int  `json:"WordStartX"`
	StartY        Int  `json:"WordStartY"`
	Width         Int  `json:"WordWidth"`
	Height        Int  `json:"WordHeight"`
	Value         Text `json:"WordValue"`
	OCRConfidence Text `json:"WordOCRConfidence"`
	FontSize      Text `json:"WordFontSize"`
}

type Table struct {
	StartX  Int   `json:"TableStartX"`
	StartY  Int   `json:"TableStartY"`
	Width   Int   `json:"TableWidth"`
	Height  Int   `json:"TableHeight"`
	RowList []Row `json:"RowList"`
}

type Row struct {
	StartX   Int    `json:"RowStartX"`
	StartY   Int    `json:"RowStartY"`
	Width    Int    `json:"RowWidth"`
	Height   Int    `json:"RowHeight"`
	CellList []Cell `json:"CellList"`
}

type Cell struct {
	StartX   Int    `json:"CellStartX"`
	StartY   Int    `json:"CellStartY"`
	Width    Int    `json:"CellWidth"`
	Height   Int    `json:"CellHeight"`
	LineList []Line `json:"LineList"`
}

// PageInfo holds the page geometry reported for each pageList entry.
type PageInfo struct {
	DPIX              Int  `json:"dpix"`
	DPIY              Int  `json:"dpiy"`
	PageWidth         Int  `json:"PageWidth"`
	PageHeight        Int  `json:"PageHeight"`
	PageOCRConfidence Text `json:"PageOCRConfidence"`
}

// KVPRecord is one row of a page's KVPTable. Table-typed records carry their
// line items in ComplexKVPStructure.
type KVPRecord struct {
	Key                 Text                 `json:"Key"`
	Value               Text                 `json:"Value"`
	KeyClass            Text                 `json:"KeyClass"`
	KeyClassID          Text                 `json:"KeyClassID"`
	KeyClassConfidence  Confidence           `json:"KeyClassConfidence"`
	KVPID               Text                 `json:"KVPID"`
	ValueType           Text                 `json:"ValueType"`
	ValueConfidence     Int                  `json:"ValueConfidence"`
	Sensitivity         Bool                 `json:"Sensitivity"`
	KeyStartX           Int                  `json:"KeyStartX"`
	KeyStartY           Int                  `json:"KeyStartY"`
	KeyWidth            Int                  `json:"KeyWidth"`
	KeyHeight           Int                  `json:"KeyHeight"`
	ValueStartX         Int                  `json:"ValueStartX"`
	ValueStartY         Int                  `json:"ValueStartY"`
	ValueWidth          Int                  `json:"ValueWidth"`
	ValueHeight         Int                  `json:"ValueHeight"`
	OriginalKey         Text                 `json:"OriginalKey"`
	OriginalValue       Text                 `json:"OriginalValue"`
	ComplexKVPStructure *ComplexKVPStructure `json:"ComplexKVPStructure"`
}

// ComplexKVPStructure nests a table's columns (Attributes with ValueList) and,
// one level down, a line item's cells (Attributes with Key/Value).
type ComplexKVPStructure struct {
	Attributes []Attribute `json:"Attributes"`
}

// Attribute is used at both nesting levels; which fields are populated
// depends on the level.
type Attribute struct {
	Key                Text       `json:"Key"`
	Value              Text       `json:"Value"`
	KeyClass           Text       `json:"KeyClass"`
	KeyClassConfidence Confidence `json:"KeyClassConfidence"`
	ValueConfidence    Int        `json:"ValueConfidence"`
	Sensitivity        Bool       `json:"Sensitivity"`
	KeyStartX          Int        `json:"KeyStartX"`
	KeyStartY          Int        `json:"KeyStartY"`
	KeyWidth           Int        `json:"KeyWidth"`
	KeyHeight          Int        `json:"KeyHeight"`
	ValueStartX        Int        `json:"ValueStartX"`
	ValueStartY        Int        `json:"ValueStartY"`
	ValueWidth         Int        `json:"ValueWidth"`
	ValueHeight        Int        `json:"ValueHeight"`
	OriginalKey        Text       `json:"OriginalKey"`
	OriginalValue      Text       `json:"OriginalValue"`
	ValueList          []LineItem `json:"ValueList"`
}

// LineItem is one ValueList entry of a table record.
type LineItem struct {
	ValueStartX         Int                  `json:"ValueStartX"`
	ValueStartY         Int                  `json:"ValueStartY"`
	ValueWidth          Int                  `json:"ValueWidth"`
	ValueHeight         Int                  `json:"ValueHeight"`
	LineItemID          Int                  `json:"LineItemID"`
	SeqLineItemID       Int                  `json:"SeqLineItemID"`
	Sensitivity         Bool                 `json:"Sensitivity"`
	ComplexKVPStructure *ComplexKVPStructure `json:"ComplexKVPStructure"`
}

// KeyClassRanking is one KeyClassRankedList entry.
type KeyClassRanking struct {
	KeyClassID    Text        `json:"KeyClassID"`
	KeyClassName  Text        `json:"KeyClassName"`
	KeyClassType  Text        `json:"KeyClassType"`
	KVPRankedList []RankedKVP `json:"KVPRankedList"`
}

type RankedKVP struct {
	PageNo    Int  `json:"PageNo"`
	KVPID     Text `json:"KVPID"`
	Reserved1 Text `json:"Reserved1"`
}

// Classification carries the primary and alternate document classes.
type Classification struct {
	DocumentClass          *DocumentClass   `json:"DocumentClass"`
	AlternateDocumentClass []AlternateClass `json:"AlternateDocumentClass"`
}

type DocumentClass struct {
	Actual     Text `json:"Actual"`
	ClassMatch Text `json:"ClassMatch"`
}

type AlternateClass struct {
	Name       Text `json:"Name"`
	ClassMatch Text `json:"ClassMatch"`
}

type dsOutput struct {
	Content Text `json:"Content"`
}
