package adp

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

// Int is a loosely typed integer field. The service emits coordinates and ids
// as JSON numbers, numeric strings, or not at all.
type Int struct {
	Value   int
	Present bool
	Valid   bool
	Raw     string
}

func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}
	if isNull(data) {
		return nil
	}
	i.Present = true
	i.Raw = string(data)

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		i.Value, i.Valid = numberToInt(num.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		i.Raw = s
		i.Value, i.Valid = numberToInt(strings.TrimSpace(s))
	}
	return nil
}

// Or returns the value when present and coercible, def otherwise.
func (i Int) Or(def int) int {
	if i.Present && i.Valid {
		return i.Value
	}
	return def
}

// Invalid reports a field that was present but could not be read as an integer.
func (i Int) Invalid() bool {
	return i.Present && !i.Valid
}

func numberToInt(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.RoundToEven(f)), true
}

// Text is a string field that may arrive as a JSON string, a bare number or be
// missing. Numbers keep their literal spelling.
type Text struct {
	Value   string
	Present bool
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	if isNull(data) {
		return nil
	}
	t.Present = true
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}
	t.Value = string(bytes.TrimSpace(data))
	return nil
}

func (t Text) String() string {
	return t.Value
}

// Bool is a sensitivity-style flag, accepted as a JSON bool or "true"/"false".
type Bool struct {
	Value   bool
	Present bool
	Valid   bool
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = Bool{}
	if isNull(data) {
		return nil
	}
	b.Present = true
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		b.Value, b.Valid = v, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			b.Value, b.Valid = parsed, true
		}
	}
	return nil
}

// ConfidenceKind tags which JSON shape a confidence value arrived in.
type ConfidenceKind int

const (
	ConfidenceAbsent ConfidenceKind = iota
	ConfidenceString
	ConfidenceInteger
	ConfidenceFloat
	ConfidenceInvalid
)

// Confidence is the KeyClassConfidence union: the service sends "High",
// 85, 85.5 or nothing depending on version and document class.
type Confidence struct {
	Kind  ConfidenceKind
	Str   string
	Int   int64
	Float float64
	Raw   string
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	*c = Confidence{}
	if isNull(data) {
		return nil
	}
	c.Raw = string(bytes.TrimSpace(data))

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Kind = ConfidenceString
		c.Str = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		lit := num.String()
		if !strings.ContainsAny(lit, ".eE") {
			if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
				c.Kind = ConfidenceInteger
				c.Int = n
				return nil
			}
		}
		if f, err := num.Float64(); err == nil {
			c.Kind = ConfidenceFloat
			c.Float = f
			return nil
		}
	}
	c.Kind = ConfidenceInvalid
	return nil
}

// Present reports whether the field appeared with a non-null value.
func (c Confidence) Present() bool {
	return c.Kind != ConfidenceAbsent
}

// String renders the value the way it was sent: strings verbatim, numbers in
// their shortest decimal form.
func (c Confidence) String() string {
	switch c.Kind {
	case ConfidenceString:
		return c.Str
	case ConfidenceInteger:
		return strconv.FormatInt(c.Int, 10)
	case ConfidenceFloat:
		return strconv.FormatFloat(c.Float, 'f', -1, 64)
	case ConfidenceInvalid:
		return c.Raw
	default:
		return ""
	}
}
