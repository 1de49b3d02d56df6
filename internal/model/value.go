package model

import (
	"strconv"

	"golang.org/x/text/unicode/norm"
)

type valueKind uint8

const (
	stringKind valueKind = iota
	numberKind
	boolKind
)

// Value is one loosely-typed attribute value: a string, number, or boolean.
// The simulator encodes most numeric fields as JSON strings, so AsNumber
// also accepts numeric strings.
type Value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
}

// StringValue wraps a string. The text is NFC-normalized so values used
// as map keys (localities, queue names) compare byte-stable.
func StringValue(s string) Value {
	return Value{kind: stringKind, str: norm.NFC.String(s)}
}

// NumberValue wraps a float64.
func NumberValue(f float64) Value {
	return Value{kind: numberKind, num: f}
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	return Value{kind: boolKind, b: b}
}

// AsString returns the string form of the value. Numbers and booleans
// report false; callers wanting text of any value should format themselves.
func (v Value) AsString() (string, bool) {
	if v.kind != stringKind {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric form of the value. String values are
// parsed with ParseFloat, matching the simulator's string-encoded numbers.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case numberKind:
		return v.num, true
	case stringKind:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsBool returns the boolean form of the value. The simulator encodes
// flags as "0"/"1" strings, which are accepted here.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case boolKind:
		return v.b, true
	case stringKind:
		switch v.str {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
		return false, false
	case numberKind:
		return v.num != 0, true
	default:
		return false, false
	}
}
