package model

import (
	"fmt"
	"strconv"
)

// Severity thresholds used by trace records (10 debug, 20 info, 30 warn, 40 error).
const SeverityError = 40

// Event is one trace record: a timestamp, a kind discriminator, an
// optional severity, and a loosely-typed attribute map whose schema
// varies per kind. Unknown kinds and unknown attributes are carried
// verbatim; consumers extract only the fields they recognize.
type Event struct {
	Timestamp float64
	Kind      string
	Severity  int
	Attrs     map[string]Value
}

// Str returns the named attribute as a string.
func (e Event) Str(name string) (string, bool) {
	v, ok := e.Attrs[name]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Num returns the named attribute as a number, accepting numeric strings.
func (e Event) Num(name string) (float64, bool) {
	v, ok := e.Attrs[name]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Flag returns the named attribute as a boolean, accepting "0"/"1" strings.
func (e Event) Flag(name string) (bool, bool) {
	v, ok := e.Attrs[name]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// FromRaw maps a decoded JSON record to an Event. The envelope contract
// is minimal: a "Type" string and a parseable "Time". Everything else
// lands in Attrs; unsupported JSON shapes (arrays, nested objects) are
// skipped per field rather than failing the record.
func FromRaw(raw map[string]any) (Event, error) {
	kindVal, ok := raw["Type"]
	if !ok {
		return Event{}, fmt.Errorf("model: record has no Type field")
	}
	kind, ok := kindVal.(string)
	if !ok || kind == "" {
		return Event{}, fmt.Errorf("model: record Type is not a non-empty string")
	}

	tsVal, ok := raw["Time"]
	if !ok {
		return Event{}, fmt.Errorf("model: record has no Time field")
	}
	ts, ok := coerceFloat(tsVal)
	if !ok {
		return Event{}, fmt.Errorf("model: record Time %q is not numeric", tsVal)
	}

	ev := Event{
		Timestamp: ts,
		Kind:      kind,
		Attrs:     make(map[string]Value, len(raw)),
	}

	for name, val := range raw {
		if name == "Type" || name == "Time" {
			continue
		}
		switch v := val.(type) {
		case string:
			ev.Attrs[name] = StringValue(v)
		case float64:
			ev.Attrs[name] = NumberValue(v)
		case bool:
			ev.Attrs[name] = BoolValue(v)
		}
	}

	if sev, ok := ev.Num("Severity"); ok {
		ev.Severity = int(sev)
		delete(ev.Attrs, "Severity")
	}

	return ev, nil
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
