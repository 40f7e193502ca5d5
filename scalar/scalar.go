// Package scalar defines the dynamically-tagged value model for ingested rows.
//
// A Value is decided once at ingestion time; everything downstream of the
// row decoder (arenas, index trees, traversal) is statically kind-specific
// and never does dynamic dispatch on Value again.
package scalar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unique"
)

// ErrUnsupportedKind is returned when a decoded value carries a tag outside
// {null, integer, float, string} (e.g. a JSON bool, object or array).
var ErrUnsupportedKind = errors.New("scalar: unsupported value kind")

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents a 64-bit signed integer value.
	KindInt
	// KindFloat represents a 64-bit floating point value.
	KindFloat
	// KindString represents a string value.
	KindString
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a small tagged scalar.
//
// The representation avoids reflection and fmt-based stringification so the
// ingestion hot loop stays allocation-light. Strings are interned; repeated
// column values share one backing string.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	s    unique.Handle[string]
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{Kind: KindInt, I64: v}
}

// Float returns a float value.
func Float(v float64) Value {
	return Value{Kind: KindFloat, F64: v}
}

// String returns a string value.
func String(s string) Value {
	return Value{Kind: KindString, s: unique.Make(s)}
}

// IsNull reports whether the value is null. The zero Value is not null; its
// kind is KindInvalid.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// StringValue returns the string payload, or "" if the kind is not KindString.
func (v Value) StringValue() string {
	if v.Kind == KindString {
		return v.s.Value()
	}
	return ""
}

// AsInt64 returns the integer payload if the kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind == KindInt {
		return v.I64, true
	}
	return 0, false
}

// AsFloat64 returns the float payload if the kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind == KindFloat {
		return v.F64, true
	}
	return 0, false
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// String implements fmt.Stringer for logs and debug dumps.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return v.s.Value()
	default:
		return "<invalid>"
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return strconv.AppendInt(nil, v.I64, 10), nil
	case KindFloat:
		b := strconv.AppendFloat(nil, v.F64, 'g', -1, 64)
		// Integral floats format without a '.' or exponent and would round
		// trip as KindInt; keep the kind on the wire.
		if !bytes.ContainsAny(b, ".eE") {
			b = append(b, '.', '0')
		}
		return b, nil
	case KindString:
		return strconv.AppendQuote(nil, v.s.Value()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKind, v.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Numbers decode to KindInt when they parse exactly as a 64-bit integer and
// to KindFloat otherwise. Bools, objects and arrays are rejected with
// ErrUnsupportedKind; the row decoder surfaces that as a parse failure.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return fmt.Errorf("%w: empty token", ErrUnsupportedKind)
	}
	switch s[0] {
	case 'n':
		if s != "null" {
			return fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
		}
		*v = Null()
		return nil
	case '"':
		// JSON string syntax, not Go's: strconv.Unquote would reject the
		// legal \/ escape.
		var unquoted string
		if err := json.Unmarshal([]byte(s), &unquoted); err != nil {
			return fmt.Errorf("scalar: malformed string token: %w", err)
		}
		*v = String(unquoted)
		return nil
	case 't', 'f', '{', '[':
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			*v = Int(i)
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("scalar: malformed number token: %w", err)
	}
	*v = Float(f)
	return nil
}

// Row is one ingested record: a mapping from column name to a tagged scalar.
type Row map[string]Value
