package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueText
	ValueBool
	ValueList
)

// String returns the variant name.
func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueNumber:
		return "number"
	case ValueText:
		return "text"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a loosely-typed parameter or result: null, number, text,
// bool, or a nested list. Contract methods match on Kind and reject
// shapes they do not accept.
type Value struct {
	Kind ValueKind `json:"kind" cbor:"kind"`
	Num  float64   `json:"num,omitempty" cbor:"num,omitempty"`
	Str  string    `json:"str,omitempty" cbor:"str,omitempty"`
	Bool bool      `json:"bool,omitempty" cbor:"bool,omitempty"`
	List []Value   `json:"list,omitempty" cbor:"list,omitempty"`
}

// Null returns the null value.
func Null() Value { return Value{Kind: ValueNull} }

// Number wraps a number.
func Number(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// Uint wraps an unsigned integer as a number.
func Uint(n uint64) Value { return Value{Kind: ValueNumber, Num: float64(n)} }

// Text wraps a string.
func Text(s string) Value { return Value{Kind: ValueText, Str: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// List wraps a list of values.
func List(vs ...Value) Value {
	l := make([]Value, len(vs))
	copy(l, vs)
	return Value{Kind: ValueList, List: l}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind != ValueNumber {
		return 0, false
	}
	return v.Num, true
}

// AsUint returns v as a non-negative integer. Fractional, negative and
// non-number values are rejected.
func (v Value) AsUint() (uint64, bool) {
	n, ok := v.AsNumber()
	if !ok || n < 0 || n != math.Trunc(n) || n >= math.MaxUint64 {
		return 0, false
	}
	return uint64(n), true
}

// AsText returns the string held by v.
func (v Value) AsText() (string, bool) {
	if v.Kind != ValueText {
		return "", false
	}
	return v.Str, true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != ValueBool {
		return false, false
	}
	return v.Bool, true
}

// AsList returns the elements held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind != ValueList {
		return nil, false
	}
	return v.List, true
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueNumber:
		return v.Num == o.Num
	case ValueText:
		return v.Str == o.Str
	case ValueBool:
		return v.Bool == o.Bool
	case ValueList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v.Kind != ValueList {
		return v
	}
	return List(cloneValues(v.List)...)
}

func cloneValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, e := range vs {
		out[i] = e.Clone()
	}
	return out
}

// String renders v for display: numbers in shortest form, text verbatim,
// lists comma-joined.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueText:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	default:
		return "null"
	}
}

// MarshalJSON encodes v as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueText:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a natural JSON value. Objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case 'n':
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var l []Value
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		*v = Value{Kind: ValueList, List: l}
	case '{':
		return fmt.Errorf("objects are not supported as values")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Number(n)
	}
	return nil
}

// ParseValues decodes a JSON array into values, e.g. `["0xabc", 200]`.
func ParseValues(s string) ([]Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var vs []Value
	if err := json.Unmarshal([]byte(s), &vs); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return vs, nil
}
