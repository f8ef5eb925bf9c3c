// Package form holds wizard field values as a tagged union. Every field has
// one semantic kind fixed by its schema, so a number can never arrive as a
// string and be parsed three different ways downstream.
package form

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Kind is the semantic type of a field value.
type Kind string

const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBool     Kind = "bool"
	KindEnum     Kind = "enum"
	KindEnumList Kind = "enum_list"
)

// Value is a single field value. Exactly one payload is meaningful, chosen by Kind.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []string
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Enum(option string) Value { return Value{kind: KindEnum, str: option} }
func EnumList(opts ...string) Value { return Value{kind: KindEnumList, list: slices.Clone(opts)} }

// Kind returns the value's kind; the zero Value has an empty kind.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v.kind == "" }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsEnum() (string, bool) {
	if v.kind != KindEnum {
		return "", false
	}
	return v.str, true
}

func (v Value) AsEnumList() ([]string, bool) {
	if v.kind != KindEnumList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

func (v Value) String() string {
	switch v.kind {
	case KindString, KindEnum:
		return v.str
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindEnumList:
		return fmt.Sprintf("%v", v.list)
	}
	return ""
}

type wireValue struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes as {"kind": ..., "value": ...}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindString, KindEnum:
		payload = v.str
	case KindNumber:
		payload = v.num
	case KindBool:
		payload = v.b
	case KindEnumList:
		list := v.list
		if list == nil {
			list = []string{}
		}
		payload = list
	default:
		return []byte("null"), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Kind: v.kind, Value: raw})
}

// UnmarshalJSON decodes {"kind": ..., "value": ...}, rejecting a payload that
// does not match its declared kind.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var w wireValue
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindString, KindEnum:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return fmt.Errorf("%s value must be a JSON string", w.Kind)
		}
		*v = Value{kind: w.Kind, str: s}
	case KindNumber:
		var n float64
		if err := json.Unmarshal(w.Value, &n); err != nil {
			return fmt.Errorf("number value must be a JSON number")
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("number value must be finite")
		}
		*v = Number(n)
	case KindBool:
		var bv bool
		if err := json.Unmarshal(w.Value, &bv); err != nil {
			return fmt.Errorf("bool value must be a JSON boolean")
		}
		*v = Bool(bv)
	case KindEnumList:
		var list []string
		if err := json.Unmarshal(w.Value, &list); err != nil {
			return fmt.Errorf("enum_list value must be a JSON array of strings")
		}
		*v = EnumList(list...)
	default:
		return fmt.Errorf("unknown value kind %q", w.Kind)
	}
	return nil
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num && v.b == o.b && slices.Equal(v.list, o.list)
}
