package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Exactly one of the payload fields is
// meaningful, selected by Kind. Object members keep document order.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Items   []Value
	Members []Member
}

// NullValue returns a JSON null.
func NullValue() Value { return Value{Kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// NumberValue wraps a number literal. The literal text is kept as-is.
func NumberValue(n json.Number) Value { return Value{Kind: Number, Number: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ArrayValue builds an array from its elements.
func ArrayValue(items ...Value) Value { return Value{Kind: Array, Items: items} }

// ObjectValue builds an object from its members in the given order.
func ObjectValue(members ...Member) Value { return Value{Kind: Object, Members: members} }

// IsLeaf reports whether v is null, a boolean, a number or a string.
func (v Value) IsLeaf() bool {
	return v.Kind != Array && v.Kind != Object
}

// IsNull reports whether v is a JSON null.
func (v Value) IsNull() bool {
	return v.Kind == Null
}

// Clone returns a deep copy of v that shares no slices with it.
func (v Value) Clone() Value {
	switch v.Kind {
	case Array:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Clone()
		}
		return Value{Kind: Array, Items: items}
	case Object:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
		return Value{Kind: Object, Members: members}
	default:
		return v
	}
}

// MarshalJSON writes v as compact JSON, object members in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compact returns the compact JSON text of v. Two values are considered
// equal leaves when their compact texts are byte-identical.
func (v Value) Compact() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Equal reports whether a and b serialize to the same compact text.
func Equal(a, b Value) bool {
	return a.Compact() == b.Compact()
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.Number == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(string(v.Number))
	case String:
		return encodeString(buf, v.Str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected json value kind: %v", v.Kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
