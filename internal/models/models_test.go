package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_Compact(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "null", value: NullValue(), expected: "null"},
		{name: "true", value: BoolValue(true), expected: "true"},
		{name: "false", value: BoolValue(false), expected: "false"},
		{name: "number keeps literal", value: NumberValue(json.Number("1.0")), expected: "1.0"},
		{name: "string", value: StringValue("a \"b\""), expected: `"a \"b\""`},
		{name: "html is not escaped", value: StringValue("<b>&</b>"), expected: `"<b>&</b>"`},
		{
			name:     "object keeps member order",
			value:    ObjectValue(Member{"z", NumberValue("1")}, Member{"a", ArrayValue(StringValue("x"), NullValue())}),
			expected: `{"z":1,"a":["x",null]}`,
		},
		{name: "empty array", value: ArrayValue(), expected: "[]"},
		{name: "empty object", value: ObjectValue(), expected: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Compact())
		})
	}
}

func TestValue_Equal_IsTextual(t *testing.T) {
	assert.True(t, Equal(NumberValue("1"), NumberValue("1")))
	assert.False(t, Equal(NumberValue("1"), NumberValue("1.0")))
	assert.False(t, Equal(
		ObjectValue(Member{"a", NumberValue("1")}, Member{"b", NumberValue("2")}),
		ObjectValue(Member{"b", NumberValue("2")}, Member{"a", NumberValue("1")}),
	))
}

func TestValue_Clone_DoesNotAlias(t *testing.T) {
	original := ObjectValue(Member{"tags", ArrayValue(StringValue("a"), StringValue("b"))})
	clone := original.Clone()

	clone.Members[0].Value.Items[0] = StringValue("changed")
	clone.Members[0].Key = "renamed"

	assert.Equal(t, `{"tags":["a","b"]}`, original.Compact())
	assert.Equal(t, `{"renamed":["changed","b"]}`, clone.Compact())
}

func TestValue_IsLeaf(t *testing.T) {
	assert.True(t, NullValue().IsLeaf())
	assert.True(t, StringValue("").IsLeaf())
	assert.False(t, ArrayValue().IsLeaf())
	assert.False(t, ObjectValue().IsLeaf())
	assert.Equal(t, "object", Object.String())
}
