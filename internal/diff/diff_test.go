package diff

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonlens/internal/models"
	"github.com/mcncl/jsonlens/internal/parser"
)

func TestJSONDiff(t *testing.T) {
	tests := []struct {
		name     string
		original string
		updated  string
		expected string
	}{
		{
			name:     "nested replace",
			original: `{"title":"Teh Quick Fox","tags":["a","b"],"meta":{"views":10}}`,
			updated:  `{"title":"The Quick Fox","tags":["a","c"],"meta":{"views":11}}`,
			expected: `[{"op":"replace","path":"/title","from":"Teh Quick Fox","to":"The Quick Fox"},` +
				`{"op":"replace","path":"/tags/1","from":"b","to":"c"},` +
				`{"op":"replace","path":"/meta/views","from":10,"to":11}]`,
		},
		{
			name:     "added key",
			original: `{"a":1}`,
			updated:  `{"a":1,"b":2}`,
			expected: `[{"op":"add","path":"/b","to":2}]`,
		},
		{
			name:     "removed key",
			original: `{"a":1,"b":2}`,
			updated:  `{"a":1}`,
			expected: `[{"op":"remove","path":"/b","from":2}]`,
		},
		{
			name:     "array tail growth",
			original: `["a"]`,
			updated:  `["a","b","c"]`,
			expected: `[{"op":"add","path":"/1","to":"b"},{"op":"add","path":"/2","to":"c"}]`,
		},
		{
			name:     "array tail shrink",
			original: `[1,2,3]`,
			updated:  `[1]`,
			expected: `[{"op":"remove","path":"/1","from":2},{"op":"remove","path":"/2","from":3}]`,
		},
		{
			name:     "escaped key",
			original: `{"a/b~c":1}`,
			updated:  `{"a/b~c":2}`,
			expected: `[{"op":"replace","path":"/a~1b~0c","from":1,"to":2}]`,
		},
		{
			name:     "container kind mismatch",
			original: `{"a":{"x":1}}`,
			updated:  `{"a":[1]}`,
			expected: `[{"op":"replace","path":"/a","from":{"x":1},"to":[1]}]`,
		},
		{
			name:     "leaf replaced by container",
			original: `{"a":"text"}`,
			updated:  `{"a":{"b":"text"}}`,
			expected: `[{"op":"replace","path":"/a","from":"text","to":{"b":"text"}}]`,
		},
		{
			name:     "root primitives",
			original: `1`,
			updated:  `2`,
			expected: `[{"op":"replace","path":"","from":1,"to":2}]`,
		},
		{
			name:     "array nulls",
			original: `[null,1,null]`,
			updated:  `[null,null,2]`,
			expected: `[{"op":"remove","path":"/1","from":1},{"op":"add","path":"/2","to":2}]`,
		},
		{
			name:     "object value set to null",
			original: `{"a":1}`,
			updated:  `{"a":null}`,
			expected: `[{"op":"replace","path":"/a","from":1,"to":null}]`,
		},
		{
			name:     "removed subtree reported whole",
			original: `{"a":{"b":{"c":1}},"keep":true}`,
			updated:  `{"keep":true}`,
			expected: `[{"op":"remove","path":"/a","from":{"b":{"c":1}}}]`,
		},
		{
			name:     "added subtree reported whole",
			original: `[]`,
			updated:  `[{"id":1,"tags":["x"]}]`,
			expected: `[{"op":"add","path":"/0","to":{"id":1,"tags":["x"]}}]`,
		},
		{
			name:     "traversal order",
			original: `{"b":1,"a":1,"x":1}`,
			updated:  `{"z":1,"a":2,"y":1}`,
			expected: `[{"op":"remove","path":"/b","from":1},{"op":"replace","path":"/a","from":1,"to":2},` +
				`{"op":"remove","path":"/x","from":1},{"op":"add","path":"/z","to":1},{"op":"add","path":"/y","to":1}]`,
		},
		{
			name:     "numbers compared as text",
			original: `[1]`,
			updated:  `[1.0]`,
			expected: `[{"op":"replace","path":"/0","from":1,"to":1.0}]`,
		},
		{
			name:     "array of objects recursed",
			original: `{"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`,
			updated:  `{"items":[{"id":1,"name":"a"},{"id":2,"name":"B"}]}`,
			expected: `[{"op":"replace","path":"/items/1/name","from":"b","to":"B"}]`,
		},
		{
			name:     "null document",
			original: `null`,
			updated:  `{"a":1}`,
			expected: `[]`,
		},
		{
			name:     "html characters kept",
			original: `{"body":"<p>a</p>"}`,
			updated:  `{"body":"<p>a & b</p>"}`,
			expected: `[{"op":"replace","path":"/body","from":"<p>a</p>","to":"<p>a & b</p>"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JSONDiff(context.Background(), tt.original, tt.updated))
		})
	}
}

func TestJSONDiff_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		original string
		updated  string
	}{
		{name: "bad original", original: `{not json}`, updated: `{}`},
		{name: "bad updated", original: `{}`, updated: `[1,`},
		{name: "empty original", original: ``, updated: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := Decode(JSONDiff(context.Background(), tt.original, tt.updated))
			require.NoError(t, err)
			require.Len(t, ops, 1)
			assert.Equal(t, OpError, ops[0].Op)
			assert.Equal(t, "", ops[0].Path)
			assert.NotEmpty(t, ops[0].Reason)
			assert.Nil(t, ops[0].From)
			assert.Nil(t, ops[0].To)
		})
	}
}

func TestJSONDiff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := JSONDiff(ctx, `{"a":1}`, `{"a":2}`)
	assert.Equal(t, `[{"op":"error","path":"","reason":"diff interrupted: context canceled"}]`, result)
}

func TestCompute_Idempotent(t *testing.T) {
	docs := []string{
		`{}`,
		`[]`,
		`"text"`,
		`{"a":null,"b":[null,{"c":[1,2,{"d":"e"}]}],"f":1.50}`,
		`[[[]],{},{"x":{"y":{"z":true}}}]`,
	}

	for _, doc := range docs {
		v := mustParse(t, doc)
		ops, err := Compute(context.Background(), v, v)
		require.NoError(t, err)
		assert.Empty(t, ops, "diff of %s with itself", doc)
	}
}

func TestCompute_ReplaceIsSymmetric(t *testing.T) {
	a := mustParse(t, `{"title":"old","nested":{"n":[1,2,3]},"kind":{"x":1}}`)
	b := mustParse(t, `{"title":"new","nested":{"n":[1,5,3]},"kind":[1]}`)

	forward, err := Compute(context.Background(), a, b)
	require.NoError(t, err)
	backward, err := Compute(context.Background(), b, a)
	require.NoError(t, err)

	swapped := make([]Operation, 0, len(forward))
	for _, op := range forward {
		require.Equal(t, OpReplace, op.Op)
		swapped = append(swapped, Operation{Op: OpReplace, Path: op.Path, From: op.To, To: op.From})
	}

	if d := cmp.Diff(swapped, backward); d != "" {
		t.Errorf("backward diff mismatch (-want +got):\n%s", d)
	}
}

func TestCompute_ValuesAreCopies(t *testing.T) {
	original := mustParse(t, `{"gone":{"list":[1,2]},"changed":"a"}`)
	updated := mustParse(t, `{"changed":"b","new":["x"]}`)

	ops, err := Compute(context.Background(), original, updated)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	original.Members[0].Value.Members[0].Value.Items[0] = models.StringValue("mutated")
	updated.Members[1].Value.Items[0] = models.StringValue("mutated")

	encoded, err := Encode(ops)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "mutated")
}

func TestOperation_Decode(t *testing.T) {
	ops, err := Decode(`[{"op":"replace","path":"/a","from":{"z":1,"a":2},"to":null},{"op":"add","path":"/b","to":[true]}]`)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	require.NotNil(t, ops[0].From)
	assert.Equal(t, "z", ops[0].From.Members[0].Key)
	require.NotNil(t, ops[0].To)
	assert.True(t, ops[0].To.IsNull())
	assert.Nil(t, ops[1].From)

	encoded, err := Encode(ops)
	require.NoError(t, err)
	assert.Equal(t, `[{"op":"replace","path":"/a","from":{"z":1,"a":2},"to":null},{"op":"add","path":"/b","to":[true]}]`, encoded)
}

func TestEncode_Empty(t *testing.T) {
	encoded, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func BenchmarkJSONDiff_WideObject(b *testing.B) {
	var orig, upd strings.Builder
	orig.WriteString("{")
	upd.WriteString("{")
	for i := 0; i < 500; i++ {
		if i > 0 {
			orig.WriteString(",")
			upd.WriteString(",")
		}
		orig.WriteString(`"k` + string(rune('a'+i%26)) + strings.Repeat("x", i) + `":{"v":[1,2,3]}`)
		upd.WriteString(`"k` + string(rune('a'+i%26)) + strings.Repeat("x", i) + `":{"v":[1,2,4]}`)
	}
	orig.WriteString("}")
	upd.WriteString("}")

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = JSONDiff(ctx, orig.String(), upd.String())
	}
}

func mustParse(t *testing.T, doc string) models.Value {
	t.Helper()
	v, err := parser.ParseString(doc)
	require.NoError(t, err)
	return v
}
