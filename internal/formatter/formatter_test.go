package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonlens/internal/classifier"
	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/tools"
)

func plain(format string) *Formatter {
	return NewFormatter(config.OutputConfig{Format: format, Color: false})
}

func TestFormatDiff_JSONIsUnchanged(t *testing.T) {
	result := `[{"op":"add","path":"/b","to":2}]`
	out, err := plain(config.FormatJSON).FormatDiff(result)
	require.NoError(t, err)
	assert.Equal(t, result, out)
}

func TestFormatDiff_Pretty(t *testing.T) {
	out, err := plain(config.FormatPretty).FormatDiff(`[{"op":"remove","path":"/a","from":1}]`)
	require.NoError(t, err)

	expected := `[
  {
    "op": "remove",
    "path": "/a",
    "from": 1
  }
]`
	assert.Equal(t, expected, out)
}

func TestFormatDiff_Text(t *testing.T) {
	tests := []struct {
		name     string
		result   string
		expected string
	}{
		{
			name:     "all operations",
			result:   `[{"op":"replace","path":"/a","from":1,"to":"x"},{"op":"remove","path":"/b","from":{"k":[1]}},{"op":"add","path":"/c","to":null}]`,
			expected: "~ /a: 1 -> \"x\"\n- /b: {\"k\":[1]}\n+ /c: null",
		},
		{
			name:     "root replace",
			result:   `[{"op":"replace","path":"","from":1,"to":2}]`,
			expected: "~ (root): 1 -> 2",
		},
		{
			name:     "error",
			result:   `[{"op":"error","path":"","reason":"parsing: bad"}]`,
			expected: "! parsing: bad",
		},
		{
			name:     "empty",
			result:   `[]`,
			expected: "no differences",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := plain(config.FormatText).FormatDiff(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestFormatDiff_InvalidResult(t *testing.T) {
	_, err := plain(config.FormatText).FormatDiff(`{`)
	assert.Error(t, err)

	_, err = plain(config.FormatPretty).FormatDiff(`{`)
	assert.Error(t, err)
}

func TestFormatFields(t *testing.T) {
	out, err := plain(config.FormatText).FormatFields(`["/title","/items/0/body"]`)
	require.NoError(t, err)
	assert.Equal(t, "/title\n/items/0/body", out)

	out, err = plain(config.FormatText).FormatFields(`["ERROR:parsing: broken"]`)
	require.NoError(t, err)
	assert.Equal(t, "! parsing: broken", out)

	out, err = plain(config.FormatText).FormatFields(`[]`)
	require.NoError(t, err)
	assert.Equal(t, "no human-readable fields", out)

	out, err = plain(config.FormatJSON).FormatFields(`["/title"]`)
	require.NoError(t, err)
	assert.Equal(t, `["/title"]`, out)
}

func TestFormatVerdicts(t *testing.T) {
	verdicts := []classifier.Verdict{
		{Path: "/title", Human: true, Rule: classifier.RuleNameHint},
		{Path: "/id", Human: false, Rule: classifier.RuleHexID},
	}

	out, err := plain(config.FormatText).FormatVerdicts(verdicts)
	require.NoError(t, err)
	assert.Equal(t, "yes /title (name-hint)\nno  /id (hex-id)", out)

	out, err = plain(config.FormatJSON).FormatVerdicts(verdicts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"path":"/title","human":true,"rule":"name-hint"},{"path":"/id","human":false,"rule":"hex-id"}]`, out)

	out, err = plain(config.FormatJSON).FormatVerdicts(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestFormatTools(t *testing.T) {
	list := tools.NewDefaultRegistry(config.NewConfig(), nil).List()

	out, err := plain(config.FormatText).FormatTools(list)
	require.NoError(t, err)
	assert.Contains(t, out, "json_diff\n  Produces a JSON Patch-like diff")
	assert.Contains(t, out, "originalJson (required): ")

	out, err = plain(config.FormatPretty).FormatTools(list)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  {\n    \"name\": \"json_diff\"")
}

func TestNewFormatter_DefaultsToJSON(t *testing.T) {
	out, err := NewFormatter(config.OutputConfig{}).FormatFields(`["/a"]`)
	require.NoError(t, err)
	assert.Equal(t, `["/a"]`, out)
}
