package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type carFields struct {
	Make string `json:"make"`
	Year any    `json:"year"`
}

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		make  string
	}{
		{"plain object", `{"make": "Toyota", "year": "2020"}`, "Toyota"},
		{"json fence", "```json\n{\"make\": \"Honda\"}\n```", "Honda"},
		{"bare fence", "```\n{\"make\": \"Kia\"}\n```", "Kia"},
		{"surrounding chatter", `Here you go: {"make": "Ford", "year": 2018} hope it helps`, "Ford"},
		{"trailing comma", `{"make": "Audi", "year": 2019,}`, "Audi"},
		{"bare keys", `{make: "Tesla", year: 2022}`, "Tesla"},
		{"single quotes", `{'make': 'Jeep'}`, "Jeep"},
		{"braces inside strings", `note {"make": "Lexus {LX}"}`, "Lexus {LX}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got carFields
			require.NoError(t, ParseAIJSON(tt.input, &got))
			assert.Equal(t, tt.make, got.Make)
		})
	}
}

func TestParseAIJSON_Errors(t *testing.T) {
	var got carFields
	assert.Error(t, ParseAIJSON("", &got))
	assert.Error(t, ParseAIJSON("   ", &got))
	assert.Error(t, ParseAIJSON("I don't know which car that is.", &got))
	assert.Error(t, ParseAIJSON(`{"make": "Toyota"`, &got))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", "## Value\n\n- ₹5,00,000", "## Value\n\n- ₹5,00,000"},
		{"markdown fence", "```markdown\n## Value\n- a\n```", "## Value\n- a"},
		{"plain fence", "```\n## Value\n```", "## Value"},
		{"surrounding space", "\n\n```md\n# Title\n```\n", "# Title"},
		{"inner code block kept", "Intro\n```\ncode\n```", "Intro\n```\ncode\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestFirstObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, firstObject(`x {"a": {"b": 1}} y {"c": 2}`))
	assert.Equal(t, `{"s": "}"}`, firstObject(`{"s": "}"}`))
	assert.Empty(t, firstObject(`{"open": true`))
	assert.Empty(t, firstObject("no braces"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}
