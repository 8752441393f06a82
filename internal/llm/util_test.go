package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"palavras": []}`,
			want:  `{"palavras": []}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"palavras\": []}\n```",
			want:  `{"palavras": []}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"palavras\": []}\n```",
			want:  `{"palavras": []}`,
		},
		{
			name:  "fence with language identifier",
			input: "```javascript\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n{\"a\": 1}\n  ",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "object with prose around it",
			input: `Here you go: {"palavras": [{"termo": "Go", "frequencia": 2}]} Hope that helps!`,
			want:  `{"palavras": [{"termo": "Go", "frequencia": 2}]}`,
		},
		{
			name:  "nested objects",
			input: `x {"a": {"b": 1}} y`,
			want:  `{"a": {"b": 1}}`,
		},
		{
			name:  "braces inside strings ignored",
			input: `{"a": "va{lue}"}`,
			want:  `{"a": "va{lue}"}`,
		},
		{
			name:  "no object",
			input: "nothing here",
			want:  "",
		},
		{
			name:  "unbalanced",
			input: `{"a": 1`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	input := `The locations are: [{"name": "São Paulo, SP"}] as requested.`
	assert.Equal(t, `[{"name": "São Paulo, SP"}]`, ExtractJSONArray(input))

	assert.Empty(t, ExtractJSONArray("no array"))
}
