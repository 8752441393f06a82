package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helio/keyword-mapper/internal/llm"
	"github.com/helio/keyword-mapper/internal/types"
)

// scriptedLLM replays responses in order; after the script runs out it
// repeats the last entry. An entry may be a response string or an error.
type scriptedLLM struct {
	name    string
	script  []any
	calls   int
	prompts []string
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	switch v := s.script[idx].(type) {
	case error:
		return "", v
	case string:
		return v, nil
	default:
		return "", errors.New("script exhausted")
	}
}

func (s *scriptedLLM) Model() string { return s.name }
func (s *scriptedLLM) Close() error  { return nil }

func postings(n int) []types.JobPosting {
	out := make([]types.JobPosting, n)
	for i := range out {
		out[i] = types.JobPosting{
			Title:       fmt.Sprintf("Engineer %d", i),
			Company:     fmt.Sprintf("Company %d", i),
			Description: fmt.Sprintf("Posting %d wants Go and Docker", i),
		}
	}
	return out
}

const validResponse = `{"palavras": [{"termo": "React", "frequencia": 7}, {"termo": "Docker", "frequencia": 3}]}`

func TestExtract_EmptyInput(t *testing.T) {
	ext := New(nil, nil)
	result, err := ext.Extract(context.Background(), "dev", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Counts)
}

func TestExtract_SingleCallForSmallSets(t *testing.T) {
	client := &scriptedLLM{name: "gemini/flash", script: []any{validResponse}}
	ext := New(clients(client), nil, WithPause(0))

	result, err := ext.Extract(context.Background(), "desenvolvedor", postings(15))
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls, "15 postings fit in one call")
	assert.Equal(t, 7, result.Counts["React"])
	assert.Equal(t, 3, result.Counts["Docker"])
	assert.Equal(t, "gemini/flash", result.ModelUsed)
	assert.Equal(t, 1, result.BatchesTotal)
}

func TestExtract_BatchesLargeSets(t *testing.T) {
	client := &scriptedLLM{name: "gemini/flash", script: []any{validResponse}}
	ext := New(clients(client), nil, WithPause(0))

	result, err := ext.Extract(context.Background(), "dev", postings(25))
	require.NoError(t, err)

	assert.Equal(t, 3, client.calls, "25 postings split into 10+10+5")
	assert.Equal(t, 3, result.BatchesTotal)
	// Counts accumulate across batches.
	assert.Equal(t, 21, result.Counts["React"])
}

func TestExtract_TruncatesDescriptions(t *testing.T) {
	client := &scriptedLLM{name: "m", script: []any{validResponse}}
	ext := New(clients(client), nil, WithPause(0))

	long := types.JobPosting{
		Title:       "Engineer",
		Company:     "Acme",
		Description: strings.Repeat("x", 500),
	}
	_, err := ext.Extract(context.Background(), "dev", []types.JobPosting{long})
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.NotContains(t, client.prompts[0], strings.Repeat("x", 201))
	assert.Contains(t, client.prompts[0], strings.Repeat("x", 200))
}

func TestExtract_CodeFenceAndBraceRescue(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	chatty := "Here are the keywords you asked for: " + validResponse + " hope this helps!"

	for name, response := range map[string]string{"fenced": fenced, "chatty": chatty} {
		t.Run(name, func(t *testing.T) {
			client := &scriptedLLM{name: "m", script: []any{response}}
			ext := New(clients(client), nil, WithPause(0))

			result, err := ext.Extract(context.Background(), "dev", postings(3))
			require.NoError(t, err)
			assert.Equal(t, 7, result.Counts["React"])
		})
	}
}

func TestExtract_MergesTermsCaseInsensitively(t *testing.T) {
	first := `{"palavras": [{"termo": "React", "frequencia": 4}]}`
	second := `{"palavras": [{"termo": " react ", "frequencia": 2}]}`
	client := &scriptedLLM{name: "m", script: []any{first, second, second}}
	ext := New(clients(client), nil, WithPause(0), WithBatchSize(10))

	result, err := ext.Extract(context.Background(), "dev", postings(25))
	require.NoError(t, err)

	assert.Equal(t, 8, result.Counts["React"], "casings merge under the first-seen key")
	assert.Len(t, result.Counts, 1)
}

func TestExtract_ProviderFallback(t *testing.T) {
	timeout := errors.New("deadline exceeded")
	primary := &scriptedLLM{name: "gemini/flash", script: []any{timeout, timeout, timeout}}
	secondary := &scriptedLLM{name: "groq/llama", script: []any{validResponse}}
	ext := New(clients(primary, secondary), nil, WithPause(0))

	result, err := ext.Extract(context.Background(), "dev", postings(5))
	require.NoError(t, err)

	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, "groq/llama", result.ModelUsed)
	assert.Equal(t, 7, result.Counts["React"])
}

func TestExtract_AllProvidersExhausted(t *testing.T) {
	garbage := "not json at all"
	primary := &scriptedLLM{name: "a", script: []any{garbage}}
	secondary := &scriptedLLM{name: "b", script: []any{garbage}}
	ext := New(clients(primary, secondary), nil, WithPause(0))

	_, err := ext.Extract(context.Background(), "dev", postings(5))
	require.Error(t, err)

	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 3, secondary.calls)
}

func TestExtract_MinimumBatchSuccessRate(t *testing.T) {
	// 3 batches; only the first parses. 1/3 < 50% fails the run even
	// though some terms were extracted.
	client := &scriptedLLM{name: "m", script: []any{
		validResponse,
		"garbage", "garbage", "garbage",
		"garbage", "garbage", "garbage",
	}}
	ext := New(clients(client), nil, WithPause(0))

	_, err := ext.Extract(context.Background(), "dev", postings(25))
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestExtract_SkipsFailedBatchWhenMajoritySucceeds(t *testing.T) {
	rejected := `{"palavras": [{"termo": "", "frequencia": -1}]}`
	client := &scriptedLLM{name: "m", script: []any{
		validResponse,
		rejected, rejected, rejected,
		validResponse,
	}}
	ext := New(clients(client), nil, WithPause(0))

	result, err := ext.Extract(context.Background(), "dev", postings(25))
	require.NoError(t, err)

	assert.Equal(t, 1, result.BatchesFailed)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "batch 2")
	assert.Equal(t, 14, result.Counts["React"])
}

func TestExtract_SchemaRejectsWrongShape(t *testing.T) {
	client := &scriptedLLM{name: "m", script: []any{`{"keywords": ["React"]}`}}
	ext := New(clients(client), nil, WithPause(0))

	_, err := ext.Extract(context.Background(), "dev", postings(5))
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestExtract_Progress(t *testing.T) {
	client := &scriptedLLM{name: "m", script: []any{validResponse}}
	var events [][3]int
	ext := New(clients(client), nil, WithPause(0), WithProgress(func(done, total, succeeded int) {
		events = append(events, [3]int{done, total, succeeded})
	}))

	_, err := ext.Extract(context.Background(), "dev", postings(25))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, [3]int{1, 3, 1}, events[0])
	assert.Equal(t, [3]int{3, 3, 3}, events[2])
}

func TestExtract_Cancellation(t *testing.T) {
	client := &scriptedLLM{name: "m", script: []any{validResponse}}
	ext := New(clients(client), nil, WithPause(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.Extract(ctx, "dev", postings(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_NoProviders(t *testing.T) {
	ext := New(nil, nil)
	_, err := ext.Extract(context.Background(), "dev", postings(5))
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func clients(list ...*scriptedLLM) []llm.Client {
	out := make([]llm.Client, len(list))
	for i, c := range list {
		out[i] = c
	}
	return out
}
