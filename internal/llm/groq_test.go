package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClientGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req groqRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultGroqModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"palavras": [{"termo": "Go", "frequencia": 1}]}`}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewGroqClient("test-key", "", WithGroqBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), "extract keywords")
	require.NoError(t, err)
	assert.JSONEq(t, `{"palavras": [{"termo": "Go", "frequencia": 1}]}`, out)
	assert.Equal(t, "groq/"+DefaultGroqModel, client.Model())
}

func TestGroqClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewGroqClient("test-key", "", WithGroqBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGroqClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, err := NewGroqClient("test-key", "", WithGroqBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewGroqClientRequiresKey(t *testing.T) {
	_, err := NewGroqClient("", "")
	assert.Error(t, err)
}
