package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GroqClient implements Client against Groq's OpenAI-compatible chat
// completions API. Used as the fallback extractor when Gemini is exhausted.
type GroqClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Groq defaults. The transport timeout matches the pipeline's per-call cap.
const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultLLMTimeout  = 120 * time.Second
)

// GroqOption customizes a GroqClient.
type GroqOption func(*GroqClient)

// WithGroqBaseURL overrides the API base URL (used by tests).
func WithGroqBaseURL(url string) GroqOption {
	return func(c *GroqClient) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithGroqHTTPClient overrides the HTTP client.
func WithGroqHTTPClient(hc *http.Client) GroqOption {
	return func(c *GroqClient) { c.httpClient = hc }
}

// NewGroqClient creates a Groq-backed client. An empty model selects
// DefaultGroqModel.
func NewGroqClient(apiKey, model string, opts ...GroqOption) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultGroqModel
	}

	c := &GroqClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultGroqBaseURL,
		httpClient: &http.Client{Timeout: defaultLLMTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *groqFormat   `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFormat struct {
	Type string `json:"type"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON sends the prompt as a single user message in JSON mode.
func (c *GroqClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	payload := groqRequest{
		Model:       c.model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		ResponseFormat: &groqFormat{
			Type: "json_object",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return CleanJSONBlock(parsed.Choices[0].Message.Content), nil
}

// Model returns the vendor-qualified model name.
func (c *GroqClient) Model() string {
	return "groq/" + c.model
}

// Close is a no-op; the client holds no persistent connections.
func (c *GroqClient) Close() error {
	return nil
}
