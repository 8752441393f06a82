// Package extraction turns posting descriptions into keyword frequency
// counts using batched LLM calls with provider fallback.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/llm"
	"github.com/helio/keyword-mapper/internal/prompts"
	"github.com/helio/keyword-mapper/internal/types"
)

const (
	// DefaultBatchSize splits large posting sets into per-call batches.
	DefaultBatchSize = 10

	// singleCallThreshold: posting sets this small go out in one call.
	singleCallThreshold = 20

	// descriptionLimit truncates each posting's description so a batch
	// stays within the model's effective context.
	descriptionLimit = 200

	// consecutiveFailureLimit switches to the next provider after this
	// many failures in a row.
	consecutiveFailureLimit = 3

	// interBatchPause paces calls to stay under provider rate limits.
	interBatchPause = time.Second
)

// batchResponse is the JSON contract every provider must satisfy.
type batchResponse struct {
	Palavras []struct {
		Termo      string `json:"termo"`
		Frequencia int    `json:"frequencia"`
	} `json:"palavras"`
}

const responseSchema = `{
	"type": "object",
	"required": ["palavras"],
	"properties": {
		"palavras": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["termo", "frequencia"],
				"properties": {
					"termo": {"type": "string", "minLength": 1},
					"frequencia": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

// ProgressFunc observes batch completion. done counts attempted batches,
// succeeded counts parsed ones.
type ProgressFunc func(done, total, succeeded int)

// Result carries the merged term counts plus extraction metadata.
type Result struct {
	Counts        map[string]int
	ModelUsed     string
	BatchesTotal  int
	BatchesFailed int
	Errors        []string
}

// Extractor runs batched keyword extraction over an ordered list of LLM
// providers, largest-context model first.
type Extractor struct {
	clients   []llm.Client
	batchSize int
	pause     time.Duration
	schema    *gojsonschema.Schema
	log       *zap.Logger

	onProgress ProgressFunc
}

// Option configures the extractor.
type Option func(*Extractor)

// WithBatchSize overrides the per-call batch size.
func WithBatchSize(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithPause overrides the inter-batch pacing delay.
func WithPause(d time.Duration) Option {
	return func(e *Extractor) {
		if d >= 0 {
			e.pause = d
		}
	}
}

// WithProgress registers a batch-completion observer.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Extractor) { e.onProgress = fn }
}

// New creates an extractor over the given providers, in preference order.
func New(clients []llm.Client, log *zap.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is
		// a programming error.
		panic(fmt.Sprintf("invalid extraction response schema: %v", err))
	}
	e := &Extractor{
		clients:   clients,
		batchSize: DefaultBatchSize,
		pause:     interBatchPause,
		schema:    schema,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs extraction for role over postings. Term counts from all
// batches are merged case-insensitively. Fails with *UnavailableError when
// every provider is exhausted or fewer than half the batches succeed.
//
// An empty posting list yields an empty result without any LLM call.
func (e *Extractor) Extract(ctx context.Context, role string, postings []types.JobPosting) (*Result, error) {
	result := &Result{Counts: make(map[string]int)}
	if len(postings) == 0 {
		return result, nil
	}
	if len(e.clients) == 0 {
		return nil, &UnavailableError{Message: "no LLM providers configured"}
	}

	batches := splitBatches(postings, e.batchSize)
	result.BatchesTotal = len(batches)

	provider := 0
	consecutiveFailures := 0
	succeeded := 0

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 && e.pause > 0 {
			select {
			case <-time.After(e.pause):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		counts, usedProvider, err := e.extractBatch(ctx, role, batch, provider, &consecutiveFailures)
		provider = usedProvider
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			batchErr := &BatchError{Batch: i + 1, Message: "extraction failed", Cause: err}
			result.BatchesFailed++
			result.Errors = append(result.Errors, batchErr.Error())
			e.log.Warn("extraction batch failed", zap.Int("batch", i+1), zap.Error(err))
		} else {
			succeeded++
			for term, freq := range counts {
				mergeTerm(result.Counts, term, freq)
			}
			result.ModelUsed = e.clients[provider].Model()
		}

		if e.onProgress != nil {
			e.onProgress(i+1, len(batches), succeeded)
		}
	}

	if succeeded*2 < len(batches) {
		return nil, &UnavailableError{
			Message: fmt.Sprintf("only %d of %d batches succeeded", succeeded, len(batches)),
		}
	}
	return result, nil
}

// extractBatch extracts one batch, walking the provider list on repeated
// failure: three consecutive failures burn the current provider and the
// batch is retried on the next one. The returned index is the provider
// that ended up current, so later batches stick with a working provider.
// When every provider is exhausted the batch's last error is returned and
// the batch is skipped by the caller.
func (e *Extractor) extractBatch(ctx context.Context, role string, batch []types.JobPosting, provider int, consecutiveFailures *int) (map[string]int, int, error) {
	prompt, err := e.buildPrompt(role, batch)
	if err != nil {
		return nil, provider, err
	}

	var lastErr error
	for {
		client := e.clients[provider]
		raw, err := client.GenerateJSON(ctx, prompt)
		var counts map[string]int
		if err == nil {
			counts, err = e.parseResponse(raw)
		}
		if err == nil {
			*consecutiveFailures = 0
			return counts, provider, nil
		}
		if ctx.Err() != nil {
			return nil, provider, ctx.Err()
		}

		lastErr = err
		*consecutiveFailures++
		e.log.Warn("provider call failed",
			zap.String("model", client.Model()),
			zap.Int("consecutive_failures", *consecutiveFailures),
			zap.Error(err),
		)
		if *consecutiveFailures < consecutiveFailureLimit {
			if e.pause > 0 {
				select {
				case <-time.After(e.pause):
				case <-ctx.Done():
					return nil, provider, ctx.Err()
				}
			}
			continue
		}

		// Three failures in a row burn the current provider for the rest
		// of the run.
		if provider+1 >= len(e.clients) {
			return nil, provider, lastErr
		}
		provider++
		*consecutiveFailures = 0
		e.log.Info("falling back to next LLM provider",
			zap.String("model", e.clients[provider].Model()),
		)
	}
}

func (e *Extractor) buildPrompt(role string, batch []types.JobPosting) (string, error) {
	template, err := prompts.Get("extraction.json", "extract-keywords-batch")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, p := range batch {
		fmt.Fprintf(&b, "%d. Title: %s | Company: %s | Description: %s\n",
			i+1, p.Title, p.Company, truncate(p.Description, descriptionLimit))
	}

	return prompts.Format(template, map[string]string{
		"Count": strconv.Itoa(len(batch)),
		"Role":  role,
		"Batch": strings.TrimRight(b.String(), "\n"),
	}), nil
}

// parseResponse decodes one LLM reply. Code fences are stripped; when the
// body still fails to parse, the substring between the first brace and its
// match is rescued and re-parsed.
func (e *Extractor) parseResponse(raw string) (map[string]int, error) {
	cleaned := llm.CleanJSONBlock(raw)

	var parsed batchResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		rescued := llm.ExtractJSONObject(cleaned)
		if rescued == "" {
			return nil, fmt.Errorf("no JSON object in response: %w", err)
		}
		if err := json.Unmarshal([]byte(rescued), &parsed); err != nil {
			return nil, fmt.Errorf("parse rescued JSON: %w", err)
		}
		cleaned = rescued
	}

	validation, err := e.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	if !validation.Valid() {
		var details []string
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("response violates contract: %s", strings.Join(details, "; "))
	}

	counts := make(map[string]int, len(parsed.Palavras))
	for _, p := range parsed.Palavras {
		mergeTerm(counts, p.Termo, p.Frequencia)
	}
	return counts, nil
}

// mergeTerm accumulates a frequency under the term's canonical key. Terms
// are compared case-insensitively after trimming; the first-seen casing is
// kept for display.
func mergeTerm(counts map[string]int, term string, freq int) {
	term = strings.TrimSpace(term)
	if term == "" || freq <= 0 {
		return
	}
	for existing := range counts {
		if strings.EqualFold(existing, term) {
			counts[existing] += freq
			return
		}
	}
	counts[term] = freq
}

// splitBatches keeps small sets in a single call and otherwise splits into
// contiguous fixed-size batches.
func splitBatches(postings []types.JobPosting, batchSize int) [][]types.JobPosting {
	if len(postings) <= singleCallThreshold {
		return [][]types.JobPosting{postings}
	}
	var batches [][]types.JobPosting
	for start := 0; start < len(postings); start += batchSize {
		end := start + batchSize
		if end > len(postings) {
			end = len(postings)
		}
		batches = append(batches, postings[start:end])
	}
	return batches
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
