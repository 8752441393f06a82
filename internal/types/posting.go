package types

import (
	"encoding/json"
	"strings"
	"time"
)

// JobPosting is one job advertisement retrieved from a provider. Raw holds
// the provider-native payload for debugging; the pipeline only reads the
// typed fields.
type JobPosting struct {
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	SourceID    string          `json:"source_id"`
	SourceURL   string          `json:"source_url"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Raw         json.RawMessage `json:"-"`
}

// Fingerprint identifies a posting across providers. Two postings with the
// same title and company are considered duplicates regardless of source.
func (p JobPosting) Fingerprint() string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "|" + strings.ToLower(strings.TrimSpace(p.Company))
}
