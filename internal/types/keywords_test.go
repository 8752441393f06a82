package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name     string
		coverage float64
		want     TermTier
	}{
		{"full coverage", 1.0, TierEssential},
		{"exact essential boundary", 0.70, TierEssential},
		{"just below essential", 0.699, TierImportant},
		{"mid important", 0.5, TierImportant},
		{"exact important boundary", 0.40, TierImportant},
		{"just below important", 0.399, TierComplementary},
		{"zero coverage", 0.0, TierComplementary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.coverage))
		})
	}
}

func TestJobPostingFingerprint(t *testing.T) {
	a := JobPosting{Title: "Backend Engineer", Company: "Acme", SourceID: "apify"}
	b := JobPosting{Title: "backend engineer", Company: "ACME", SourceID: "adzuna"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, "backend engineer|acme", a.Fingerprint())

	c := JobPosting{Title: "Backend Engineer", Company: "Other"}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestJobPostingFingerprintTrimsWhitespace(t *testing.T) {
	a := JobPosting{Title: "  Data Analyst ", Company: " Globex "}
	assert.Equal(t, "data analyst|globex", a.Fingerprint())
}

func TestParseWorkMode(t *testing.T) {
	tests := []struct {
		input string
		want  WorkMode
		ok    bool
	}{
		{"remote", WorkModeRemote, true},
		{"Remoto", WorkModeRemote, true},
		{"hybrid", WorkModeHybrid, true},
		{"híbrido", WorkModeHybrid, true},
		{"hibrido", WorkModeHybrid, true},
		{"onsite", WorkModeOnsite, true},
		{"presencial", WorkModeOnsite, true},
		{"  REMOTE  ", WorkModeRemote, true},
		{"freelance", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseWorkMode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
