package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helio/keyword-mapper/internal/types"
)

func sampleMap() *types.RankedKeywordMap {
	terms := []types.ExtractedTerm{
		{Term: "React", Frequency: 7, Category: types.CategoryFramework, Tier: types.TierEssential, CoveragePct: 0.7},
		{Term: "TypeScript", Frequency: 5, Category: types.CategoryLanguage, Tier: types.TierImportant, CoveragePct: 0.5},
		{Term: "Docker", Frequency: 3, Category: types.CategoryTool, Tier: types.TierComplementary, CoveragePct: 0.3},
	}
	return &types.RankedKeywordMap{
		Terms:            terms,
		Top10:            terms,
		PostingsAnalyzed: 10,
		UniqueTerms:      3,
		ModelUsed:        "gemini-2.0-flash",
		DurationS:        42.5,
	}
}

func TestPrintKeywordMap(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeywordMap(sampleMap())

	out := buf.String()
	assert.Contains(t, out, "KEYWORD MAP")
	assert.Contains(t, out, "Postings analyzed: 10")
	assert.Contains(t, out, "Essential (1):")
	assert.Contains(t, out, "React")
	assert.Contains(t, out, "Important (1):")
	assert.Contains(t, out, "Complementary (1):")
	assert.NotContains(t, out, "cancelled")
}

func TestPrintKeywordMap_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	m := sampleMap()
	m.Cancelled = true
	p.PrintKeywordMap(m)

	assert.Contains(t, buf.String(), "cancelled")
}

func TestPrintKeywordMap_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeywordMap(&types.RankedKeywordMap{})

	assert.Contains(t, buf.String(), "No terms extracted.")
}

func TestPrintKeywordMap_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeywordMap(nil)

	assert.Contains(t, buf.String(), "No terms extracted.")
}

func TestPrintTop10(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTop10(sampleMap())

	out := buf.String()
	assert.Contains(t, out, "TOP TERMS")
	assert.Contains(t, out, "#1  React")
	assert.Contains(t, out, "#3  Docker")
}

func TestPrintTop10_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTop10(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRunAudit(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	audit := &types.RunMetadata{Deduplicated: 4}
	audit.RecordSuccess("Frontend Developer", "São Paulo, SP", 25, 1)
	audit.RecordFailure("Frontend Developer", "Campinas, SP", 3, assert.AnError)

	p.PrintRunAudit(audit)

	out := buf.String()
	assert.Contains(t, out, "COLLECTION AUDIT")
	assert.Contains(t, out, "succeeded: 1")
	assert.Contains(t, out, "Duplicates dropped: 4")
	assert.Contains(t, out, "✓ Frontend Developer @ São Paulo, SP: 25 postings")
	assert.Contains(t, out, "✗ Frontend Developer @ Campinas, SP: 0 postings")
}

func TestPrintRunAudit_EmptyIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunAudit(&types.RunMetadata{})

	assert.Empty(t, buf.String())
}
