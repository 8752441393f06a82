package types

import "time"

// TermCategory buckets an extracted term by what kind of skill it names.
type TermCategory string

// Term categories. Terms that match none of the curated word lists fall
// into CategoryOther.
const (
	CategoryLanguage    TermCategory = "language"
	CategoryFramework   TermCategory = "framework"
	CategoryTool        TermCategory = "tool"
	CategoryMethodology TermCategory = "methodology"
	CategorySoftSkill   TermCategory = "soft_skill"
	CategoryOther       TermCategory = "other"
)

// TermTier is the coverage band a term falls into.
type TermTier string

// Tier thresholds follow the methodology: a term mentioned by 70% of
// postings is essential, 40-70% important, below that complementary.
const (
	TierEssential     TermTier = "essential"
	TierImportant     TermTier = "important"
	TierComplementary TermTier = "complementary"
)

// Coverage thresholds for tier assignment.
const (
	EssentialCoverage = 0.70
	ImportantCoverage = 0.40
)

// TierFor maps a coverage fraction to its tier.
func TierFor(coverage float64) TermTier {
	switch {
	case coverage >= EssentialCoverage:
		return TierEssential
	case coverage >= ImportantCoverage:
		return TierImportant
	default:
		return TierComplementary
	}
}

// ExtractedTerm is one normalized keyword with its consolidated frequency.
type ExtractedTerm struct {
	Term        string       `json:"term"`
	Frequency   int          `json:"frequency"`
	Category    TermCategory `json:"category"`
	Tier        TermTier     `json:"tier"`
	CoveragePct float64      `json:"coverage_pct"`
}

// RankedKeywordMap is the final output of a run: terms ordered by frequency
// descending (ties broken by term ascending), plus run metadata.
type RankedKeywordMap struct {
	Terms            []ExtractedTerm `json:"terms"`
	Top10            []ExtractedTerm `json:"top_10"`
	PostingsAnalyzed int             `json:"postings_analyzed"`
	UniqueTerms      int             `json:"unique_terms"`
	ModelUsed        string          `json:"model_used"`
	DurationS        float64         `json:"duration_s"`
	Cancelled        bool            `json:"cancelled,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
}
