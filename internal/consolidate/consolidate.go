// Package consolidate turns raw term counts into the final ranked keyword
// map: coverage, category, tier, and ordering.
package consolidate

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/helio/keyword-mapper/internal/types"
)

// topPrefixSize is the distinguished prefix surfaced for consumers that
// only want the headline terms.
const topPrefixSize = 10

// Input carries everything the consolidator needs from the earlier stages.
type Input struct {
	Counts           map[string]int
	PostingsAnalyzed int
	ModelUsed        string
	Duration         time.Duration
	Cancelled        bool
}

// Build produces the ranked keyword map. Terms are ordered by frequency
// descending with ties broken by term ascending, case-insensitively; tiers
// follow the coverage thresholds. Deterministic: the same input always
// yields the same output.
func Build(in Input) types.RankedKeywordMap {
	terms := make([]types.ExtractedTerm, 0, len(in.Counts))
	for term, freq := range in.Counts {
		coverage := 0.0
		if in.PostingsAnalyzed > 0 {
			coverage = float64(freq) / float64(in.PostingsAnalyzed)
			if coverage > 1 {
				coverage = 1
			}
			// One decimal place in percentage terms.
			coverage = math.Round(coverage*1000) / 1000
		}
		terms = append(terms, types.ExtractedTerm{
			Term:        term,
			Frequency:   freq,
			Category:    Categorize(term),
			Tier:        types.TierFor(coverage),
			CoveragePct: coverage,
		})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Frequency != terms[j].Frequency {
			return terms[i].Frequency > terms[j].Frequency
		}
		ti, tj := strings.ToLower(terms[i].Term), strings.ToLower(terms[j].Term)
		if ti != tj {
			return ti < tj
		}
		return terms[i].Term < terms[j].Term
	})

	top := terms
	if len(top) > topPrefixSize {
		top = top[:topPrefixSize]
	}

	return types.RankedKeywordMap{
		Terms:            terms,
		Top10:            top,
		PostingsAnalyzed: in.PostingsAnalyzed,
		UniqueTerms:      len(terms),
		ModelUsed:        in.ModelUsed,
		DurationS:        in.Duration.Seconds(),
		Cancelled:        in.Cancelled,
		GeneratedAt:      time.Now().UTC(),
	}
}

// Rebuild re-consolidates an existing map, as when merging partial output.
// Building from a map's own term frequencies reproduces the same ranks and
// tiers.
func Rebuild(m types.RankedKeywordMap) types.RankedKeywordMap {
	counts := make(map[string]int, len(m.Terms))
	for _, t := range m.Terms {
		counts[t.Term] = t.Frequency
	}
	out := Build(Input{
		Counts:           counts,
		PostingsAnalyzed: m.PostingsAnalyzed,
		ModelUsed:        m.ModelUsed,
		Cancelled:        m.Cancelled,
	})
	out.DurationS = m.DurationS
	return out
}
