// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/helio/keyword-mapper/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxTermsToShow is the default number of terms to display per tier
	maxTermsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintKeywordMap outputs the ranked keyword map grouped by tier.
func (p *Printer) PrintKeywordMap(result *types.RankedKeywordMap) {
	if result == nil || len(result.Terms) == 0 {
		p.printBox("KEYWORD MAP", "No terms extracted.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings analyzed: %d\n", result.PostingsAnalyzed))
	sb.WriteString(fmt.Sprintf("Unique terms:      %d\n", result.UniqueTerms))
	sb.WriteString(fmt.Sprintf("Model:             %s\n", result.ModelUsed))
	sb.WriteString(fmt.Sprintf("Duration:          %.1fs\n", result.DurationS))
	if result.Cancelled {
		sb.WriteString("⚠ Run was cancelled; results are partial.\n")
	}

	for _, tier := range []types.TermTier{types.TierEssential, types.TierImportant, types.TierComplementary} {
		terms := termsInTier(result.Terms, tier)
		if len(terms) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d):\n", tierLabel(tier), len(terms)))
		count := min(len(terms), maxTermsToShow)
		for i := 0; i < count; i++ {
			t := terms[i]
			sb.WriteString(fmt.Sprintf("  %2d× %s", t.Frequency, t.Term))
			if t.Category != types.CategoryOther {
				sb.WriteString(fmt.Sprintf(" [%s]", t.Category))
			}
			sb.WriteString(fmt.Sprintf(" (%.0f%%)\n", t.CoveragePct*100))
		}
		if len(terms) > maxTermsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(terms)-maxTermsToShow))
		}
	}

	p.printBox("KEYWORD MAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTop10 outputs the highest-frequency terms as a flat ranking.
func (p *Printer) PrintTop10(result *types.RankedKeywordMap) {
	if result == nil || len(result.Top10) == 0 {
		return
	}

	var sb strings.Builder
	for i, t := range result.Top10 {
		sb.WriteString(fmt.Sprintf("#%-2d %s", i+1, t.Term))
		sb.WriteString(fmt.Sprintf("  (%d postings, %s)", t.Frequency, t.Tier))
		if i < len(result.Top10)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TOP TERMS", sb.String())
}

// PrintRunAudit outputs the collection audit trail: every role x location
// combination tried, with posting counts and absorbed errors.
func (p *Printer) PrintRunAudit(audit *types.RunMetadata) {
	if audit == nil || len(audit.Combinations) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Combinations tried: %d (succeeded: %d)\n", len(audit.Combinations), audit.Succeeded()))
	sb.WriteString(fmt.Sprintf("Duplicates dropped: %d\n\n", audit.Deduplicated))

	count := min(len(audit.Combinations), maxTermsToShow)
	for i := 0; i < count; i++ {
		c := audit.Combinations[i]
		mark := "✓"
		if !c.Succeeded {
			mark = "✗"
		}
		combo := fmt.Sprintf("%s @ %s", c.Role, c.Location)
		if len(combo) > 38 {
			combo = combo[:35] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s %s: %d postings\n", mark, combo, c.Postings))
		if c.Error != "" {
			detail := c.Error
			if len(detail) > 45 {
				detail = detail[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", detail))
		}
	}

	if len(audit.Combinations) > maxTermsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(audit.Combinations)-maxTermsToShow))
	}

	p.printBox("COLLECTION AUDIT", strings.TrimSuffix(sb.String(), "\n"))
}

func termsInTier(terms []types.ExtractedTerm, tier types.TermTier) []types.ExtractedTerm {
	var out []types.ExtractedTerm
	for _, t := range terms {
		if t.Tier == tier {
			out = append(out, t)
		}
	}
	return out
}

func tierLabel(tier types.TermTier) string {
	switch tier {
	case types.TierEssential:
		return "Essential"
	case types.TierImportant:
		return "Important"
	default:
		return "Complementary"
	}
}
