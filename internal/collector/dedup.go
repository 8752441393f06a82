package collector

import "github.com/helio/keyword-mapper/internal/types"

// Dedup drops postings whose fingerprint has been seen, preserving the
// first occurrence. Stable and O(n); running it on its own output is a
// no-op. The number of dropped postings is returned for the audit.
func Dedup(postings []types.JobPosting) ([]types.JobPosting, int) {
	seen := make(map[string]bool, len(postings))
	out := make([]types.JobPosting, 0, len(postings))
	for _, p := range postings {
		fp := p.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, p)
	}
	return out, len(postings) - len(out)
}
