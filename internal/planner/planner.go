// Package planner crosses role and location variants into a
// priority-ordered search plan.
package planner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/types"
)

// Plan dimensions. The cross-product is intentionally small: each
// combination costs a provider search, and the first few variants carry
// almost all the signal.
const (
	maxRoles     = 5
	maxLocations = 3

	// remoteCombinations are prepended for remote searches so the global
	// "Remote" query runs before any geographic one.
	remoteCombinations = 3
	topPriority        = 10
)

// Planner builds the ordered list of search combinations the collector
// executes.
type Planner struct {
	log *zap.Logger
}

// New creates a search planner.
func New(log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{log: log}
}

// BuildPlan crosses the top role variants with the top location variants.
// Priority is 10 - roleRank - locRank, so the first role in the first
// location runs earliest. Ordering is stable: ties keep insertion order,
// which follows the rank order of the inputs.
//
// For remote searches, the top role variants are first paired with the
// literal "Remote" location at top priority.
func (p *Planner) BuildPlan(roles []string, locations []types.ExpandedLocation, mode types.WorkMode) []types.SearchCombination {
	if len(roles) > maxRoles {
		roles = roles[:maxRoles]
	}
	if len(locations) > maxLocations {
		locations = locations[:maxLocations]
	}

	var plan []types.SearchCombination

	if mode == types.WorkModeRemote {
		n := remoteCombinations
		if n > len(roles) {
			n = len(roles)
		}
		for _, role := range roles[:n] {
			plan = append(plan, types.SearchCombination{
				Role:        role,
				Location:    "Remote",
				Priority:    topPriority,
				WorkModeTag: string(mode),
			})
		}
	}

	for i, role := range roles {
		for j, loc := range locations {
			if mode == types.WorkModeRemote && loc.Name == "Remote" {
				continue
			}
			plan = append(plan, types.SearchCombination{
				Role:        role,
				Location:    loc.Name,
				Priority:    topPriority - i - j,
				WorkModeTag: string(mode),
			})
		}
	}

	sort.SliceStable(plan, func(a, b int) bool {
		return plan[a].Priority > plan[b].Priority
	})

	p.log.Debug("built search plan",
		zap.Int("roles", len(roles)),
		zap.Int("locations", len(locations)),
		zap.Int("combinations", len(plan)),
	)
	return plan
}
