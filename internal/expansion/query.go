// Package expansion turns a single target role and base location into the
// ranked variant lists the search planner crosses into combinations.
package expansion

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// maxRoleVariants caps the expansion to keep the search plan affordable.
const maxRoleVariants = 15

// QueryExpander produces role-name variants: synonyms, seniority-decorated
// forms, and bilingual pairs. Expansion is deterministic.
type QueryExpander struct {
	log *zap.Logger
}

// NewQueryExpander creates a query expander.
func NewQueryExpander(log *zap.Logger) *QueryExpander {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryExpander{log: log}
}

// ExpandRole expands a role into up to maxRoleVariants variants. The
// original input is always first; remaining variants are ordered by
// estimated specificity (composite phrases before single words), ties by
// insertion order. Duplicates are removed case-insensitively.
func (e *QueryExpander) ExpandRole(role, area string) []string {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil
	}
	roleLower := strings.ToLower(role)

	var variants []string
	matched := false

	// 1. Direct table lookup, longest base term first.
	for _, baseTerm := range roleTableOrder() {
		if strings.Contains(roleLower, baseTerm) {
			list := roleVariants[baseTerm]
			variants = append(variants, list...)

			// 2. Seniority decoration when the input names no level.
			if detectSeniority(roleLower) == "" {
				top := list
				if len(top) > 3 {
					top = top[:3]
				}
				for _, v := range top {
					variants = append(variants, v+" Pleno", v+" Senior")
				}
			}
			matched = true
			break
		}
	}

	// 3. Area-term decoration on the top-2 variants.
	if area != "" {
		if prefixes, ok := areaPrefixes[strings.ToLower(strings.TrimSpace(area))]; ok {
			decorate := variants
			if len(decorate) > 2 {
				decorate = decorate[:2]
			}
			if len(decorate) == 0 {
				decorate = []string{role}
			}
			for _, prefix := range prefixes[:min(2, len(prefixes))] {
				for _, v := range decorate {
					variants = append(variants, prefix+" "+v)
				}
			}
		}
	}

	// 4. Generic fallback when nothing matched the table.
	if !matched {
		base := stripSeniority(role)
		variants = append(variants,
			"Especialista em "+base,
			"Analista de "+base,
			"Consultor de "+base,
		)
		if technicalAreas[strings.ToLower(strings.TrimSpace(area))] {
			variants = append(variants,
				base+" Engineer",
				base+" Developer",
				base+" Specialist",
			)
		}
	}

	ordered := orderBySpecificity(variants)

	// Original first, then dedupe case-insensitively.
	result := make([]string, 0, maxRoleVariants)
	seen := map[string]bool{roleLower: true}
	result = append(result, role)
	for _, v := range ordered {
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, v)
		if len(result) == maxRoleVariants {
			break
		}
	}

	e.log.Debug("expanded role",
		zap.String("role", role),
		zap.Int("variants", len(result)),
	)
	return result
}

// SuggestRelatedRoles returns adjacent titles that widen a search, up to
// limit entries. Unknown roles get no suggestions.
func (e *QueryExpander) SuggestRelatedRoles(role string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	roleLower := strings.ToLower(role)
	for _, base := range relatedTableOrder() {
		if strings.Contains(roleLower, base) {
			related := relatedRoles[base]
			if len(related) > limit {
				related = related[:limit]
			}
			return append([]string(nil), related...)
		}
	}
	return nil
}

// detectSeniority returns the level named in the role, or "".
func detectSeniority(roleLower string) string {
	for level, markers := range seniorityMarkers {
		for _, marker := range markers {
			if strings.Contains(roleLower, marker) {
				return level
			}
		}
	}
	return ""
}

func stripSeniority(role string) string {
	out := role
	for _, marker := range []string{"junior", "júnior", "pleno", "senior", "sênior"} {
		out = removeWordFold(out, marker)
	}
	out = strings.Join(strings.Fields(out), " ")
	if out == "" {
		return role
	}
	return out
}

func removeWordFold(s, word string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f, word) {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// orderBySpecificity sorts composite phrases before single words; stable so
// ties keep insertion order.
func orderBySpecificity(variants []string) []string {
	out := append([]string(nil), variants...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(strings.Fields(out[i])) > len(strings.Fields(out[j]))
	})
	return out
}

// roleTableOrder iterates base terms longest-first so "desenvolvedor"
// cannot be shadowed by a shorter term contained in it.
func roleTableOrder() []string {
	keys := make([]string, 0, len(roleVariants))
	for k := range roleVariants {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func relatedTableOrder() []string {
	keys := make([]string, 0, len(relatedRoles))
	for k := range relatedRoles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
