package expansion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRole_OriginalFirst(t *testing.T) {
	e := NewQueryExpander(nil)

	variants := e.ExpandRole("Desenvolvedor Python", "tecnologia")
	require.NotEmpty(t, variants)
	assert.Equal(t, "Desenvolvedor Python", variants[0])
}

func TestExpandRole_TableMatch(t *testing.T) {
	e := NewQueryExpander(nil)

	variants := e.ExpandRole("desenvolvedor", "")
	assert.Contains(t, variants, "Software Engineer")
	assert.Contains(t, variants, "Backend Developer")
}

func TestExpandRole_SeniorityDecoration(t *testing.T) {
	e := NewQueryExpander(nil)

	// No seniority marker in the input: decorated variants appear.
	variants := e.ExpandRole("desenvolvedor", "")
	joined := strings.Join(variants, ";")
	assert.Contains(t, joined, "Pleno")

	// Input already names a level: no decoration.
	variants = e.ExpandRole("desenvolvedor senior", "")
	for _, v := range variants[1:] {
		assert.NotContains(t, v, "Pleno", "variant %q should not add a level", v)
	}
}

func TestExpandRole_GenericFallback(t *testing.T) {
	e := NewQueryExpander(nil)

	variants := e.ExpandRole("Quiropraxista", "")
	assert.Contains(t, variants, "Especialista em Quiropraxista")
	assert.Contains(t, variants, "Analista de Quiropraxista")
	assert.NotContains(t, variants, "Quiropraxista Engineer")
}

func TestExpandRole_TechnicalFallbackAddsEnglish(t *testing.T) {
	e := NewQueryExpander(nil)

	variants := e.ExpandRole("Blockchain", "tecnologia")
	assert.Contains(t, variants, "Blockchain Engineer")
	assert.Contains(t, variants, "Blockchain Developer")
}

func TestExpandRole_CapAndDedupe(t *testing.T) {
	e := NewQueryExpander(nil)

	variants := e.ExpandRole("desenvolvedor", "tecnologia")
	assert.LessOrEqual(t, len(variants), maxRoleVariants)

	seen := make(map[string]bool)
	for _, v := range variants {
		key := strings.ToLower(v)
		assert.False(t, seen[key], "duplicate variant %q", v)
		seen[key] = true
	}
}

func TestExpandRole_Deterministic(t *testing.T) {
	e := NewQueryExpander(nil)

	first := e.ExpandRole("analista", "financeiro")
	second := e.ExpandRole("analista", "financeiro")
	assert.Equal(t, first, second)
}

func TestExpandRole_Empty(t *testing.T) {
	e := NewQueryExpander(nil)
	assert.Nil(t, e.ExpandRole("  ", ""))
}

func TestSuggestRelatedRoles(t *testing.T) {
	e := NewQueryExpander(nil)

	related := e.SuggestRelatedRoles("Desenvolvedor Backend", 2)
	assert.Len(t, related, 2)
	assert.Equal(t, "arquiteto de software", related[0])

	assert.Nil(t, e.SuggestRelatedRoles("Quiropraxista", 3))
	assert.Nil(t, e.SuggestRelatedRoles("desenvolvedor", 0))
}
