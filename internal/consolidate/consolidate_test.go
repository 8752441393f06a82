package consolidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helio/keyword-mapper/internal/types"
)

func TestBuild_TiersAndCoverage(t *testing.T) {
	out := Build(Input{
		Counts:           map[string]int{"React": 7, "TypeScript": 5, "Docker": 3},
		PostingsAnalyzed: 10,
		ModelUsed:        "gemini/flash",
		Duration:         90 * time.Second,
	})

	require.Len(t, out.Terms, 3)
	assert.Equal(t, 3, out.UniqueTerms)
	assert.Equal(t, 10, out.PostingsAnalyzed)
	assert.Equal(t, 90.0, out.DurationS)

	react := out.Terms[0]
	assert.Equal(t, "React", react.Term)
	assert.Equal(t, 7, react.Frequency)
	assert.InDelta(t, 0.7, react.CoveragePct, 1e-9)
	assert.Equal(t, types.TierEssential, react.Tier)
	assert.Equal(t, types.CategoryFramework, react.Category)

	ts := out.Terms[1]
	assert.InDelta(t, 0.5, ts.CoveragePct, 1e-9)
	assert.Equal(t, types.TierImportant, ts.Tier)
	assert.Equal(t, types.CategoryLanguage, ts.Category)

	docker := out.Terms[2]
	assert.InDelta(t, 0.3, docker.CoveragePct, 1e-9)
	assert.Equal(t, types.TierComplementary, docker.Tier)
	assert.Equal(t, types.CategoryTool, docker.Category)
}

func TestBuild_Ordering(t *testing.T) {
	out := Build(Input{
		Counts:           map[string]int{"Zookeeper": 5, "Airflow": 5, "Kafka": 9},
		PostingsAnalyzed: 10,
	})

	require.Len(t, out.Terms, 3)
	assert.Equal(t, "Kafka", out.Terms[0].Term)
	assert.Equal(t, "Airflow", out.Terms[1].Term, "ties break by term ascending")
	assert.Equal(t, "Zookeeper", out.Terms[2].Term)
}

func TestBuild_OrderingIgnoresCase(t *testing.T) {
	out := Build(Input{
		Counts:           map[string]int{"Zabbix": 5, "ansible": 5},
		PostingsAnalyzed: 10,
	})

	require.Len(t, out.Terms, 2)
	assert.Equal(t, "ansible", out.Terms[0].Term, "tie-break compares terms case-insensitively")
	assert.Equal(t, "Zabbix", out.Terms[1].Term)
}

func TestBuild_TopPrefix(t *testing.T) {
	counts := map[string]int{}
	for _, term := range []string{
		"Python", "Java", "Go", "Docker", "Kubernetes", "AWS",
		"React", "Angular", "SQL", "Git", "Linux", "Kafka",
	} {
		counts[term] = len(term)
	}

	out := Build(Input{Counts: counts, PostingsAnalyzed: 50})
	assert.Len(t, out.Terms, 12)
	assert.Len(t, out.Top10, 10)
	assert.Equal(t, out.Terms[:10], out.Top10, "top-10 is a prefix of the full list")
}

func TestBuild_CoverageBounds(t *testing.T) {
	// Frequencies can exceed postings when batch counts overlap; coverage
	// still clamps to [0, 1].
	out := Build(Input{
		Counts:           map[string]int{"Go": 15},
		PostingsAnalyzed: 10,
	})
	assert.Equal(t, 1.0, out.Terms[0].CoveragePct)

	for _, term := range out.Terms {
		assert.GreaterOrEqual(t, term.CoveragePct, 0.0)
		assert.LessOrEqual(t, term.CoveragePct, 1.0)
		assert.Equal(t, types.TierFor(term.CoveragePct), term.Tier)
	}
}

func TestBuild_Empty(t *testing.T) {
	out := Build(Input{PostingsAnalyzed: 0})
	assert.Empty(t, out.Terms)
	assert.Empty(t, out.Top10)
	assert.Zero(t, out.UniqueTerms)
}

func TestRebuild_Idempotent(t *testing.T) {
	first := Build(Input{
		Counts:           map[string]int{"React": 7, "Docker": 3, "Scrum": 5},
		PostingsAnalyzed: 10,
		ModelUsed:        "gemini/flash",
		Duration:         time.Minute,
	})

	second := Rebuild(first)
	assert.Equal(t, first.Terms, second.Terms)
	assert.Equal(t, first.Top10, second.Top10)
	assert.Equal(t, first.UniqueTerms, second.UniqueTerms)
	assert.Equal(t, first.DurationS, second.DurationS)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		term string
		want types.TermCategory
	}{
		{"Python", types.CategoryLanguage},
		{"typescript", types.CategoryLanguage},
		{"React", types.CategoryFramework},
		{"Spring Boot", types.CategoryFramework},
		{"Docker", types.CategoryTool},
		{"AWS Lambda", types.CategoryTool},
		{"Scrum", types.CategoryMethodology},
		{"CI/CD", types.CategoryMethodology},
		{"Comunicação", types.CategorySoftSkill},
		{"Quantum Basket Weaving", types.CategoryOther},
		{"  git  ", types.CategoryTool},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.term))
		})
	}
}
