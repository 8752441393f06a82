package expansion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helio/keyword-mapper/internal/types"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLM) Model() string { return "fake/model" }
func (f *fakeLLM) Close() error  { return nil }

func TestExpand_RemoteUsesFixedHubs(t *testing.T) {
	e := NewLocationExpander(nil, nil)

	locs, err := e.Expand(context.Background(), "ignored", types.WorkModeRemote, 5)
	require.NoError(t, err)
	require.Len(t, locs, 5)

	assert.Equal(t, "Remote", locs[0].Name)
	assert.Equal(t, 1.0, locs[0].Relevance)
	assert.Equal(t, "Brasil", locs[1].Name)
	for _, l := range locs {
		assert.Equal(t, types.LocationRemote, l.Kind)
	}
}

func TestExpand_BaseAlwaysFirst(t *testing.T) {
	e := NewLocationExpander(nil, nil)

	locs, err := e.Expand(context.Background(), "Curitiba", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	require.NotEmpty(t, locs)

	assert.Equal(t, "Curitiba", locs[0].Name)
	assert.Equal(t, 1.0, locs[0].Relevance)
	assert.Equal(t, types.LocationPrimary, locs[0].Kind)
}

func TestExpand_MetroFallbackWithoutLLM(t *testing.T) {
	e := NewLocationExpander(nil, nil)

	locs, err := e.Expand(context.Background(), "São Paulo, SP", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	require.Len(t, locs, 3)

	assert.Equal(t, "Guarulhos, SP", locs[1].Name)
	assert.Equal(t, types.LocationMetro, locs[1].Kind)
	assert.Greater(t, locs[1].Relevance, locs[2].Relevance)
}

func TestExpand_UnknownBaseWithoutLLM(t *testing.T) {
	e := NewLocationExpander(nil, nil)

	locs, err := e.Expand(context.Background(), "Xique-Xique", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Xique-Xique", locs[0].Name)
}

func TestExpand_LLMResponse(t *testing.T) {
	client := &fakeLLM{response: `[
		{"name": "Niterói, RJ", "distance_km": 13, "relevance": 0.9, "kind": "metro", "rationale": "across the bay"},
		{"name": "Petrópolis, RJ", "distance_km": 68, "relevance": 0.5, "kind": "nearby_city", "rationale": "mountain town"}
	]`}
	e := NewLocationExpander(client, nil)

	locs, err := e.Expand(context.Background(), "Rio de Janeiro", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	require.Len(t, locs, 2, "68km exceeds the onsite radius")

	assert.Equal(t, "Rio de Janeiro", locs[0].Name)
	assert.Equal(t, "Niterói, RJ", locs[1].Name)
	assert.Equal(t, types.LocationMetro, locs[1].Kind)
}

func TestExpand_HybridRadiusAdmitsFartherCities(t *testing.T) {
	client := &fakeLLM{response: `[
		{"name": "Petrópolis, RJ", "distance_km": 68, "relevance": 0.5, "kind": "nearby_city", "rationale": "mountain town"}
	]`}
	e := NewLocationExpander(client, nil)

	locs, err := e.Expand(context.Background(), "Rio de Janeiro", types.WorkModeHybrid, 3)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Petrópolis, RJ", locs[1].Name)
}

func TestExpand_LLMFailureFallsBackToTables(t *testing.T) {
	client := &fakeLLM{err: errors.New("upstream down")}
	e := NewLocationExpander(client, nil)

	locs, err := e.Expand(context.Background(), "Campinas", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	require.Len(t, locs, 3)
	assert.Equal(t, "Jundiaí, SP", locs[1].Name)
}

func TestExpand_Caches(t *testing.T) {
	client := &fakeLLM{response: `[{"name": "Contagem, MG", "distance_km": 10, "relevance": 0.9, "kind": "metro", "rationale": "metro"}]`}
	e := NewLocationExpander(client, nil)

	_, err := e.Expand(context.Background(), "Belo Horizonte", types.WorkModeOnsite, 3)
	require.NoError(t, err)
	_, err = e.Expand(context.Background(), "Belo Horizonte", types.WorkModeOnsite, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
}

func TestExpand_EmptyBase(t *testing.T) {
	e := NewLocationExpander(nil, nil)

	_, err := e.Expand(context.Background(), "  ", types.WorkModeOnsite, 3)
	assert.Error(t, err)
}
