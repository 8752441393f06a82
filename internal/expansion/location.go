package expansion

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/helio/keyword-mapper/internal/llm"
	"github.com/helio/keyword-mapper/internal/prompts"
	"github.com/helio/keyword-mapper/internal/types"
)

// Search radii per work mode. Hybrid commutes tolerate longer distances.
const (
	onsiteRadiusKM = 50
	hybridRadiusKM = 100
)

// LocationExpander expands a base location into nearby searchable
// locations. Remote searches use a fixed hub list; onsite and hybrid
// searches ask the LLM for cities within commuting radius and fall back to
// curated metro tables when no model is available or the call fails.
//
// Results are cached for the process lifetime: location geography does not
// change between runs and repeat expansions are common.
type LocationExpander struct {
	client llm.Client
	log    *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]types.ExpandedLocation
}

// NewLocationExpander creates a location expander. client may be nil, in
// which case only the curated fallback tables are used.
func NewLocationExpander(client llm.Client, log *zap.Logger) *LocationExpander {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocationExpander{
		client: client,
		log:    log,
		cache:  make(map[string][]types.ExpandedLocation),
	}
}

// Expand returns up to limit expanded locations for the base location and
// work mode. The base location itself is always first with relevance 1.0,
// except for remote searches, which ignore the base entirely.
func (e *LocationExpander) Expand(ctx context.Context, base string, mode types.WorkMode, limit int) ([]types.ExpandedLocation, error) {
	if limit <= 0 {
		limit = 3
	}
	base = strings.TrimSpace(base)

	if mode == types.WorkModeRemote {
		return remoteExpansion(limit), nil
	}
	if base == "" {
		return nil, fmt.Errorf("base location is required for %s searches", mode)
	}

	key := strings.ToLower(base) + "|" + string(mode) + "|" + strconv.Itoa(limit)

	e.mu.RLock()
	if cached, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return cached, nil
	}
	e.mu.RUnlock()

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		locs := e.expand(ctx, base, mode, limit)
		e.mu.Lock()
		e.cache[key] = locs
		e.mu.Unlock()
		return locs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.ExpandedLocation), nil
}

func (e *LocationExpander) expand(ctx context.Context, base string, mode types.WorkMode, limit int) []types.ExpandedLocation {
	out := []types.ExpandedLocation{{
		Name:      base,
		Relevance: 1.0,
		Kind:      types.LocationPrimary,
		Rationale: "Requested base location",
	}}

	if e.client != nil {
		nearby, err := e.expandWithLLM(ctx, base, mode, limit-1)
		if err == nil {
			out = append(out, nearby...)
			return capLocations(out, limit)
		}
		e.log.Warn("location expansion via LLM failed, using curated tables",
			zap.String("base", base),
			zap.Error(err),
		)
	}

	out = append(out, metroExpansion(base, limit-1)...)
	return capLocations(out, limit)
}

func (e *LocationExpander) expandWithLLM(ctx context.Context, base string, mode types.WorkMode, limit int) ([]types.ExpandedLocation, error) {
	if limit <= 0 {
		return nil, nil
	}
	radius := onsiteRadiusKM
	if mode == types.WorkModeHybrid {
		radius = hybridRadiusKM
	}

	template, err := prompts.Get("expansion.json", "expand-location")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(template, map[string]string{
		"Base":     base,
		"WorkMode": string(mode),
		"RadiusKM": strconv.Itoa(radius),
		"Limit":    strconv.Itoa(limit),
	})

	raw, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("location expansion call: %w", err)
	}

	arr := llm.ExtractJSONArray(llm.CleanJSONBlock(raw))
	if arr == "" {
		return nil, fmt.Errorf("location expansion: no JSON array in response")
	}

	var parsed []struct {
		Name       string  `json:"name"`
		DistanceKM float64 `json:"distance_km"`
		Relevance  float64 `json:"relevance"`
		Kind       string  `json:"kind"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(arr), &parsed); err != nil {
		return nil, fmt.Errorf("location expansion: parse response: %w", err)
	}

	var out []types.ExpandedLocation
	seen := map[string]bool{strings.ToLower(base): true}
	for _, p := range parsed {
		name := strings.TrimSpace(p.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		if p.DistanceKM > float64(radius) {
			continue
		}
		seen[strings.ToLower(name)] = true
		kind := types.LocationNearbyCity
		if p.Kind == string(types.LocationMetro) {
			kind = types.LocationMetro
		}
		rel := p.Relevance
		if rel <= 0 || rel > 1 {
			rel = 0.5
		}
		out = append(out, types.ExpandedLocation{
			Name:       name,
			DistanceKM: p.DistanceKM,
			Relevance:  rel,
			Kind:       kind,
			Rationale:  p.Rationale,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// metroExpansion returns curated metro cities for known bases. The table
// is keyed by city name only, so "São Paulo, SP" matches "são paulo".
func metroExpansion(base string, limit int) []types.ExpandedLocation {
	if limit <= 0 {
		return nil
	}
	key := strings.ToLower(strings.TrimSpace(base))
	if idx := strings.IndexAny(key, ",-"); idx > 0 {
		key = strings.TrimSpace(key[:idx])
	}

	cities, ok := metroRegions[key]
	if !ok {
		return nil
	}

	var out []types.ExpandedLocation
	for i, city := range cities {
		if i == limit {
			break
		}
		out = append(out, types.ExpandedLocation{
			Name:      city,
			Relevance: 0.9 - 0.1*float64(i),
			Kind:      types.LocationMetro,
			Rationale: "Metro region of " + base,
		})
	}
	return out
}

func remoteExpansion(limit int) []types.ExpandedLocation {
	var out []types.ExpandedLocation
	for i, hub := range remoteLocations {
		if i == limit {
			break
		}
		out = append(out, types.ExpandedLocation{
			Name:      hub.name,
			Relevance: hub.relevance,
			Kind:      types.LocationRemote,
			Rationale: hub.rationale,
		})
	}
	return out
}

func capLocations(locs []types.ExpandedLocation, limit int) []types.ExpandedLocation {
	if len(locs) > limit {
		return locs[:limit]
	}
	return locs
}
