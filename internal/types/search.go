// Package types defines the shared data model for the keyword market-map
// pipeline: search requests, collected postings, extracted terms, and the
// ranked output map.
package types

import "strings"

// WorkMode is the candidate's workplace preference.
type WorkMode string

// Supported work modes.
const (
	WorkModeOnsite WorkMode = "onsite"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeRemote WorkMode = "remote"
)

// ParseWorkMode normalizes a user-supplied work mode string. It accepts the
// Portuguese spellings used by the original methodology material.
func ParseWorkMode(s string) (WorkMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onsite", "presencial", "on-site":
		return WorkModeOnsite, true
	case "hybrid", "hibrido", "híbrido":
		return WorkModeHybrid, true
	case "remote", "remoto":
		return WorkModeRemote, true
	}
	return "", false
}

// SearchRequest is the input to a market-map run.
type SearchRequest struct {
	TargetRole   string   `json:"target_role" validate:"required,min=2"`
	Area         string   `json:"area"`
	BaseLocation string   `json:"base_location" validate:"required"`
	WorkMode     WorkMode `json:"work_mode" validate:"required,oneof=onsite hybrid remote"`
	DesiredCount int      `json:"desired_count" validate:"required,min=1,max=500"`
}

// SearchCombination is one (role variant, location variant) pair emitted by
// the planner. Higher priority combinations are tried first.
type SearchCombination struct {
	Role        string `json:"role"`
	Location    string `json:"location"`
	Priority    int    `json:"priority"`
	WorkModeTag string `json:"work_mode_tag"`
}

// LocationKind classifies an expanded location variant.
type LocationKind string

// Location variant kinds, ordered roughly by commute proximity.
const (
	LocationPrimary    LocationKind = "primary"
	LocationMetro      LocationKind = "metro"
	LocationNearbyCity LocationKind = "nearby_city"
	LocationRemote     LocationKind = "remote"
)

// ExpandedLocation is one location variant with expansion metadata.
type ExpandedLocation struct {
	Name       string       `json:"name"`
	DistanceKM float64      `json:"distance_km"`
	Relevance  float64      `json:"relevance"`
	Kind       LocationKind `json:"kind"`
	Rationale  string       `json:"rationale,omitempty"`
}
