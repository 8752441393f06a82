package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/config"
)

func TestBuildSources_GuestFallbackAlwaysPresent(t *testing.T) {
	reg := buildSources(&config.Config{}, zap.NewNop())

	available := reg.Available()
	require.Len(t, available, 1)
	assert.Equal(t, "linkedin_guest", available[0].Name())
}

func TestBuildSources_ApifyFirstWhenConfigured(t *testing.T) {
	cfg := &config.Config{
		ApifyToken:   "apify_api_test",
		AdzunaAppID:  "id",
		AdzunaAppKey: "key",
	}
	reg := buildSources(cfg, zap.NewNop())

	available := reg.Available()
	require.Len(t, available, 3)
	assert.Equal(t, "linkedin_apify", available[0].Name())
	assert.Equal(t, "adzuna", available[1].Name())
	assert.Equal(t, "linkedin_guest", available[2].Name())
}

func TestBuildClients_NoCredentials(t *testing.T) {
	_, err := buildClients(context.Background(), &config.Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM credentials")
}

func TestBuildClients_GroqOnly(t *testing.T) {
	clients, err := buildClients(context.Background(), &config.Config{GroqAPIKey: "gsk_test"})

	require.NoError(t, err)
	defer closeClients(clients)
	require.Len(t, clients, 1)
	assert.Contains(t, clients[0].Model(), "groq/")
}
