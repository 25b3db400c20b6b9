package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoot(t *testing.T) {
	root := DefaultRoot()
	assert.Equal(t, 300.0, root.Registry.RequestsPerMin)
	assert.Equal(t, 0.6, root.Resolver.ReviewLow)
	assert.Equal(t, 8.0, root.Gate.Gates["G1"].BySeverity["H"])
}

func TestApplyEnv_MissingDSN(t *testing.T) {
	root := DefaultRoot()
	_, err := ApplyEnv(root, func(string) string { return "" })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestApplyEnv_Overlay(t *testing.T) {
	env := map[string]string{
		"NCFD_DATABASE_DSN": "postgres://localhost/ncfd",
		"NCFD_REGISTRY_URL": "https://clinicaltrials.example/api/v2",
	}
	root, err := ApplyEnv(DefaultRoot(), func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/ncfd", root.DatabaseDSN)
	assert.Equal(t, "https://clinicaltrials.example/api/v2", root.Registry.BaseURL)
}

func TestLoad_NoPath(t *testing.T) {
	root, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot().Resolver.TauAccept, root.Resolver.TauAccept)
}
