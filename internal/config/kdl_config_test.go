package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 20, cfg.Registry.InitCapacity)
	assert.Equal(t, 0.75, cfg.Registry.FillFactor)
	assert.Equal(t, "first_fit", cfg.Defaults.Policy)
	assert.Equal(t, 1<<20, cfg.Defaults.Size)
	assert.Empty(t, cfg.Presets)
	assert.False(t, cfg.Watch.Enabled)
}

func TestParseKDL_RegistryAndDefaults(t *testing.T) {
	kdlContent := `
registry {
    init_capacity 64
    fill_factor 0.8
    growth_factor 1.5
}
defaults {
    size 4096
    policy "best_fit"
    node_arena {
        init_capacity 16
        fill_factor 0.6
        growth_factor 2.0
    }
    gap_index {
        init_capacity 8
        fill_factor 0.5
        growth_factor 3.0
    }
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Registry.InitCapacity)
	assert.Equal(t, 0.8, cfg.Registry.FillFactor)
	assert.Equal(t, 1.5, cfg.Registry.GrowthFactor)

	assert.Equal(t, 4096, cfg.Defaults.Size)
	assert.Equal(t, "best_fit", cfg.Defaults.Policy)
	assert.Equal(t, 16, cfg.Defaults.NodeArenaInitCapacity)
	assert.Equal(t, 0.6, cfg.Defaults.NodeArenaFillFactor)
	assert.Equal(t, 2.0, cfg.Defaults.NodeArenaGrowthFactor)
	assert.Equal(t, 8, cfg.Defaults.GapIndexInitCapacity)
	assert.Equal(t, 0.5, cfg.Defaults.GapIndexFillFactor)
	assert.Equal(t, 3.0, cfg.Defaults.GapIndexGrowthFactor)
}

func TestParseKDL_Presets(t *testing.T) {
	kdlContent := `
preset "small" {
    size 1024
    policy "first_fit"
}
preset "large" {
    size 1048576
    policy "best_fit"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.Len(t, cfg.Presets, 2)

	assert.Equal(t, PoolPreset{Name: "small", Size: 1024, Policy: "first_fit"}, cfg.Presets[0])
	assert.Equal(t, PoolPreset{Name: "large", Size: 1048576, Policy: "best_fit"}, cfg.Presets[1])
}

func TestParseKDL_Watch(t *testing.T) {
	kdlContent := `
watch {
    enabled true
    debounce_ms 500
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestParseKDL_MalformedDocument(t *testing.T) {
	_, err := parseKDL("registry { init_capacity ")
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "kdl", cerr.Section)
}

func TestLoadKDL_MissingFileReturnsNil(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
