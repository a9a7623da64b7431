package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSetDefaults_FillsZeroFields(t *testing.T) {
	cfg := &Config{
		Registry: RegistryConfig{InitCapacity: 10},
		Defaults: PoolDefaults{Size: 512},
	}

	validator := NewValidator()
	require.NoError(t, validator.ValidateAndSetDefaults(cfg))

	assert.Equal(t, 10, cfg.Registry.InitCapacity)
	assert.Equal(t, Default().Registry.FillFactor, cfg.Registry.FillFactor)
	assert.Equal(t, Default().Registry.GrowthFactor, cfg.Registry.GrowthFactor)

	assert.Equal(t, 512, cfg.Defaults.Size)
	assert.Equal(t, Default().Defaults.Policy, cfg.Defaults.Policy)
	assert.Equal(t, Default().Defaults.NodeArenaInitCapacity, cfg.Defaults.NodeArenaInitCapacity)
	assert.Equal(t, Default().Defaults.GapIndexGrowthFactor, cfg.Defaults.GapIndexGrowthFactor)
}

func TestValidateAndSetDefaults_RejectsBadFillFactor(t *testing.T) {
	cfg := Default()
	cfg.Registry.FillFactor = 1.5

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "registry", cerr.Section)
}

func TestValidateAndSetDefaults_RejectsBadGrowthFactor(t *testing.T) {
	cfg := Default()
	cfg.Registry.GrowthFactor = 1

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaults_RejectsUnknownPolicy(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Policy = "worst_fit"

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "defaults", cerr.Section)
}

func TestValidateAndSetDefaults_RejectsInvalidPreset(t *testing.T) {
	cfg := Default()
	cfg.Presets = []PoolPreset{{Name: "bad", Size: -1}}

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "preset", cerr.Section)
	assert.Equal(t, "bad", cerr.Key)
}

func TestValidateConfig_AcceptsDefault(t *testing.T) {
	require.NoError(t, ValidateConfig(Default()))
}
