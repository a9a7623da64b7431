package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlDoc mirrors Config's shape for struct-tag decoding; kept separate from
// Config itself so the KDL path's zero-config defaults aren't coupled to
// TOML's tagging requirements.
type tomlDoc struct {
	Version  int             `toml:"version"`
	Registry tomlRegistry    `toml:"registry"`
	Defaults tomlDefaults    `toml:"defaults"`
	Presets  []tomlPreset    `toml:"preset"`
	Watch    tomlWatchConfig `toml:"watch"`
}

type tomlRegistry struct {
	InitCapacity int     `toml:"init_capacity"`
	FillFactor   float64 `toml:"fill_factor"`
	GrowthFactor float64 `toml:"growth_factor"`
}

type tomlDefaults struct {
	Size                  int     `toml:"size"`
	Policy                string  `toml:"policy"`
	NodeArenaInitCapacity int     `toml:"node_arena_init_capacity"`
	NodeArenaFillFactor   float64 `toml:"node_arena_fill_factor"`
	NodeArenaGrowthFactor float64 `toml:"node_arena_growth_factor"`
	GapIndexInitCapacity  int     `toml:"gap_index_init_capacity"`
	GapIndexFillFactor    float64 `toml:"gap_index_fill_factor"`
	GapIndexGrowthFactor  float64 `toml:"gap_index_growth_factor"`
}

type tomlPreset struct {
	Name   string `toml:"name"`
	Size   int    `toml:"size"`
	Policy string `toml:"policy"`
}

type tomlWatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMs int  `toml:"debounce_ms"`
}

// LoadTOML attempts to load a .subpool.toml file from dir. Returns (nil,
// nil) when no such file exists, the same contract as LoadKDL.
func LoadTOML(dir string) (*Config, error) {
	path := filepath.Join(dir, ".subpool.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadTOMLFile(path)
}

// LoadTOMLFile parses a single named TOML file, for callers (like the bench
// command's config glob) that address preset files directly rather than
// through the .subpool.toml directory convention.
func LoadTOMLFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError("toml", "", err)
	}

	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, newConfigError("toml", "", err)
	}

	cfg := Default()
	if doc.Version != 0 {
		cfg.Version = doc.Version
	}
	if doc.Registry != (tomlRegistry{}) {
		cfg.Registry = RegistryConfig(doc.Registry)
	}
	applyTOMLDefaults(doc.Defaults, &cfg.Defaults)
	for _, p := range doc.Presets {
		cfg.Presets = append(cfg.Presets, PoolPreset{Name: p.Name, Size: p.Size, Policy: p.Policy})
	}
	if doc.Watch != (tomlWatchConfig{}) {
		cfg.Watch = WatchConfig(doc.Watch)
	}

	return cfg, nil
}

func applyTOMLDefaults(d tomlDefaults, out *PoolDefaults) {
	if d.Size != 0 {
		out.Size = d.Size
	}
	if d.Policy != "" {
		out.Policy = d.Policy
	}
	if d.NodeArenaInitCapacity != 0 {
		out.NodeArenaInitCapacity = d.NodeArenaInitCapacity
	}
	if d.NodeArenaFillFactor != 0 {
		out.NodeArenaFillFactor = d.NodeArenaFillFactor
	}
	if d.NodeArenaGrowthFactor != 0 {
		out.NodeArenaGrowthFactor = d.NodeArenaGrowthFactor
	}
	if d.GapIndexInitCapacity != 0 {
		out.GapIndexInitCapacity = d.GapIndexInitCapacity
	}
	if d.GapIndexFillFactor != 0 {
		out.GapIndexFillFactor = d.GapIndexFillFactor
	}
	if d.GapIndexGrowthFactor != 0 {
		out.GapIndexGrowthFactor = d.GapIndexGrowthFactor
	}
}
