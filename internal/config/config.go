// Package config loads sub-pool allocator presets from KDL or TOML files,
// merging a user-global file with a project-local one the way the teacher
// repo layers ~/.lci.kdl under a project's .lci.kdl (here: .subpool.kdl /
// .subpool.toml).
package config

import (
	"fmt"
	"os"

	"github.com/standardbeagle/subpool/internal/alloc"
)

// Config is the full on-disk shape of a subpool configuration file.
type Config struct {
	Version  int
	Registry RegistryConfig
	Defaults PoolDefaults
	Presets  []PoolPreset
	Watch    WatchConfig
}

// RegistryConfig tunes the process-wide pool-slot array (spec.md §4.5).
type RegistryConfig struct {
	InitCapacity int
	FillFactor   float64
	GrowthFactor float64
}

// PoolDefaults holds a default pool size and policy plus node-arena and
// gap-index tuning. The serve command builds its registry's pool tuning from
// these fields and uses Policy for a preset whose own policy does not parse;
// no command reads Size when opening a pool.
type PoolDefaults struct {
	Size   int
	Policy string

	NodeArenaInitCapacity int
	NodeArenaFillFactor   float64
	NodeArenaGrowthFactor float64
	GapIndexInitCapacity  int
	GapIndexFillFactor    float64
	GapIndexGrowthFactor  float64
}

// PoolPreset names a reusable (size, policy) pair, e.g. for the bench
// command to open several differently-shaped pools in one run.
type PoolPreset struct {
	Name   string
	Size   int
	Policy string
}

// WatchConfig controls fsnotify-based hot-reload of the config file. A
// reload only replaces Defaults/Presets for calls made after it lands; it
// never touches a Pool that is already open (spec.md's allocator core has
// no notion of reconfiguring a live pool).
type WatchConfig struct {
	Enabled    bool
	DebounceMs int
}

// RegistryTuning converts the loaded RegistryConfig into the type the
// alloc package's Registry constructor expects.
func (c *Config) RegistryTuning() alloc.RegistryTuning {
	return alloc.RegistryTuning{
		InitCapacity: c.Registry.InitCapacity,
		FillFactor:   c.Registry.FillFactor,
		GrowthFactor: c.Registry.GrowthFactor,
	}
}

// PoolTuning converts PoolDefaults into the alloc package's Tuning type.
func (d *PoolDefaults) PoolTuning() alloc.Tuning {
	return alloc.Tuning{
		NodeArenaInitCapacity: d.NodeArenaInitCapacity,
		NodeArenaFillFactor:   d.NodeArenaFillFactor,
		NodeArenaGrowthFactor: d.NodeArenaGrowthFactor,
		GapIndexInitCapacity:  d.GapIndexInitCapacity,
		GapIndexFillFactor:    d.GapIndexFillFactor,
		GapIndexGrowthFactor:  d.GapIndexGrowthFactor,
	}
}

// ResolvedPolicy parses the configured policy name, falling back to FirstFit.
func (d *PoolDefaults) ResolvedPolicy() alloc.Policy {
	if p, ok := alloc.ParsePolicy(d.Policy); ok {
		return p
	}
	return alloc.FirstFit
}

// Default returns the built-in configuration used when no file is found.
func Default() *Config {
	return &Config{
		Version: 1,
		Registry: RegistryConfig{
			InitCapacity: 20,
			FillFactor:   0.75,
			GrowthFactor: 2,
		},
		Defaults: PoolDefaults{
			Size:                  1 << 20,
			Policy:                "first_fit",
			NodeArenaInitCapacity: 40,
			NodeArenaFillFactor:   0.75,
			NodeArenaGrowthFactor: 2,
			GapIndexInitCapacity:  40,
			GapIndexFillFactor:    0.75,
			GapIndexGrowthFactor:  2,
		},
		Watch: WatchConfig{Enabled: false, DebounceMs: 300},
	}
}

// Load resolves a global file (~/.subpool.kdl or ~/.subpool.toml) and a
// project file under root, and merges them the way the teacher layers a
// base config under a project one: the project's presets and defaults
// take precedence, but the global file's presets are kept when the
// project doesn't redefine a preset of the same name.
func Load(root string) (*Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	var base *Config
	if err == nil {
		if b, err := loadFromDir(home); err == nil && b != nil {
			base = b
		}
	}

	project, err := loadFromDir(root)
	if err != nil {
		return nil, err
	}

	switch {
	case base != nil && project != nil:
		cfg = mergeConfigs(base, project)
	case project != nil:
		cfg = project
	case base != nil:
		cfg = base
	}

	return cfg, nil
}

func loadFromDir(dir string) (*Config, error) {
	if cfg, err := LoadKDL(dir); err != nil {
		return nil, err
	} else if cfg != nil {
		return cfg, nil
	}
	return LoadTOML(dir)
}

// mergeConfigs merges base under project: project's Registry/Defaults/Watch
// win outright, but any named preset in base not redefined by project is
// kept (mirrors the teacher's exclusion-preserving merge in spirit, applied
// to presets instead of glob exclusions).
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	seen := make(map[string]bool, len(project.Presets))
	for _, p := range project.Presets {
		seen[p.Name] = true
	}
	for _, p := range base.Presets {
		if !seen[p.Name] {
			merged.Presets = append(merged.Presets, p)
		}
	}

	return &merged
}

// ConfigError reports which section and key of a config file failed to
// validate.
type ConfigError struct {
	Section string
	Key     string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config: %s.%s: %v", e.Section, e.Key, e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(section, key string, err error) *ConfigError {
	return &ConfigError{Section: section, Key: key, Err: err}
}
