package config

import (
	"fmt"

	"github.com/standardbeagle/subpool/internal/alloc"
)

// Validator checks a loaded Config for values that would break the
// allocator's amortized-growth invariants (P7) before it's handed to
// Registry/Pool construction, and fills in any defaults left at zero.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator { return &Validator{} }

// ValidateAndSetDefaults validates cfg and fills in zero-valued fields from
// Default(). It returns a *ConfigError naming the offending section.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateRegistry(&cfg.Registry); err != nil {
		return newConfigError("registry", "", err)
	}
	if err := v.validateDefaults(&cfg.Defaults); err != nil {
		return newConfigError("defaults", "", err)
	}
	for i := range cfg.Presets {
		if err := v.validatePreset(&cfg.Presets[i]); err != nil {
			return newConfigError("preset", cfg.Presets[i].Name, err)
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateRegistry(r *RegistryConfig) error {
	if r.InitCapacity < 0 {
		return fmt.Errorf("init_capacity cannot be negative, got %d", r.InitCapacity)
	}
	if r.FillFactor != 0 && (r.FillFactor <= 0 || r.FillFactor >= 1) {
		return fmt.Errorf("fill_factor must be in (0, 1), got %v", r.FillFactor)
	}
	if r.GrowthFactor != 0 && r.GrowthFactor <= 1 {
		return fmt.Errorf("growth_factor must be > 1, got %v", r.GrowthFactor)
	}
	return nil
}

func (v *Validator) validateDefaults(d *PoolDefaults) error {
	if d.Size < 0 {
		return fmt.Errorf("size cannot be negative, got %d", d.Size)
	}
	if d.Policy != "" {
		if _, ok := alloc.ParsePolicy(d.Policy); !ok {
			return fmt.Errorf("policy must be first_fit or best_fit, got %q", d.Policy)
		}
	}
	if d.NodeArenaFillFactor != 0 && (d.NodeArenaFillFactor <= 0 || d.NodeArenaFillFactor >= 1) {
		return fmt.Errorf("node_arena.fill_factor must be in (0, 1), got %v", d.NodeArenaFillFactor)
	}
	if d.NodeArenaGrowthFactor != 0 && d.NodeArenaGrowthFactor <= 1 {
		return fmt.Errorf("node_arena.growth_factor must be > 1, got %v", d.NodeArenaGrowthFactor)
	}
	if d.GapIndexFillFactor != 0 && (d.GapIndexFillFactor <= 0 || d.GapIndexFillFactor >= 1) {
		return fmt.Errorf("gap_index.fill_factor must be in (0, 1), got %v", d.GapIndexFillFactor)
	}
	if d.GapIndexGrowthFactor != 0 && d.GapIndexGrowthFactor <= 1 {
		return fmt.Errorf("gap_index.growth_factor must be > 1, got %v", d.GapIndexGrowthFactor)
	}
	return nil
}

func (v *Validator) validatePreset(p *PoolPreset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if p.Size <= 0 {
		return fmt.Errorf("preset %q: size must be positive, got %d", p.Name, p.Size)
	}
	if p.Policy != "" {
		if _, ok := alloc.ParsePolicy(p.Policy); !ok {
			return fmt.Errorf("preset %q: policy must be first_fit or best_fit, got %q", p.Name, p.Policy)
		}
	}
	return nil
}

// setSmartDefaults fills any zero-valued tuning field from Default().
func (v *Validator) setSmartDefaults(cfg *Config) {
	d := Default()

	if cfg.Registry.InitCapacity == 0 {
		cfg.Registry.InitCapacity = d.Registry.InitCapacity
	}
	if cfg.Registry.FillFactor == 0 {
		cfg.Registry.FillFactor = d.Registry.FillFactor
	}
	if cfg.Registry.GrowthFactor == 0 {
		cfg.Registry.GrowthFactor = d.Registry.GrowthFactor
	}

	if cfg.Defaults.Size == 0 {
		cfg.Defaults.Size = d.Defaults.Size
	}
	if cfg.Defaults.Policy == "" {
		cfg.Defaults.Policy = d.Defaults.Policy
	}
	if cfg.Defaults.NodeArenaInitCapacity == 0 {
		cfg.Defaults.NodeArenaInitCapacity = d.Defaults.NodeArenaInitCapacity
	}
	if cfg.Defaults.NodeArenaFillFactor == 0 {
		cfg.Defaults.NodeArenaFillFactor = d.Defaults.NodeArenaFillFactor
	}
	if cfg.Defaults.NodeArenaGrowthFactor == 0 {
		cfg.Defaults.NodeArenaGrowthFactor = d.Defaults.NodeArenaGrowthFactor
	}
	if cfg.Defaults.GapIndexInitCapacity == 0 {
		cfg.Defaults.GapIndexInitCapacity = d.Defaults.GapIndexInitCapacity
	}
	if cfg.Defaults.GapIndexFillFactor == 0 {
		cfg.Defaults.GapIndexFillFactor = d.Defaults.GapIndexFillFactor
	}
	if cfg.Defaults.GapIndexGrowthFactor == 0 {
		cfg.Defaults.GapIndexGrowthFactor = d.Defaults.GapIndexGrowthFactor
	}
}

// ValidateConfig is a convenience wrapper for quick validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
