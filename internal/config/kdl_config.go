package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load a .subpool.kdl file from dir. Returns (nil, nil)
// when no such file exists.
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, ".subpool.kdl")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(path)
}

// LoadKDLFile parses a single named KDL file, for callers (like the bench
// command's config glob) that address preset files directly rather than
// through the .subpool.kdl directory convention.
func LoadKDLFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, newConfigError("kdl", "", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "registry":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "init_capacity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Registry.InitCapacity = v
					}
				case "fill_factor":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Registry.FillFactor = v
					}
				case "growth_factor":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Registry.GrowthFactor = v
					}
				}
			}
		case "defaults":
			parseDefaults(n, &cfg.Defaults)
		case "preset":
			if p, ok := parsePreset(n); ok {
				cfg.Presets = append(cfg.Presets, p)
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func parseDefaults(n *document.Node, d *PoolDefaults) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "size":
			if v, ok := firstIntArg(cn); ok {
				d.Size = v
			}
		case "policy":
			if s, ok := firstStringArg(cn); ok {
				d.Policy = s
			}
		case "node_arena":
			parseTuningBlock(cn, &d.NodeArenaInitCapacity, &d.NodeArenaFillFactor, &d.NodeArenaGrowthFactor)
		case "gap_index":
			parseTuningBlock(cn, &d.GapIndexInitCapacity, &d.GapIndexFillFactor, &d.GapIndexGrowthFactor)
		}
	}
}

func parseTuningBlock(n *document.Node, initCap *int, fill, growth *float64) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "init_capacity":
			if v, ok := firstIntArg(cn); ok {
				*initCap = v
			}
		case "fill_factor":
			if v, ok := firstFloatArg(cn); ok {
				*fill = v
			}
		case "growth_factor":
			if v, ok := firstFloatArg(cn); ok {
				*growth = v
			}
		}
	}
}

func parsePreset(n *document.Node) (PoolPreset, bool) {
	name, ok := firstStringArg(n)
	if !ok {
		return PoolPreset{}, false
	}
	p := PoolPreset{Name: name}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "size":
			if v, ok := firstIntArg(cn); ok {
				p.Size = v
			}
		case "policy":
			if s, ok := firstStringArg(cn); ok {
				p.Policy = s
			}
		}
	}
	return p, true
}

// Helper functions leveraging the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
