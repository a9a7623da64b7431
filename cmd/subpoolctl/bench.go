package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/subpool/internal/alloc"
	"github.com/standardbeagle/subpool/internal/config"
)

var benchCommand = &cli.Command{
	Name:      "bench",
	Usage:     "open every preset matched by a config glob and drive a random alloc/free workload against each, independently",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "doublestar glob over preset files, e.g. \"configs/*.kdl\"", Required: true},
		&cli.IntFlag{Name: "ops", Usage: "alloc/free operations to run per pool", Value: 1000},
	},
	Action: func(c *cli.Context) error {
		paths, err := doublestar.FilepathGlob(c.String("config"))
		if err != nil {
			return fmt.Errorf("expanding config glob: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("config glob %q matched no files", c.String("config"))
		}

		presets, err := presetsFromFiles(paths)
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			return fmt.Errorf("matched files defined no presets")
		}

		ops := c.Int("ops")
		results := make([]benchResult, len(presets))

		var g errgroup.Group
		for i, preset := range presets {
			i, preset := i, preset
			g.Go(func() error {
				r, err := runBench(preset, ops)
				if err != nil {
					return fmt.Errorf("preset %s: %w", preset.Name, err)
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		return printJSON(results)
	},
}

func presetsFromFiles(paths []string) ([]config.PoolPreset, error) {
	var all []config.PoolPreset
	for _, path := range paths {
		var cfg *config.Config
		var err error
		if len(path) > 5 && path[len(path)-5:] == ".toml" {
			cfg, err = config.LoadTOMLFile(path)
		} else {
			cfg, err = config.LoadKDLFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if cfg == nil {
			continue
		}
		all = append(all, cfg.Presets...)
	}
	return all, nil
}

// benchResult summarizes one pool's workload run.
type benchResult struct {
	Preset       string  `json:"preset"`
	Policy       string  `json:"policy"`
	TotalSize    int     `json:"total_size"`
	Ops          int     `json:"ops"`
	Failures     int     `json:"alloc_failures"`
	Duration     string  `json:"duration"`
	OpsPerSecond float64 `json:"ops_per_second"`
	ScratchHits  int64   `json:"scratch_pool_hits"`
	ScratchMiss  int64   `json:"scratch_pool_misses"`
}

// runBench drives a pseudo-random alloc/free workload against a freshly
// opened pool for the given preset, entirely within this goroutine — each
// preset's pool is independent, so no cross-pool synchronization is needed
// beyond collecting results.
//
// Each simulated allocation op also round-trips a scratch []byte payload of
// the same size through a ScratchPool, standing in for the caller-side
// buffer a real workload would write into the allocated range before
// releasing it back. This keeps the driver's own churn off the pool under
// test's bookkeeping and lets the reported scratch hit/miss counts show how
// well the default tiers cover a preset's size distribution.
func runBench(preset config.PoolPreset, ops int) (benchResult, error) {
	policy, ok := alloc.ParsePolicy(preset.Policy)
	if !ok {
		policy = alloc.FirstFit
	}

	p, err := alloc.Open(defaultFactory, preset.Size, policy, alloc.DefaultTuning())
	if err != nil {
		return benchResult{}, err
	}

	scratch := alloc.NewDefaultScratchPool[byte]()
	for _, tier := range alloc.DefaultScratchTierConfigs {
		scratch.Put(scratch.Get(tier.Capacity))
	}
	scratch.ResetStats()

	rng := rand.New(rand.NewSource(int64(len(preset.Name)) + int64(preset.Size)))
	live := make([]alloc.AllocHandle, 0, ops)
	failures := 0

	start := time.Now()
	for i := 0; i < ops; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			size := 1 + rng.Intn(maxAllocSize(preset.Size))

			payload := scratch.Get(size)
			payload = payload[:size]
			for j := range payload {
				payload[j] = byte(j)
			}
			scratch.Put(payload)

			h, err := p.Allocate(size)
			if err != nil {
				return benchResult{}, err
			}
			if !h.Valid() {
				failures++
				continue
			}
			live = append(live, h)
		} else {
			idx := rng.Intn(len(live))
			h := live[idx]
			if err := p.Free(h); err != nil {
				return benchResult{}, err
			}
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
	elapsed := time.Since(start)
	scratchStats := scratch.Stats()

	return benchResult{
		Preset:       preset.Name,
		Policy:       policy.String(),
		TotalSize:    preset.Size,
		Ops:          ops,
		Failures:     failures,
		Duration:     elapsed.String(),
		OpsPerSecond: float64(ops) / elapsed.Seconds(),
		ScratchHits:  scratchStats.PoolHits,
		ScratchMiss:  scratchStats.PoolMisses,
	}, nil
}

func maxAllocSize(poolSize int) int {
	n := poolSize / 16
	if n < 1 {
		n = 1
	}
	return n
}
