package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/subpool/internal/alloc"
	"github.com/standardbeagle/subpool/internal/config"
	"github.com/standardbeagle/subpool/internal/mcpserver"
)

var serveCommand = &cli.Command{
	Name:      "serve",
	Usage:     "open every configured preset and serve pool_stats/pool_inspect over MCP on stdio",
	ArgsUsage: " ",
	Action: func(c *cli.Context) error {
		root := c.String("config")
		cfg, err := config.Load(root)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		registry := alloc.NewRegistry(cfg.RegistryTuning(), cfg.Defaults.PoolTuning())
		if err := registry.Init(); err != nil {
			return fmt.Errorf("initializing registry: %w", err)
		}

		srv := mcpserver.NewServer(registry)

		var mu sync.Mutex
		opened := make(map[string]bool)
		openPreset := func(p config.PoolPreset) error {
			policy, ok := alloc.ParsePolicy(p.Policy)
			if !ok {
				policy = cfg.Defaults.ResolvedPolicy()
			}
			h, err := registry.Open(defaultFactory, p.Size, policy)
			if err != nil {
				return fmt.Errorf("opening preset %s: %w", p.Name, err)
			}
			srv.RegisterPool(p.Name, h)
			opened[p.Name] = true
			return nil
		}

		for _, p := range cfg.Presets {
			if err := openPreset(p); err != nil {
				return err
			}
		}

		if cfg.Watch.Enabled {
			watcher, err := config.NewWatcher(root, cfg.Watch, func(newCfg *config.Config, reloadErr error) {
				if reloadErr != nil {
					fmt.Fprintf(os.Stderr, "subpoolctl serve: config reload failed: %v\n", reloadErr)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				for _, p := range newCfg.Presets {
					if opened[p.Name] {
						continue
					}
					if err := openPreset(p); err != nil {
						fmt.Fprintf(os.Stderr, "subpoolctl serve: %v\n", err)
						continue
					}
					fmt.Fprintf(os.Stderr, "subpoolctl serve: opened new preset %q from reloaded config\n", p.Name)
				}
			})
			if err != nil {
				return fmt.Errorf("starting config watcher: %w", err)
			}
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("starting config watcher: %w", err)
			}
			defer watcher.Stop()
		}

		return runServer(srv)
	},
}

// runServer runs srv over stdio until a termination signal, giving it 2s to
// shut down gracefully before forcing the stdio transport closed.
func runServer(srv *mcpserver.Server) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		cancel()
		timer := time.NewTimer(2 * time.Second)
		defer timer.Stop()
		select {
		case err := <-errChan:
			return err
		case <-timer.C:
			os.Stdin.Close()
			forceTimer := time.NewTimer(500 * time.Millisecond)
			defer forceTimer.Stop()
			select {
			case err := <-errChan:
				return err
			case <-forceTimer.C:
				return fmt.Errorf("MCP server did not shut down within the force timeout")
			}
		}
	}
}
