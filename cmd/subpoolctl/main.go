// Command subpoolctl is a CLI and read-only MCP companion over the
// sub-pool allocator library: open/close/alloc/free/inspect a single pool
// across separate invocations via a small session file, fan a benchmark
// out across configured presets, or serve pool_stats/pool_inspect to an
// agent over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/subpool/internal/region"
)

// defaultFactory backs every pool this CLI opens or restores. The
// allocator core is factory-agnostic (internal/region); a real deployment
// wanting a different backing store supplies its own region.Factory here.
var defaultFactory region.Factory = region.HeapFactory{}

func main() {
	app := &cli.App{
		Name:                   "subpoolctl",
		Usage:                  "inspect and drive sub-pool allocator pools",
		Version:                "0.1.0",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "session",
				Usage: "session file tracking pools opened by this CLI across invocations",
				Value: ".subpool-session.json",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "project directory to load .subpool.kdl / .subpool.toml from",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			openCommand,
			closeCommand,
			allocCommand,
			freeCommand,
			inspectCommand,
			benchCommand,
			serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
