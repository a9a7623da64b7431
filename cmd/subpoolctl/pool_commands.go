package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/subpool/internal/alloc"
)

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

var openCommand = &cli.Command{
	Name:      "open",
	Usage:     "open a new pool and record it in the session file",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "size", Usage: "pool size in bytes", Required: true},
		&cli.StringFlag{Name: "policy", Usage: "first_fit or best_fit", Value: "first_fit"},
	},
	Action: func(c *cli.Context) error {
		size := c.Int("size")
		policyName := c.String("policy")
		policy, ok := alloc.ParsePolicy(policyName)
		if !ok {
			return fmt.Errorf("unknown policy %q", policyName)
		}

		p, err := alloc.Open(defaultFactory, size, policy, alloc.DefaultTuning())
		if err != nil {
			return err
		}

		sessionPath := c.String("session")
		sess, err := loadSession(sessionPath)
		if err != nil {
			return err
		}
		id := sess.addPool(sessionPool{Size: size, Policy: policy.String(), Segments: p.Inspect()})
		if err := sess.save(sessionPath); err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"pool_id": id, "size": size, "policy": policy.String()})
	},
}

var closeCommand = &cli.Command{
	Name:      "close",
	Usage:     "close a pool, freeing it from the session file",
	ArgsUsage: "<pool-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("close requires exactly one argument: <pool-id>")
		}
		id := c.Args().Get(0)

		sessionPath := c.String("session")
		sess, err := loadSession(sessionPath)
		if err != nil {
			return err
		}
		sp, err := sess.pool(id)
		if err != nil {
			return err
		}

		p, err := sp.restore()
		if err != nil {
			return err
		}
		if !p.Closeable() {
			return fmt.Errorf("pool %s still has live allocations or fragmented gaps", id)
		}
		p.Release()

		delete(sess.Pools, id)
		if err := sess.save(sessionPath); err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"pool_id": id, "closed": true})
	},
}

var allocCommand = &cli.Command{
	Name:      "alloc",
	Usage:     "allocate bytes from a pool",
	ArgsUsage: "<pool-id>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "size", Usage: "bytes to allocate", Required: true},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("alloc requires exactly one argument: <pool-id>")
		}
		id := c.Args().Get(0)
		requested := c.Int("size")

		sessionPath := c.String("session")
		sess, err := loadSession(sessionPath)
		if err != nil {
			return err
		}
		sp, err := sess.pool(id)
		if err != nil {
			return err
		}

		p, err := sp.restore()
		if err != nil {
			return err
		}
		h, err := p.Allocate(requested)
		if err != nil {
			return err
		}
		if !h.Valid() {
			return printJSON(map[string]interface{}{"pool_id": id, "alloc_base": nil, "reason": "no sufficient gap"})
		}
		base, _ := p.BaseOf(h)

		sp.Segments = p.Inspect()
		sess.Pools[id] = sp
		if err := sess.save(sessionPath); err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"pool_id": id, "alloc_base": base, "size": requested})
	},
}

var freeCommand = &cli.Command{
	Name:      "free",
	Usage:     "free a previously allocated range from a pool",
	ArgsUsage: "<pool-id> <alloc-base>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("free requires exactly two arguments: <pool-id> <alloc-base>")
		}
		id := c.Args().Get(0)
		var base int
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &base); err != nil {
			return fmt.Errorf("invalid alloc-base %q: %w", c.Args().Get(1), err)
		}

		sessionPath := c.String("session")
		sess, err := loadSession(sessionPath)
		if err != nil {
			return err
		}
		sp, err := sess.pool(id)
		if err != nil {
			return err
		}

		p, err := sp.restore()
		if err != nil {
			return err
		}
		if err := p.FreeAt(base); err != nil {
			return err
		}

		sp.Segments = p.Inspect()
		sess.Pools[id] = sp
		if err := sess.save(sessionPath); err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"pool_id": id, "freed_base": base})
	},
}

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "show a pool's segment table and aggregate stats",
	ArgsUsage: "<pool-id>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("inspect requires exactly one argument: <pool-id>")
		}
		id := c.Args().Get(0)

		sess, err := loadSession(c.String("session"))
		if err != nil {
			return err
		}
		sp, err := sess.pool(id)
		if err != nil {
			return err
		}

		totalSize, allocSize, numAllocs, numGaps := statsOf(sp.Segments)
		return printJSON(map[string]interface{}{
			"pool_id":    id,
			"policy":     sp.Policy,
			"total_size": totalSize,
			"alloc_size": allocSize,
			"num_allocs": numAllocs,
			"num_gaps":   numGaps,
			"segments":   sp.Segments,
		})
	},
}
