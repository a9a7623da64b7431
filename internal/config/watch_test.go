package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/subpool/testhelpers"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".subpool.kdl")
	writeFile(t, path, `
defaults {
    size 1024
}
`)

	var reloaded atomic.Value // *Config
	w, err := NewWatcher(root, WatchConfig{DebounceMs: 20}, func(cfg *Config, err error) {
		require.NoError(t, err)
		reloaded.Store(cfg)
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`
defaults {
    size 2048
}
`), 0o644))

	testhelpers.WaitFor(t, func() bool { return w.Reloads() > 0 }, 2*time.Second)

	cfg, ok := reloaded.Load().(*Config)
	require.True(t, ok)
	require.Equal(t, 2048, cfg.Defaults.Size)
}

func TestWatcher_StopWithNoEventsRecordsNoReloads(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root, WatchConfig{DebounceMs: 10}, func(*Config, error) {})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.Equal(t, int64(0), w.Reloads())
}
