package config

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a project's config file whenever it changes on disk and
// hands the new value to a callback. It never touches a Pool that is already
// open; only calls made after a reload lands see the new Defaults/Presets.
type Watcher struct {
	fsw       *fsnotify.Watcher
	root      string
	debounce  time.Duration
	onReload  func(cfg *Config, err error)
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	reloadsMu sync.Mutex
	reloads   int64
}

// NewWatcher creates a Watcher for the config file(s) under root. onReload
// is invoked after every debounced write, with the freshly loaded config, or
// with the error Load returned, or with the loaded config together with the
// error ValidateConfig returned.
func NewWatcher(root string, cfg WatchConfig, onReload func(cfg *Config, err error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(cfg.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: debounce,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching root for .subpool.kdl / .subpool.toml changes. The
// caller decides whether to call Start at all based on WatchConfig.Enabled.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Reloads reports how many debounced reload callbacks have fired.
func (w *Watcher) Reloads() int64 {
	w.reloadsMu.Lock()
	defer w.reloadsMu.Unlock()
	return w.reloads
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	pending := false

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}

		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			pending = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)

		case <-timerC:
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.root)
	if err == nil {
		err = ValidateConfig(cfg)
	}

	w.reloadsMu.Lock()
	w.reloads++
	w.reloadsMu.Unlock()

	if w.onReload != nil {
		w.onReload(cfg, err)
	}
}

func isConfigFile(name string) bool {
	return strings.HasSuffix(name, ".subpool.kdl") || strings.HasSuffix(name, ".subpool.toml")
}
