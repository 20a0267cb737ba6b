package config

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/file"
)

const debounceDuration = 100 * time.Millisecond

// Watch re-reads and re-validates the configuration file at path
// whenever it changes on disk, debounced, and invokes onReload with
// the freshly loaded Store. It never restarts the process; a failed
// reload is logged and the previous Store keeps serving. Watch blocks
// until ctx is done.
func Watch(ctx context.Context, path string, log logr.Logger, onReload func(*Store)) error {
	if ctx.Err() != nil {
		return nil
	}

	var mu sync.Mutex
	var debounceTimer *time.Timer

	err := file.Provider(path).Watch(func(_ any, err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Info("failed watching config", "error", err)
			return
		}

		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(debounceDuration, func() {
			mu.Lock()
			defer mu.Unlock()

			log.Info("auto-reloading config")
			start := time.Now()
			store, err := Read(path, log)
			if err != nil {
				log.Info("failed to reload config", "error", err)
				return
			}
			onReload(store)
			log.Info("reloaded config successfully", "duration", time.Since(start).Round(time.Millisecond).String())
		})
		mu.Unlock()
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
