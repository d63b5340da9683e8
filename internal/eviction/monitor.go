package eviction

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ohhboi427/backdrop/internal/errutil"
)

// Monitor re-runs an eviction pass on a schedule and whenever new files
// land in the directory. Passes are serialized through the monitor loop,
// which keeps the evictor's exclusive-access assumption intact.
type Monitor struct {
	Evictor  *Evictor
	Interval time.Duration
}

// Start blocks until ctx is cancelled, running one eviction pass per tick
// and one per observed file creation or write.
func (m *Monitor) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		errutil.LogMsg(watcher.Close(), "Failed to close watcher")
	}()

	if err := watcher.Add(m.Evictor.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.Evictor.Dir, err)
	}

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			errutil.LogMsg(err, "Watcher error")
			continue
		}

		if err := m.Evictor.Run(); err != nil {
			errutil.ReportError(err, "Eviction pass failed")
		}
	}
}
