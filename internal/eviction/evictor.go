// Package eviction keeps a wallpaper directory within a byte budget by
// deleting the oldest files first.
//
// The directory listing is the only source of truth: every pass re-reads
// the directory instead of trusting in-process bookkeeping, so the evictor
// works no matter who wrote the files.
package eviction

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ohhboi427/backdrop/internal/errutil"
)

type entry struct {
	name    string
	size    int64
	modTime time.Time
}

// Evictor runs size-bounded eviction passes over Dir. It must not run
// concurrently with itself against the same directory; a pass snapshots the
// directory and assumes no interleaved writer.
type Evictor struct {
	Dir    string
	Policy Policy
}

// EnforceBudget runs one oldest-first eviction pass keeping dir at or under
// budget bytes.
func EnforceBudget(dir string, budget int64) error {
	e := &Evictor{Dir: dir, Policy: &MaxSize{MaxBytes: budget}}
	return e.Run()
}

// Run takes a fresh directory snapshot and deletes the oldest files until
// the policy is satisfied or nothing is left.
//
// Files whose metadata cannot be read are skipped entirely: they count
// neither toward the total size nor as eviction candidates. When the
// directory is already within budget the pass returns without touching the
// filesystem. Deletions are not transactional; a failed delete aborts the
// pass but files already removed stay removed.
func (e *Evictor) Run() error {
	dirEntries, err := os.ReadDir(e.Dir)
	if err != nil {
		return fmt.Errorf("failed to read wallpaper dir: %w", err)
	}

	var files []entry
	var total int64
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			errutil.LogMsg(err, "Skipping entry with unreadable metadata", "name", de.Name())
			continue
		}
		files = append(files, entry{name: de.Name(), size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
	}

	toFree, err := e.Policy.BytesToFree(total)
	if err != nil {
		return fmt.Errorf("failed to check capacity: %w", err)
	}
	if toFree <= 0 {
		return nil
	}

	target := total - toFree
	if target < 0 {
		target = 0
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	slog.Info("Evicting old wallpapers",
		"dir", e.Dir,
		"current", humanize.Bytes(uint64(total)),
		"target", humanize.Bytes(uint64(target)))

	for _, f := range files {
		if total <= target {
			break
		}
		if err := os.Remove(filepath.Join(e.Dir, f.name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f.name, err)
		}
		total -= f.size
		slog.Debug("Evicted wallpaper", "name", f.name, "size", f.size)
	}

	return nil
}
