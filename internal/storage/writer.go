// Package storage persists acquired photos into the wallpaper directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ohhboi427/backdrop/internal/acquire"
	"github.com/ohhboi427/backdrop/internal/errutil"
)

// ErrNothingToPersist is returned when Persist is given a failed outcome.
// Failures are reported to the caller, never written to disk.
var ErrNothingToPersist = errors.New("nothing to persist")

// Entry describes one file written to the wallpaper directory.
type Entry struct {
	Path      string
	Size      int64
	WrittenAt time.Time
}

// Writer persists successful download outcomes under Dir, one file per
// photo named `<id>.<format>`. Writing the same photo id again overwrites
// the previous file.
type Writer struct {
	Dir    string
	Format string
}

// Prepare creates the destination directory and any missing parents.
// Call it once before persisting a batch.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create wallpaper dir: %w", err)
	}
	return nil
}

// Persist writes one outcome's payload to its deterministic path.
//
// The payload goes to a temp file first and is renamed into place, so a
// concurrent reader never observes a half-written wallpaper. A failed
// outcome yields ErrNothingToPersist and touches nothing.
func (w *Writer) Persist(outcome acquire.Outcome) (Entry, error) {
	if outcome.Failed() {
		return Entry{}, ErrNothingToPersist
	}

	finalPath := filepath.Join(w.Dir, outcome.Photo.ID+"."+w.Format)

	tmpFile, err := os.CreateTemp(w.Dir, "backdrop-*")
	if err != nil {
		return Entry{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		// No-op after a successful rename.
		if err := os.Remove(tmpFile.Name()); err != nil && !os.IsNotExist(err) {
			errutil.LogMsg(err, "Failed to remove temp file", "path", tmpFile.Name())
		}
	}()

	if _, err := tmpFile.Write(outcome.Data); err != nil {
		_ = tmpFile.Close()
		return Entry{}, fmt.Errorf("failed to write %s: %w", finalPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return Entry{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return Entry{}, fmt.Errorf("failed to rename to final path: %w", err)
	}

	return Entry{
		Path:      finalPath,
		Size:      int64(len(outcome.Data)),
		WrittenAt: time.Now(),
	}, nil
}
