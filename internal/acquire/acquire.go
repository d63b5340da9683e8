// Package acquire downloads a batch of photos concurrently, collecting an
// independent outcome per photo. One failed download never aborts or alters
// the others; the caller always gets exactly one outcome per input photo.
package acquire

import (
	"context"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ohhboi427/backdrop/internal/unsplash"
)

// Downloader fetches the content of one photo. Implemented by
// *unsplash.Client.
type Downloader interface {
	Download(ctx context.Context, photo unsplash.Photo, quality unsplash.Quality, format string) ([]byte, error)
}

// Outcome is the terminal result of acquiring one photo: either Data or Err
// is set, never both.
type Outcome struct {
	Photo unsplash.Photo
	Data  []byte
	Err   error
}

// Failed reports whether the acquisition of this photo failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Acquirer fans a photo batch out into concurrent downloads.
type Acquirer struct {
	Client  Downloader
	Quality unsplash.Quality
	Format  string

	// Limit caps the number of in-flight downloads. Zero means no cap;
	// batches are caller-bounded to tens of items.
	Limit int

	// Progress, when set, is advanced once per completed photo.
	Progress *progressbar.ProgressBar
}

// Acquire downloads every photo and returns one outcome per input, in input
// order. It blocks until all downloads reach a terminal state; a failure of
// one download is captured in its own outcome and does not cancel the rest.
func (a *Acquirer) Acquire(ctx context.Context, photos []unsplash.Photo) []Outcome {
	outcomes := make([]Outcome, len(photos))

	var g errgroup.Group
	if a.Limit > 0 {
		g.SetLimit(a.Limit)
	}
	for i, photo := range photos {
		g.Go(func() error {
			data, err := a.Client.Download(ctx, photo, a.Quality, a.Format)
			outcomes[i] = Outcome{Photo: photo, Data: data, Err: err}
			if a.Progress != nil {
				_ = a.Progress.Add(1)
			}
			// Errors stay in the outcome slot; returning one here would
			// make Wait report it as a batch failure.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
