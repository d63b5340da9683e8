package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ohhboi427/backdrop/internal/acquire"
	"github.com/ohhboi427/backdrop/internal/config"
	"github.com/ohhboi427/backdrop/internal/errutil"
	"github.com/ohhboi427/backdrop/internal/eviction"
	"github.com/ohhboi427/backdrop/internal/storage"
	"github.com/ohhboi427/backdrop/internal/unsplash"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download a batch of wallpapers and enforce the size budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}

		client, err := unsplash.NewClient(config.AccessKey(viper.GetViper()), nil)
		if err != nil {
			return fmt.Errorf("%w: set BACKDROP_ACCESS_KEY", err)
		}

		crit := unsplash.Criteria{
			Count: cfg.Fetch.Count,
			Query: cfg.Fetch.Query,
		}
		if cfg.Fetch.Topic != "" {
			topic, err := client.FindTopic(ctx, cfg.Fetch.Topic)
			if err != nil {
				return fmt.Errorf("failed to resolve topic %q: %w", cfg.Fetch.Topic, err)
			}
			crit.Topic = topic.ID
		}

		// Resolution failures are batch-fatal: with no photo list there is
		// nothing to fan out.
		photos, err := client.Random(ctx, crit)
		if err != nil {
			return fmt.Errorf("failed to fetch photo list: %w", err)
		}
		slog.Info("Fetched photo batch", "count", len(photos))

		var quality unsplash.Quality
		if cfg.Download.Custom() {
			quality = unsplash.CustomQuality(cfg.Download.Width, cfg.Download.Height)
		}

		bar := progressbar.NewOptions(len(photos),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprint(os.Stderr, "\n"); err != nil {
					errutil.LogMsg(err, "Failed to print newline to stderr")
				}
			}),
		)

		acq := &acquire.Acquirer{
			Client:   client,
			Quality:  quality,
			Format:   cfg.Download.Format,
			Progress: bar,
		}
		outcomes := acq.Acquire(ctx, photos)

		writer := &storage.Writer{Dir: cfg.Folder, Format: cfg.Download.Format}
		if err := writer.Prepare(); err != nil {
			return err
		}

		var saved, failed int
		var savedBytes int64
		for _, outcome := range outcomes {
			if outcome.Failed() {
				failed++
				errutil.LogMsg(outcome.Err, "Download failed", "photo", outcome.Photo.ID)
				continue
			}
			entry, err := writer.Persist(outcome)
			if err != nil {
				failed++
				errutil.LogMsg(err, "Failed to save wallpaper", "photo", outcome.Photo.ID)
				continue
			}
			saved++
			savedBytes += entry.Size
			slog.Debug("Saved wallpaper", "path", entry.Path, "size", entry.Size)
		}

		slog.Info("Batch complete",
			"saved", saved,
			"failed", failed,
			"bytes", humanize.Bytes(uint64(savedBytes)),
			"folder", cfg.Folder)

		if err := eviction.EnforceBudget(cfg.Folder, cfg.MaxSize); err != nil {
			return fmt.Errorf("eviction failed: %w", err)
		}

		if saved == 0 && len(outcomes) > 0 {
			return errors.New("every download in the batch failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("count", 0, "Number of wallpapers to fetch")
	runCmd.Flags().String("topic", "", "Topic id or slug to fetch from")
	runCmd.Flags().String("query", "", "Free-text search filter")
	runCmd.Flags().String("folder", "", "Wallpaper destination folder")
	runCmd.Flags().Int64("max-size", 0, "Folder size budget in bytes")

	errutil.LogMsg(viper.BindPFlag("fetch.count", runCmd.Flags().Lookup("count")), "Failed to bind flag")
	errutil.LogMsg(viper.BindPFlag("fetch.topic", runCmd.Flags().Lookup("topic")), "Failed to bind flag")
	errutil.LogMsg(viper.BindPFlag("fetch.query", runCmd.Flags().Lookup("query")), "Failed to bind flag")
	errutil.LogMsg(viper.BindPFlag("folder", runCmd.Flags().Lookup("folder")), "Failed to bind flag")
	errutil.LogMsg(viper.BindPFlag("max_size", runCmd.Flags().Lookup("max-size")), "Failed to bind flag")
}
