package main

import (
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ohhboi427/backdrop/internal/config"
	"github.com/ohhboi427/backdrop/internal/eviction"
)

var evictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Run one eviction pass over the wallpaper folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}

		minFree, err := cmd.Flags().GetInt64("min-free-space")
		if err != nil {
			return err
		}

		evictor := &eviction.Evictor{
			Dir:    cfg.Folder,
			Policy: pickPolicy(cfg, minFree),
		}
		if err := evictor.Run(); err != nil {
			return err
		}
		slog.Info("Eviction pass complete", "folder", cfg.Folder)
		return nil
	},
}

// pickPolicy keeps the folder under the configured byte budget, unless a
// min-free-space threshold overrides it.
func pickPolicy(cfg *config.Config, minFree int64) eviction.Policy {
	if minFree > 0 {
		slog.Info("Evicting to keep disk space free", "min_free", humanize.Bytes(uint64(minFree)))
		return &eviction.MinFreeSpace{
			Path:         cfg.Folder,
			MinFreeBytes: minFree,
		}
	}
	return &eviction.MaxSize{MaxBytes: cfg.MaxSize}
}

func init() {
	rootCmd.AddCommand(evictCmd)

	evictCmd.Flags().Int64("min-free-space", 0, "Evict until this many bytes are free on disk (overrides max_size)")
}
