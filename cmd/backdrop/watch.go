package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ohhboi427/backdrop/internal/config"
	"github.com/ohhboi427/backdrop/internal/eviction"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep enforcing the size budget until interrupted",
	Long: `watch runs the evictor continuously: once per interval, and again
whenever new files appear in the wallpaper folder. Useful when something
other than backdrop also writes into the folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}

		interval, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}
		minFree, err := cmd.Flags().GetInt64("min-free-space")
		if err != nil {
			return err
		}

		// The watcher needs the folder to exist before it can subscribe.
		if err := os.MkdirAll(cfg.Folder, 0755); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		monitor := &eviction.Monitor{
			Evictor: &eviction.Evictor{
				Dir:    cfg.Folder,
				Policy: pickPolicy(cfg, minFree),
			},
			Interval: interval,
		}

		slog.Info("Watching wallpaper folder", "folder", cfg.Folder, "interval", interval)
		return monitor.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", time.Minute, "Interval between scheduled eviction passes")
	watchCmd.Flags().Int64("min-free-space", 0, "Evict until this many bytes are free on disk (overrides max_size)")
}
