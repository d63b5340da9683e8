package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ohhboi427/backdrop/internal/errutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "backdrop",
	Short: "Keeps a folder stocked with fresh wallpapers",
	Long: `backdrop downloads random wallpapers matching your configured topic or
search query and keeps the wallpaper folder under a size budget by deleting
the oldest files first.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, printErr := fmt.Fprintln(os.Stderr, err); printErr != nil {
			errutil.ReportError(printErr, "Failed to print error to stderr")
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/backdrop/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}
