package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string

	dbPath     string
	logLevel   string
	logFormat  string
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "packbnk",
	Short: "Pack archive and sound bank inspection tool",
	Long: `packbnk reads PFH pack archives, lists their contents and aggregates the
Wwise sound banks stored in them into a single table of HIRC objects and
embedded audio.

The aggregated result can be written to a SQLite index and queried later
with the query and lookup commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("database") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		slog.SetDefault(slog.New(newHandler(cfg.LogFormat, parseLevel(cfg.LogLevel))))

		slog.Debug("Configuration",
			"packs", cfg.Packs,
			"database", cfg.Database,
			"all_locales", cfg.AllLocales,
			"workers", cfg.Workers,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(format string, level slog.Level) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(os.Stderr, &tint.Options{Level: level})
}

// progressEnabled reports whether a progress bar may be drawn without
// interleaving with log output
func progressEnabled() bool {
	return !(noProgress || strings.ToLower(cfg.LogFormat) == "json" || strings.ToLower(cfg.LogLevel) == "debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is packbnk.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "SQLite index file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}
