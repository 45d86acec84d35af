package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/emotion-detector/internal/config"
)

// Version is the application version.
const Version = "0.1.0"

var (
	cfg     *config.Config
	logger  *slog.Logger
	dbURL   string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "emotionctl",
	Short:         "Classify face images and inspect prediction history",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dbURL != "" {
			cfg.DatabaseURL = dbURL
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		// Tables go to stdout, so logs stay on stderr.
		logger = config.NewLogger(os.Stderr, cfg.Environment, &level)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log classifier selection and queries")
}
