package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/emotion-detector/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down|version",
	Short:     "Manage the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = migrator.Close() }()

		out := cmd.OutOrStdout()
		switch args[0] {
		case "up":
			if err := migrator.Up(); err != nil {
				return err
			}
			fmt.Fprintln(out, "migrations applied")
		case "down":
			if err := migrator.Down(); err != nil {
				return err
			}
			fmt.Fprintln(out, "rolled back one migration")
		case "version":
			version, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(out, "version %d (dirty)\n", version)
			} else {
				fmt.Fprintf(out, "version %d\n", version)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
