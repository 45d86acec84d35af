package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/emotion-detector/internal/database"
	"github.com/Brownie44l1/emotion-detector/internal/domain"
	"github.com/Brownie44l1/emotion-detector/internal/repository"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := historyLimit
		if limit <= 0 {
			limit = cfg.HistoryLimit
		}

		pool, err := database.NewPool(cmd.Context(), database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		predictions, err := repository.NewPredictionRepository(pool).Latest(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), predictions)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of rows (default: $HISTORY_LIMIT)")
	rootCmd.AddCommand(historyCmd)
}

func printHistory(out io.Writer, predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		_, err := fmt.Fprintln(out, "No predictions recorded yet.")
		return err
	}

	counts := lo.CountValuesBy(predictions, func(p domain.Prediction) string { return p.Emotion })

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMOTION\tIMAGE\tDATE")
	fmt.Fprintln(w, "--\t----\t-------\t-----\t----")
	for _, p := range predictions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Emotion, p.ImagePath, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	summary := lo.Map(lo.Keys(counts), func(emotion string, _ int) string {
		return fmt.Sprintf("%s=%d", emotion, counts[emotion])
	})
	slices.Sort(summary)
	_, err := fmt.Fprintf(out, "\n%s\n", strings.Join(summary, "  "))
	return err
}
