package commands

import (
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/internal/runledger"
	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int64

func init() {
	historyLimit = historyCmd.Flags().Int64("limit", 20, "Maximum number of runs to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Show the most recent collection runs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		db, err := cfg.Database.OpenDB(runledger.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open run ledger", err)
		}
		defer db.Close()

		runs, err := runledger.NewStore(db).History(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to query run ledger", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"tag", "state", "started", "duration", "rows", "error"})
		for _, run := range runs {
			rows := int64(0)
			for _, d := range run.Datasets {
				rows += d.Rows
			}
			t.AppendRow(table.Row{
				run.Tag,
				run.State,
				run.StartedAt.Format(time.RFC3339),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
				rows,
				run.Error,
			})
		}
		t.Render()
	},
}
