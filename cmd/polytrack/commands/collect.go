package commands

import (
	"log/slog"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one full collection and publish the datasets.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		result, err := runCollection(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("collection run failed", err)
		}

		slog.Info(
			"run published",
			"tag", result.Tag,
			"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Second),
		)
		for _, d := range result.Datasets {
			slog.Info("dataset published", "name", d.Name, "rows", d.Rows)
		}
	},
}
