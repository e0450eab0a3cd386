package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sreshtalluri/polyratings-data-collection/internal/roster"
	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var lookupLimit *int

func init() {
	lookupLimit = lookupCmd.Flags().Int("limit", 5, "Maximum number of matches to show.")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>...",
	Short: "Fuzzy-search professor ids by name in the canonical roster.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		path := filepath.Join(cfg.Publisher.MainDir, "professor_name_to_id.csv")
		entries, err := roster.Load(path)
		if err != nil {
			serviceutil.Fatal("failed to load roster, run `polytrack collect` first", err)
		}

		matches := roster.Search(entries, strings.Join(args, " "), *lookupLimit)

		t := newTable()
		t.AppendHeader(table.Row{"name", "id", "department", "rating", "evals", "match"})
		for _, m := range matches {
			t.AppendRow(table.Row{
				m.Entry.FullName,
				m.Entry.Id,
				m.Entry.Department,
				strconv.FormatFloat(m.Entry.OverallRating, 'f', 2, 64),
				m.Entry.NumEvals,
				fmt.Sprintf("%.0f%%", m.Correlation*100),
			})
		}
		t.Render()
	},
}
