package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sreshtalluri/polyratings-data-collection/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the canonical per-department summary.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		path := filepath.Join(cfg.Publisher.MainDir, "department_summary.csv")
		header, rows, err := readCanonicalCsv(path)
		if err != nil {
			serviceutil.Fatal("failed to read department summary, run `polytrack collect` first", err)
		}

		t := newTable()
		hrow := table.Row{}
		for _, cell := range header {
			hrow = append(hrow, cell)
		}
		t.AppendHeader(hrow)
		for _, row := range rows {
			r := table.Row{}
			for _, cell := range row {
				r = append(r, cell)
			}
			t.AppendRow(r)
		}
		t.Render()
	},
}

func readCanonicalCsv(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s has no header row", path)
	}
	return records[0], records[1:], nil
}
