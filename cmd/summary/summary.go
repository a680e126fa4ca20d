// Package summary implements the summary command, a month-by-category
// rollup of imported transactions.
package summary

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/common"
	"finbook/csv-import/internal/models"
)

// Cmd represents the summary command.
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly totals per category",
	Long: `Summary aggregates imported transactions into expense and income
totals per category and month, most recent month first.`,
	RunE: summaryFunc,
}

var (
	months  int
	outFile string
)

func init() {
	Cmd.Flags().IntVarP(&months, "months", "m", 3, "Number of months to include")
	Cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the rollup to this CSV file instead of stdout")
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	rows, err := cont.GetStore().MonthlySummary(cmd.Context(), months)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		cmd.Printf("No transactions in the last %d month(s).\n", months)
		return nil
	}

	if outFile != "" {
		sheet := make([]models.SummarySheetRow, 0, len(rows))
		for i := range rows {
			sheet = append(sheet, rows[i].ToSheetRow())
		}
		if err := common.WriteCSVFile(sheet, outFile); err != nil {
			return err
		}
		cmd.Printf("Wrote %d summary row(s) to %s\n", len(sheet), outFile)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tCATEGORY\tCOUNT\tEXPENSES\tINCOME\tNET")
	for i := range rows {
		r := &rows[i]
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.MonthString(), r.Category, r.Count,
			r.Expenses.StringFixed(2), r.Income.StringFixed(2), r.Net.StringFixed(2))
	}
	return w.Flush()
}
