// Package runs implements the runs command, a table of recent pipeline runs.
package runs

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
)

// Cmd represents the runs command.
var Cmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent processing runs",
	Long: `Runs lists the most recent entries from the processing log: imports,
categorization passes and review resolutions, newest first.`,
	RunE: runsFunc,
}

var limit int

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
}

func runsFunc(cmd *cobra.Command, args []string) error {
	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	entries, err := cont.GetStore().RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("No processing runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOPERATION\tSOURCE\tSTATUS\tPROCESSED\tINSERTED\tUPDATED\tSKIPPED\tERRORS\tSTARTED\tDURATION")
	for i := range entries {
		e := &entries[i]
		duration := "-"
		if e.Finished() {
			duration = e.Duration().Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			e.ID, e.OperationType, e.SourceFile, e.Status,
			e.RecordsProcessed, e.RecordsInserted, e.RecordsUpdated, e.RecordsSkipped,
			e.ErrorCount, e.StartedAt.Format("2006-01-02 15:04:05"), duration)
	}
	return w.Flush()
}
