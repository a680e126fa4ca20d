// Package dupes implements the duplicate review commands: exporting the
// pending review sheet and resolving groups a reviewer has decided on.
package dupes

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/common"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/models"
)

// Cmd represents the dupes command group.
var Cmd = &cobra.Command{
	Use:   "dupes",
	Short: "Review possible duplicate transactions",
	Long: `Imports flag rows that share a date and amount with another row as a
possible duplicate group. 'report' exports the pending groups for a
human to look at; 'resolve' applies the decision.`,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show or export the pending review sheet",
	RunE:  reportFunc,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve one duplicate group",
	Long: `Resolve applies a review decision to a whole group: 'keep' and
'ignore' mark the rows as reviewed and leave them in place; 'merge'
does the same and flags the group for manual consolidation; 'delete'
keeps only the transaction named by --keep-id and removes the other
group members.`,
	RunE: resolveFunc,
}

var (
	outFile    string
	groupID    string
	action     string
	keepID     int64
	notes      string
	reviewedBy string
)

func init() {
	reportCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the sheet to this CSV file instead of stdout")

	resolveCmd.Flags().StringVar(&groupID, "group", "", "Group id to resolve, e.g. DUP_0001 (required)")
	resolveCmd.Flags().StringVar(&action, "action", "", "Decision: keep, merge, delete or ignore (required)")
	resolveCmd.Flags().Int64Var(&keepID, "keep-id", 0, "Transaction id to keep (required for delete)")
	resolveCmd.Flags().StringVar(&notes, "notes", "", "Reviewer notes recorded with the decision")
	resolveCmd.Flags().StringVar(&reviewedBy, "by", "cli", "Reviewer name recorded with the decision")
	resolveCmd.MarkFlagRequired("group")
	resolveCmd.MarkFlagRequired("action")

	Cmd.AddCommand(reportCmd)
	Cmd.AddCommand(resolveCmd)
}

func reportFunc(cmd *cobra.Command, args []string) error {
	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	rows, err := cont.GetStore().PendingReviewRows(cmd.Context())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		cmd.Println("No pending duplicate groups.")
		return nil
	}

	if outFile != "" {
		if err := common.WriteCSVFile(rows, outFile); err != nil {
			return err
		}
		cmd.Printf("Wrote %d review row(s) to %s\n", len(rows), outFile)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tROWS\tDATE\tAMOUNT\tDESCRIPTION\tACCOUNT\tSIMILARITY")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.GroupID, r.GroupCount, r.Date, r.Amount.StringFixed(2),
			r.Description, r.Account, r.Similarity.StringFixed(2))
	}
	return w.Flush()
}

func resolveFunc(cmd *cobra.Command, args []string) error {
	if !models.IsReviewAction(action) {
		return &importerror.ValidationError{
			Field: "action",
			Msg:   fmt.Sprintf("%q (one of %s)", action, strings.Join(models.ReviewActions, ", ")),
		}
	}
	if action == models.ReviewActionDelete && keepID == 0 {
		return &importerror.ValidationError{Field: "keep-id", Msg: fmt.Sprintf("required for action %q", action)}
	}

	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	res, err := cont.GetStore().ResolveReviewGroup(cmd.Context(), groupID, action, keepID, reviewedBy, notes)
	if err != nil {
		return err
	}

	if res.Deleted > 0 {
		cmd.Printf("Group %s resolved (%s): kept transaction %d, deleted %d row(s)\n",
			res.GroupID, res.Action, res.Kept, res.Deleted)
	} else {
		cmd.Printf("Group %s resolved (%s): %d row(s) left in place\n",
			res.GroupID, res.Action, res.Members)
	}
	return nil
}
