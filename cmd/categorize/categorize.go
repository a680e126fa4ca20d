// Package categorize implements the categorize command: the assisted
// categorization pass over rows the import left uncategorized.
package categorize

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
	pipeline "finbook/csv-import/internal/categorize"
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize imported transactions",
	Long: `Categorize fetches transactions without a category, applies the vendor
mapping rules first, and sends what is left to the configured AI
classifier in batches. Without an API key the pass is rules-only. A dry
run applies nothing and calls no external service.`,
	RunE: categorizeFunc,
}

var (
	batchSize int
	limit     int
	dryRun    bool
)

func init() {
	Cmd.Flags().IntVar(&batchSize, "batch", 0, "Rows per classifier call (default from config)")
	Cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to fetch, 0 for all")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing or calling the classifier")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	cfg := root.GetConfig()

	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		BatchSize: batchSize,
		Limit:     limit,
		Pause:     time.Duration(cfg.AI.PauseSeconds) * time.Second,
		DryRun:    dryRun,
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = cfg.AI.BatchSize
	}

	summary, err := cont.GetCategorizeRunner().Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if summary.DryRun {
		cmd.Println("Dry run: nothing was written.")
		cmd.Printf("%d uncategorized row(s): %d would be categorized by rules, %d left for the classifier\n",
			summary.Processed, summary.ByRule, summary.Remaining)
		return nil
	}

	cmd.Printf("%d uncategorized row(s): %d categorized by rules, %d by the classifier, %d remaining\n",
		summary.Processed, summary.ByRule, summary.ByAI, summary.Remaining)
	if summary.HasErrors() {
		return fmt.Errorf("%d row(s) failed classification and stay uncategorized", summary.Failed)
	}
	return nil
}
