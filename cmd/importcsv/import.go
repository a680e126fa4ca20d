// Package importcsv implements the import command, the front door of the
// ingestion pipeline.
package importcsv

import (
	"fmt"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/dateutils"
	"finbook/csv-import/internal/importer"
	"finbook/csv-import/internal/importerror"
)

// Cmd represents the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV exports from a directory",
	Long: `Import processes every CSV file in a directory: rows are normalized,
fingerprinted, checked against previous imports, categorized by vendor
rules and written to the store. Exact duplicates are skipped;
near-duplicates (same date and amount, different description) are
inserted but staged for review, see 'dupes'. Exit status is nonzero
when any file or row failed.`,
	RunE: importFunc,
}

var (
	inputDir   string
	recursive  bool
	since      string
	dryRun     bool
	sourceMode string
	profile    string
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory containing CSV exports (default from config)")
	Cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Walk subdirectories too")
	Cmd.Flags().StringVar(&since, "since", "", "Only import rows dated on or after this date (YYYY-MM-DD)")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full pipeline without writing anything")
	Cmd.Flags().StringVar(&sourceMode, "source-from", "", "Source label: 'filename' or a column name (default from config)")
	Cmd.Flags().StringVar(&profile, "profile", "", "Format profile name from the profile directory")
}

func importFunc(cmd *cobra.Command, args []string) error {
	cfg := root.GetConfig()

	opts := importer.Options{
		InputDir:   inputDir,
		Recursive:  recursive || cfg.Import.Recursive,
		DryRun:     dryRun,
		SourceMode: cfg.Import.SourceMode,
		Profile:    profile,
		ProfileDir: cfg.Import.ProfileDir,
		Delimiter:  []rune(cfg.CSV.Delimiter)[0],
	}
	if opts.InputDir == "" {
		opts.InputDir = cfg.Import.InputDir
	}
	if opts.InputDir == "" {
		return &importerror.ValidationError{Field: "input", Msg: "no input directory (use --input or set import.input_dir)"}
	}
	if cmd.Flags().Changed("source-from") {
		opts.SourceMode = sourceMode
	}
	if since != "" {
		date, err := dateutils.ParseDate(since)
		if err != nil {
			return &importerror.ValidationError{Field: "since", Msg: since}
		}
		opts.Since = date
	}

	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := cont.GetImporter().Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	if summary.HasErrors() {
		return fmt.Errorf("%d file(s) failed, %d malformed row(s) skipped", summary.FailedFiles, summary.RowErrors)
	}
	return nil
}

func printSummary(cmd *cobra.Command, s *importer.RunSummary) {
	if s.DryRun {
		cmd.Println("Dry run: nothing was written.")
	}
	for _, f := range s.Files {
		if f.Err != nil {
			cmd.Printf("  %s: FAILED: %v\n", f.File, f.Err)
			continue
		}
		cmd.Printf("  %s: %d rows, %d inserted, %d duplicates, %d flagged, %d malformed\n",
			f.File, f.RowsRead, f.Inserted, f.Skipped, f.Flagged, f.RowErrors)
	}
	cmd.Printf("Run %s (%s): %d processed, %d inserted, %d skipped, %d flagged for review, %d by rule, %d errors\n",
		s.RunID, s.Status, s.Processed, s.Inserted, s.Skipped, s.Flagged, s.ByRule,
		s.RowErrors+s.FailedFiles)
}
