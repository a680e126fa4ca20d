// Package rules implements the vendor rule management commands.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finbook/csv-import/cmd/root"
	"finbook/csv-import/internal/common"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/models"
)

// Cmd represents the rules command group.
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage vendor categorization rules",
	Long: `Rules map description patterns to categories and are applied before
the AI classifier. The highest-priority matching rule wins; ties go to
the oldest rule.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active vendor rules",
	RunE:  listFunc,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a vendor rule",
	RunE:  addFunc,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import vendor rules from a CSV sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  importRulesFunc,
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the active vendor rules to a CSV sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  exportRulesFunc,
}

var (
	pattern  string
	category string
	isRegex  bool
	priority int
)

func init() {
	addCmd.Flags().StringVar(&pattern, "pattern", "", "Description pattern to match (required)")
	addCmd.Flags().StringVar(&category, "category", "", "Category to assign (required)")
	addCmd.Flags().BoolVar(&isRegex, "regex", false, "Treat the pattern as a regular expression")
	addCmd.Flags().IntVar(&priority, "priority", 0, "Rule priority, higher wins")
	addCmd.MarkFlagRequired("pattern")
	addCmd.MarkFlagRequired("category")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(exportCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	ruleSet, err := cont.GetStore().ActiveVendorRules(cmd.Context())
	if err != nil {
		return err
	}
	if len(ruleSet) == 0 {
		cmd.Println("No active vendor rules.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tTYPE\tPATTERN\tCATEGORY")
	for _, r := range ruleSet {
		kind := "literal"
		if r.IsRegex {
			kind = "regex"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.Priority, kind, r.Pattern, r.Category)
	}
	return w.Flush()
}

func addFunc(cmd *cobra.Command, args []string) error {
	rule, err := buildRule(pattern, category, isRegex, priority)
	if err != nil {
		return err
	}

	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := cont.GetStore().AddVendorRule(cmd.Context(), &rule); err != nil {
		return err
	}

	cmd.Printf("Added rule %d: %s -> %s\n", rule.ID, rule.Pattern, rule.Category)
	return nil
}

func importRulesFunc(cmd *cobra.Command, args []string) error {
	rows, err := common.ReadCSVFile[models.VendorRuleSheetRow](args[0])
	if err != nil {
		return err
	}

	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	for i, row := range rows {
		rule, err := buildRule(row.Pattern, row.Category, row.IsRegex, row.Priority)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := cont.GetStore().AddVendorRule(cmd.Context(), &rule); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	cmd.Printf("Imported %d rule(s) from %s\n", len(rows), args[0])
	return nil
}

func exportRulesFunc(cmd *cobra.Command, args []string) error {
	cont, err := root.GetContainer(cmd.Context())
	if err != nil {
		return err
	}

	ruleSet, err := cont.GetStore().ActiveVendorRules(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]models.VendorRuleSheetRow, len(ruleSet))
	for i, r := range ruleSet {
		rows[i] = r.ToSheetRow()
	}
	if err := common.WriteCSVFile(rows, args[0]); err != nil {
		return err
	}

	cmd.Printf("Exported %d rule(s) to %s\n", len(rows), args[0])
	return nil
}

// buildRule validates one rule definition, from flags or a sheet row.
func buildRule(pattern, category string, isRegex bool, priority int) (models.VendorMappingRule, error) {
	var rule models.VendorMappingRule
	if strings.TrimSpace(pattern) == "" {
		return rule, &importerror.ValidationError{Field: "pattern", Msg: "must not be empty"}
	}
	if !models.IsMasterCategory(category) {
		return rule, &importerror.ValidationError{
			Field: "category",
			Msg:   fmt.Sprintf("%q is not a known category (one of %s)", category, strings.Join(models.MasterCategories, ", ")),
		}
	}
	if isRegex {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return rule, &importerror.ValidationError{Field: "pattern", Msg: err.Error()}
		}
	}
	return models.VendorMappingRule{
		Pattern:  pattern,
		Category: category,
		IsRegex:  isRegex,
		Priority: priority,
		Active:   true,
	}, nil
}
