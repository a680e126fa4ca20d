package models

import "time"

// VendorMappingRule maps a description pattern to a category. Rules are
// evaluated in priority order (highest first, then oldest first) and the
// first match wins.
type VendorMappingRule struct {
	ID        int64
	Pattern   string
	Category  string
	IsRegex   bool
	Priority  int
	Active    bool
	CreatedAt time.Time
}

// VendorRuleSheetRow is the CSV shape used by `rules import` and
// `rules export`.
type VendorRuleSheetRow struct {
	Pattern  string `csv:"Pattern"`
	Category string `csv:"Category"`
	IsRegex  bool   `csv:"IsRegex"`
	Priority int    `csv:"Priority"`
}

// ToRule converts a sheet row into a store rule. Imported rules are active
// by default.
func (r VendorRuleSheetRow) ToRule() VendorMappingRule {
	return VendorMappingRule{
		Pattern:  r.Pattern,
		Category: r.Category,
		IsRegex:  r.IsRegex,
		Priority: r.Priority,
		Active:   true,
	}
}

// ToSheetRow converts a store rule into its CSV export shape.
func (r VendorMappingRule) ToSheetRow() VendorRuleSheetRow {
	return VendorRuleSheetRow{
		Pattern:  r.Pattern,
		Category: r.Category,
		IsRegex:  r.IsRegex,
		Priority: r.Priority,
	}
}
