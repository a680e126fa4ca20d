package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"finbook/csv-import/internal/models"
)

// SystemPrompt instructs the model to return compact JSON keyed by row
// hash, constrained to the master category list.
func SystemPrompt() string {
	return "You are a bookkeeping assistant.\n" +
		"- For each row, standardize vendor names (strip store numbers/codes).\n" +
		"- Map each row to one of: " + strings.Join(models.MasterCategories, ", ") + ".\n" +
		"- Flag duplicates or unusual charges in 'notes' with a short reason.\n" +
		"Return ONLY a compact JSON object with key 'rows':\n" +
		"  {\"rows\": [{date, vendor, amount, suggested_category, notes, rowhash}]}\n" +
		"Do not include markdown, code fences, or explanations."
}

// UserPrompt renders one batch as a numbered list, one transaction per
// line.
func UserPrompt(batch []Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Categorize these %d transactions:\n", len(batch))
	for i, row := range batch {
		fmt.Fprintf(&b, "%d. %s | %s | $%s | %s\n",
			i+1, row.Date, row.Description, row.Amount.StringFixed(2), row.RowHash)
	}
	return b.String()
}

type responseRow struct {
	Vendor            string `json:"vendor"`
	SuggestedCategory string `json:"suggested_category"`
	Notes             string `json:"notes"`
	RowHash           string `json:"rowhash"`
}

// ParseResponse decodes a model reply into results. Code fences are
// stripped first; models wrap replies in them no matter how firmly the
// prompt forbids it. Rows without a row hash are dropped since they
// cannot be mapped back.
func ParseResponse(content string) ([]Result, error) {
	trimmed := stripCodeFence(strings.TrimSpace(content))

	var payload struct {
		Rows []responseRow `json:"rows"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	results := make([]Result, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		if r.RowHash == "" {
			continue
		}
		results = append(results, Result{
			RowHash:  r.RowHash,
			Vendor:   r.Vendor,
			Category: r.SuggestedCategory,
			Notes:    r.Notes,
		})
	}
	return results, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
