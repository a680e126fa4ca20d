package normalize

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile describes how to read one bank's export: which header names map
// to which canonical field, which date layouts to try first, and whether
// the amount sign needs flipping. Every list is a candidate list in
// priority order; matching is case-insensitive on trimmed headers.
type Profile struct {
	Name        string   `yaml:"name"`
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Amount      []string `yaml:"amount"`
	Debit       []string `yaml:"debit"`
	Credit      []string `yaml:"credit"`
	Type        []string `yaml:"type"`
	TxnID       []string `yaml:"txn_id"`
	Reference   []string `yaml:"reference"`
	Time        []string `yaml:"time"`
	Account     []string `yaml:"account"`
	Balance     []string `yaml:"balance"`
	DateFormats []string `yaml:"date_formats"`
	Negate      bool     `yaml:"negate"`
}

// DefaultProfile returns the auto-detection profile: the candidate lists
// that cover the bank and card exports seen in the wild. Card exports
// that write expenses as positive numbers need a custom profile with
// negate set.
func DefaultProfile() *Profile {
	return &Profile{
		Name:        "auto",
		Date:        []string{"Date", "Transaction Date", "Trans Date", "Posted Date", "Post Date", "TransactionDate", "Posting Date"},
		Description: []string{"Description", "Payee", "Memo", "Name", "Details", "Transaction Description", "Merchant", "Vendor", "Narrative"},
		Amount:      []string{"Amount", "Amount ($)", "Transaction Amount", "Purchase Amount", "Amt"},
		Debit:       []string{"Debit", "Withdrawal", "Withdrawals", "Outflow", "Charges"},
		Credit:      []string{"Credit", "Deposit", "Deposits", "Inflow", "Income"},
		Type:        []string{"Type", "Transaction Type", "Debit/Credit"},
		TxnID:       []string{"Transaction ID", "FITID", "ID", "TxnId", "Confirmation Number"},
		Reference:   []string{"Reference", "Ref", "Check Number", "Check #", "Check or Slip #", "Reference Number"},
		Time:        []string{"Time", "Transaction Time", "Posted Time"},
		Account:     []string{"Account", "Account Number", "Acct", "Account #"},
		Balance:     []string{"Balance", "Running Balance", "Current Balance", "Bal"},
	}
}

// LoadProfile reads <dir>/<name>.yaml and merges it over the defaults:
// lists the profile leaves empty keep their default candidates, so a
// profile only has to pin what differs.
func LoadProfile(dir, name string) (*Profile, error) {
	path := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var loaded Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	merged := DefaultProfile()
	merged.Name = name
	if loaded.Name != "" {
		merged.Name = loaded.Name
	}
	overlay := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	overlay(&merged.Date, loaded.Date)
	overlay(&merged.Description, loaded.Description)
	overlay(&merged.Amount, loaded.Amount)
	overlay(&merged.Debit, loaded.Debit)
	overlay(&merged.Credit, loaded.Credit)
	overlay(&merged.Type, loaded.Type)
	overlay(&merged.TxnID, loaded.TxnID)
	overlay(&merged.Reference, loaded.Reference)
	overlay(&merged.Time, loaded.Time)
	overlay(&merged.Account, loaded.Account)
	overlay(&merged.Balance, loaded.Balance)
	merged.DateFormats = loaded.DateFormats
	merged.Negate = loaded.Negate

	return merged, nil
}
