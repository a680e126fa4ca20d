// Package fingerprint computes the stable identities of a normalized
// transaction: the deduplication hash, the full-content hash and the
// grouping key used to flag same-day same-amount collisions for review.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbook/csv-import/internal/models"
)

var collapsePattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NormalizeDescription reduces a raw description to the form used inside
// RowHash: lower-cased, with every run of punctuation and whitespace
// collapsed to a single space. "STARBUCKS  #123" and "Starbucks #123"
// fingerprint identically; "#123" vs "#456" still differ.
func NormalizeDescription(desc string) string {
	lowered := strings.ToLower(desc)
	collapsed := collapsePattern.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(collapsed)
}

// RowHash returns the deduplication identity of a transaction: the MD5 of
// date, normalized description and two-decimal amount joined with "|".
// Two rows with the same RowHash are the same transaction regardless of
// which file or export they arrived in.
func RowHash(date time.Time, desc string, amount decimal.Decimal) string {
	key := date.Format("2006-01-02") + "|" + NormalizeDescription(desc) + "|" + amount.StringFixed(2)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// originalKey is the JSON shape hashed into OriginalHash. Field order is
// fixed; changing it changes every stored hash.
type originalKey struct {
	Date   string `json:"date"`
	Desc   string `json:"desc"`
	Amount string `json:"amount"`
	Txn    string `json:"txn"`
	Ref    string `json:"ref"`
	Time   string `json:"time"`
	Acct   string `json:"acct"`
	Bal    string `json:"bal"`
}

// OriginalHash returns a 16-character content hash over every original
// field of the row: the first 16 hex characters of the SHA-256 of the
// compact JSON key. Unlike RowHash it distinguishes rows that differ only
// in balance, reference or account, which is what makes it useful when
// reviewing near-duplicates.
func OriginalHash(t *models.CanonicalTransaction) string {
	key := originalKey{
		Date:   t.DateString(),
		Desc:   strings.TrimSpace(t.Description),
		Amount: t.AmountString(),
		Txn:    t.TxnID,
		Ref:    t.Reference,
		Time:   t.TimePart,
		Acct:   t.Account,
	}
	if t.Balance.Valid {
		key.Bal = t.Balance.Decimal.StringFixed(2)
	}

	encoded, err := json.Marshal(key)
	if err != nil {
		// Marshaling a struct of strings cannot fail.
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16]
}

// GroupKey returns the (date, amount) collision key. Rows sharing a
// GroupKey but not a RowHash are potential duplicates and get staged for
// review.
func GroupKey(date time.Time, amount decimal.Decimal) string {
	return date.Format("2006-01-02") + "|" + amount.StringFixed(2)
}

// Annotate fills RowHash and OriginalHash on every transaction in the
// batch.
func Annotate(batch []*models.CanonicalTransaction) {
	for _, t := range batch {
		t.RowHash = RowHash(t.Date, t.Description, t.Amount)
		t.OriginalHash = OriginalHash(t)
	}
}
