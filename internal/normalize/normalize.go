// Package normalize reads raw bank and card CSV exports and reduces their
// rows to canonical transactions. It resolves real headers against a
// format profile's candidate lists, recognizes shifted exports, and
// collects per-row errors instead of aborting a file.
package normalize

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finbook/csv-import/internal/dateutils"
	"finbook/csv-import/internal/fileutils"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/models"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// SourceModeFilename derives each transaction's source from the file name
// stem. Any other non-empty source mode names a column to read instead.
const SourceModeFilename = "filename"

// Result holds everything normalization produced for one file: the
// canonical transactions plus the rows that had to be skipped.
type Result struct {
	Transactions []*models.CanonicalTransaction
	RowErrors    []*importerror.MalformedRowError
	RowsRead     int
}

// Normalizer turns one CSV file at a time into canonical transactions.
type Normalizer struct {
	profile    *Profile
	sourceMode string
	delimiter  rune
}

// New creates a Normalizer. A nil profile means auto-detection via the
// default candidate lists; a zero delimiter means comma.
func New(profile *Profile, sourceMode string, delimiter rune) *Normalizer {
	if profile == nil {
		profile = DefaultProfile()
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Normalizer{
		profile:    profile,
		sourceMode: sourceMode,
		delimiter:  delimiter,
	}
}

// chaseShiftHeaders is the positional layout applied when a file's data
// rows start with a slash date even though its header row claims a
// leading column. The classic case is a checking export whose "Details"
// column is present in the header but missing from every data row.
var chaseShiftHeaders = []string{
	"Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #", "Extra",
}

type amountStrategy int

const (
	amountSingle amountStrategy = iota
	amountPair
)

type layout struct {
	dateIdx   int
	descIdx   int
	strategy  amountStrategy
	amountIdx int
	debitIdx  int
	creditIdx int
	typeIdx   int
	txnIdx    int
	refIdx    int
	timeIdx   int
	acctIdx   int
	balIdx    int
	sourceIdx int
	shifted   bool
}

// NormalizeFile reads one CSV export. A file whose layout cannot be
// recognized fails as a whole with a FileReadError; individual bad rows
// are skipped and reported in the Result.
func (n *Normalizer) NormalizeFile(path string) (*Result, error) {
	file, err := fileutils.OpenFile(path)
	if err != nil {
		return nil, &importerror.FileReadError{File: path, Err: err}
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = n.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &importerror.FileReadError{File: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &importerror.FileReadError{File: path, Err: fmt.Errorf("file is empty")}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	data := records[1:]

	lay, err := n.resolveLayout(headers, data)
	if err != nil {
		return nil, &importerror.FileReadError{File: path, Err: err}
	}
	if lay.shifted {
		log.WithField("file", path).Info("Data rows shifted against header row, remapped columns positionally")
	}

	result := &Result{}
	for i, rec := range data {
		line := i + 2 // 1-based, header is line 1
		if isEmptyRow(rec) {
			continue
		}
		result.RowsRead++

		txn, rowErr := n.buildTransaction(lay, rec, path, line)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, rowErr)
			log.WithFields(logrus.Fields{"file": path, "line": line}).WithError(rowErr).Warn("Skipping malformed row")
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	log.WithFields(logrus.Fields{
		"file":    path,
		"rows":    result.RowsRead,
		"parsed":  len(result.Transactions),
		"skipped": len(result.RowErrors),
	}).Debug("Normalized file")
	return result, nil
}

func (n *Normalizer) resolveLayout(headers []string, data [][]string) (*layout, error) {
	p := n.profile
	dateIdx := findColumn(headers, p.Date)
	shifted := false

	// A first data cell that is a bare slash date, while the header row
	// says the date lives elsewhere, means the data rows are shifted one
	// column left of the header. Remap positionally and resolve again.
	if dateIdx != 0 && len(data) > 0 && len(data[0]) > 0 && dateutils.LooksLikeSlashDate(data[0][0]) {
		remapped := make([]string, len(headers))
		copy(remapped, headers)
		for i := 0; i < len(remapped) && i < len(chaseShiftHeaders); i++ {
			remapped[i] = chaseShiftHeaders[i]
		}
		headers = remapped
		dateIdx = findColumn(headers, p.Date)
		shifted = true
	}

	if dateIdx < 0 {
		return nil, fmt.Errorf("no date column among headers %v", headers)
	}
	// No description candidate falls back to the first column; exports
	// that omit the header tend to put the payee text there.
	descIdx := findColumn(headers, p.Description)
	if descIdx < 0 {
		descIdx = 0
	}

	lay := &layout{
		dateIdx:   dateIdx,
		descIdx:   descIdx,
		amountIdx: findColumn(headers, p.Amount),
		debitIdx:  findColumn(headers, p.Debit),
		creditIdx: findColumn(headers, p.Credit),
		typeIdx:   findColumn(headers, p.Type),
		txnIdx:    findColumn(headers, p.TxnID),
		refIdx:    findColumn(headers, p.Reference),
		timeIdx:   findColumn(headers, p.Time),
		acctIdx:   findColumn(headers, p.Account),
		balIdx:    findColumn(headers, p.Balance),
		sourceIdx: -1,
		shifted:   shifted,
	}

	switch {
	case lay.amountIdx >= 0:
		lay.strategy = amountSingle
	case lay.debitIdx >= 0 || lay.creditIdx >= 0:
		lay.strategy = amountPair
	default:
		return nil, fmt.Errorf("no amount column among headers %v", headers)
	}

	if n.sourceMode != "" && n.sourceMode != SourceModeFilename {
		lay.sourceIdx = findColumn(headers, []string{n.sourceMode})
	}

	return lay, nil
}

func (n *Normalizer) buildTransaction(lay *layout, rec []string, path string, line int) (*models.CanonicalTransaction, *importerror.MalformedRowError) {
	// The expected date column must parse; if it does not, probe the
	// neighboring columns. An extra or missing leading cell shifts every
	// field of the row by one, so the winning offset applies to all reads.
	offset := 0
	date, err := n.parseDate(cell(rec, lay.dateIdx))
	if err != nil {
		recovered := false
		for _, off := range []int{1, -1} {
			if probed, probeErr := n.parseDate(cell(rec, lay.dateIdx+off)); probeErr == nil {
				date = probed
				offset = off
				recovered = true
				break
			}
		}
		if !recovered {
			return nil, &importerror.MalformedRowError{
				File: path, Line: line, Field: "date", Value: cell(rec, lay.dateIdx), Err: err,
			}
		}
	}

	at := func(idx int) string {
		if idx < 0 {
			return ""
		}
		return strings.TrimSpace(cell(rec, idx+offset))
	}

	desc := at(lay.descIdx)
	if desc == "" {
		return nil, &importerror.MalformedRowError{
			File: path, Line: line, Field: "description", Value: "", Err: fmt.Errorf("empty description"),
		}
	}

	var amount decimal.Decimal
	switch lay.strategy {
	case amountSingle:
		raw := at(lay.amountIdx)
		amount, err = models.ParseAmount(raw)
		if err != nil {
			return nil, &importerror.MalformedRowError{
				File: path, Line: line, Field: "amount", Value: raw, Err: err,
			}
		}
		// Unsigned exports mark direction in a type column instead.
		if lay.typeIdx >= 0 && amount.IsPositive() && isDebitType(at(lay.typeIdx)) {
			amount = amount.Neg()
		}
	case amountPair:
		debitRaw := at(lay.debitIdx)
		creditRaw := at(lay.creditIdx)
		if debitRaw == "" && creditRaw == "" {
			return nil, &importerror.MalformedRowError{
				File: path, Line: line, Field: "amount", Value: "", Err: fmt.Errorf("no debit or credit value"),
			}
		}
		var debit, credit decimal.Decimal
		if debitRaw != "" {
			debit, err = models.ParseAmount(debitRaw)
			if err != nil {
				return nil, &importerror.MalformedRowError{
					File: path, Line: line, Field: "debit", Value: debitRaw, Err: err,
				}
			}
		}
		if creditRaw != "" {
			credit, err = models.ParseAmount(creditRaw)
			if err != nil {
				return nil, &importerror.MalformedRowError{
					File: path, Line: line, Field: "credit", Value: creditRaw, Err: err,
				}
			}
		}
		amount = credit.Sub(debit.Abs())
	}
	if n.profile.Negate {
		amount = amount.Neg()
	}

	txn := &models.CanonicalTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		TxnID:       at(lay.txnIdx),
		Reference:   at(lay.refIdx),
		TimePart:    at(lay.timeIdx),
		Account:     NormalizeAccount(at(lay.acctIdx)),
		Source:      n.sourceFor(lay, at, path),
	}
	if raw := at(lay.balIdx); raw != "" {
		if bal, err := models.ParseAmount(raw); err == nil {
			txn.Balance = decimal.NewNullDecimal(bal)
		}
	}
	return txn, nil
}

func (n *Normalizer) sourceFor(lay *layout, at func(int) string, path string) string {
	switch n.sourceMode {
	case "":
		return ""
	case SourceModeFilename:
		return fileutils.Stem(path)
	default:
		return at(lay.sourceIdx)
	}
}

func (n *Normalizer) parseDate(raw string) (time.Time, error) {
	return dateutils.ParseDateWithLayouts(raw, n.profile.DateFormats)
}

// NormalizeAccount reduces a raw account cell to a stable short form: the
// last four digits when the cell contains at least four, otherwise the
// cell itself capped at twelve characters. "XXXX-1234" and "1234" refer
// to the same account.
func NormalizeAccount(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() >= 4 {
		d := digits.String()
		return d[len(d)-4:]
	}

	runes := []rune(raw)
	if len(runes) > 12 {
		return string(runes[:12])
	}
	return raw
}

func isDebitType(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debit", "dr", "withdrawal", "charge":
		return true
	}
	return false
}

func findColumn(headers []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, header := range headers {
			if strings.EqualFold(header, candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func isEmptyRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
