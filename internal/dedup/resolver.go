// Package dedup decides, for every normalized row in a batch, whether
// it is new, an exact duplicate of something already imported, or a
// candidate for manual review. Exact duplicates are matched in strict
// priority order: transaction id and account first, then reference with
// date and amount, then the row hash. Rows that survive exact matching
// but share a date and amount with other rows are grouped and flagged
// for review rather than dropped.
package dedup

import (
	"context"
	"fmt"
	"time"

	"finbook/csv-import/internal/fingerprint"
	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"

	"github.com/shopspring/decimal"
)

// Disposition classifies the outcome of duplicate resolution for one row.
type Disposition string

const (
	DispositionNew             Disposition = "new"
	DispositionExactDuplicate  Disposition = "exact_duplicate"
	DispositionReviewCandidate Disposition = "review_candidate"
)

// Similarity scores assigned to review candidates. Rows whose normalized
// descriptions also match score high; a bare date and amount collision
// scores low.
var (
	SimilarityStrong = decimal.RequireFromString("0.85")
	SimilarityLoose  = decimal.RequireFromString("0.75")
)

// Store is the read surface the resolver needs from the record store.
type Store interface {
	HasTxnID(ctx context.Context, txnID, account string) (bool, error)
	HasReference(ctx context.Context, reference string, date time.Time, amount decimal.Decimal) (bool, error)
	HasRowHash(ctx context.Context, rowHash string) (bool, error)
	FindByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]models.CanonicalTransaction, error)
}

// GroupAllocator hands out duplicate group ids.
type GroupAllocator interface {
	NextDupGroupID(ctx context.Context) (string, error)
}

// Resolution is the verdict for a single batch row.
type Resolution struct {
	Transaction *models.CanonicalTransaction
	Disposition Disposition
	Reason      string
	GroupID     string
	Similarity  decimal.Decimal
}

// PeerFlag marks an already stored transaction that newly joined a
// duplicate group in this batch: it needs its group id written and a
// review entry staged.
type PeerFlag struct {
	TransactionID int64
	GroupID       string
	Similarity    decimal.Decimal
}

// Result is the full outcome of resolving one batch.
type Result struct {
	Resolutions []Resolution
	PeerFlags   []PeerFlag
}

// Survivors returns the resolutions that will be inserted: everything
// except exact duplicates.
func (r *Result) Survivors() []Resolution {
	var out []Resolution
	for _, res := range r.Resolutions {
		if res.Disposition != DispositionExactDuplicate {
			out = append(out, res)
		}
	}
	return out
}

// Counts tallies the batch by disposition.
func (r *Result) Counts() (fresh, duplicates, review int) {
	for _, res := range r.Resolutions {
		switch res.Disposition {
		case DispositionExactDuplicate:
			duplicates++
		case DispositionReviewCandidate:
			review++
		default:
			fresh++
		}
	}
	return fresh, duplicates, review
}

// Resolver runs duplicate resolution against a store snapshot.
type Resolver struct {
	store  Store
	groups GroupAllocator
	logger logging.Logger
}

func NewResolver(store Store, groups GroupAllocator, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &Resolver{store: store, groups: groups, logger: logger}
}

// Resolve classifies every row of the batch. Rows must already carry
// their fingerprints. The batch is processed in order, so when two rows
// in the same file collide the first one wins and the later one is the
// duplicate.
func (r *Resolver) Resolve(ctx context.Context, batch []*models.CanonicalTransaction) (*Result, error) {
	result := &Result{Resolutions: make([]Resolution, len(batch))}

	seenTxn := make(map[string]bool)
	seenRef := make(map[string]bool)
	seenHash := make(map[string]bool)

	var survivors []int
	for i, txn := range batch {
		res := Resolution{Transaction: txn, Disposition: DispositionNew}

		reason, err := r.exactMatch(ctx, txn, seenTxn, seenRef, seenHash)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			res.Disposition = DispositionExactDuplicate
			res.Reason = reason
			result.Resolutions[i] = res
			r.logger.Debug("skipping exact duplicate",
				logging.Field{Key: logging.FieldRowHash, Value: txn.RowHash},
				logging.Field{Key: "reason", Value: reason})
			continue
		}

		if txn.TxnID != "" {
			seenTxn[txn.TxnID+"|"+txn.Account] = true
		}
		if txn.Reference != "" {
			seenRef[txn.Reference+"|"+fingerprint.GroupKey(txn.Date, txn.Amount)] = true
		}
		seenHash[txn.RowHash] = true

		result.Resolutions[i] = res
		survivors = append(survivors, i)
	}

	if err := r.groupCollisions(ctx, result, survivors); err != nil {
		return nil, err
	}
	return result, nil
}

// exactMatch returns a non-empty reason when the row duplicates a stored
// or earlier batch row. Checks run in priority order and the first hit
// wins.
func (r *Resolver) exactMatch(ctx context.Context, txn *models.CanonicalTransaction, seenTxn, seenRef, seenHash map[string]bool) (string, error) {
	if txn.TxnID != "" {
		if seenTxn[txn.TxnID+"|"+txn.Account] {
			return "transaction id repeated in batch", nil
		}
		found, err := r.store.HasTxnID(ctx, txn.TxnID, txn.Account)
		if err != nil {
			return "", fmt.Errorf("txn id check for %s: %w", txn.RowHash, err)
		}
		if found {
			return "transaction id already imported", nil
		}
	}

	if txn.Reference != "" {
		if seenRef[txn.Reference+"|"+fingerprint.GroupKey(txn.Date, txn.Amount)] {
			return "reference repeated in batch", nil
		}
		found, err := r.store.HasReference(ctx, txn.Reference, txn.Date, txn.Amount)
		if err != nil {
			return "", fmt.Errorf("reference check for %s: %w", txn.RowHash, err)
		}
		if found {
			return "reference already imported", nil
		}
	}

	if seenHash[txn.RowHash] {
		return "row hash repeated in batch", nil
	}
	found, err := r.store.HasRowHash(ctx, txn.RowHash)
	if err != nil {
		return "", fmt.Errorf("row hash check for %s: %w", txn.RowHash, err)
	}
	if found {
		return "row hash already imported", nil
	}
	return "", nil
}

// groupCollisions finds date and amount collisions among the surviving
// rows and against the store, assigns group ids and similarity scores,
// and flags newly implicated stored rows.
func (r *Resolver) groupCollisions(ctx context.Context, result *Result, survivors []int) error {
	var keys []string
	byKey := make(map[string][]int)
	for _, i := range survivors {
		txn := result.Resolutions[i].Transaction
		key := fingerprint.GroupKey(txn.Date, txn.Amount)
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	for _, key := range keys {
		members := byKey[key]
		first := result.Resolutions[members[0]].Transaction

		peers, err := r.store.FindByDateAmount(ctx, first.Date, first.Amount)
		if err != nil {
			return fmt.Errorf("collision check for %s: %w", first.RowHash, err)
		}
		if len(members) == 1 && len(peers) == 0 {
			continue
		}

		groupID := ""
		for _, p := range peers {
			if p.PossibleDupGroup != "" {
				groupID = p.PossibleDupGroup
				break
			}
		}
		if groupID == "" {
			groupID, err = r.groups.NextDupGroupID(ctx)
			if err != nil {
				return fmt.Errorf("allocate dup group: %w", err)
			}
		}

		// Normalized descriptions of every group member, batch rows and
		// stored peers alike, for similarity scoring.
		descs := make([]string, 0, len(members)+len(peers))
		for _, i := range members {
			descs = append(descs, fingerprint.NormalizeDescription(result.Resolutions[i].Transaction.Description))
		}
		for _, p := range peers {
			descs = append(descs, fingerprint.NormalizeDescription(p.Description))
		}

		others := len(members) + len(peers) - 1
		reason := fmt.Sprintf("shares date and amount with %d other row(s)", others)
		for n, i := range members {
			res := &result.Resolutions[i]
			res.Disposition = DispositionReviewCandidate
			res.Reason = reason
			res.GroupID = groupID
			res.Similarity = similarityFor(descs, n)
			res.Transaction.PossibleDupGroup = groupID
		}
		for n, p := range peers {
			if p.PossibleDupGroup != "" {
				continue
			}
			result.PeerFlags = append(result.PeerFlags, PeerFlag{
				TransactionID: p.ID,
				GroupID:       groupID,
				Similarity:    similarityFor(descs, len(members)+n),
			})
		}

		r.logger.Debug("flagged duplicate group",
			logging.Field{Key: logging.FieldDupGroup, Value: groupID},
			logging.Field{Key: logging.FieldCount, Value: len(members) + len(peers)})
	}
	return nil
}

// similarityFor scores member i of a group: strong when its normalized
// description matches any other member, loose otherwise.
func similarityFor(descs []string, i int) decimal.Decimal {
	for j, d := range descs {
		if j != i && d == descs[i] {
			return SimilarityStrong
		}
	}
	return SimilarityLoose
}

// PreviewAllocator hands out group ids from a local counter without
// advancing the store sequence. Dry runs seed it with the current
// sequence value so the previewed ids match what a real run would
// assign.
type PreviewAllocator struct {
	n int64
}

func NewPreviewAllocator(current int64) *PreviewAllocator {
	return &PreviewAllocator{n: current}
}

func (p *PreviewAllocator) NextDupGroupID(ctx context.Context) (string, error) {
	p.n++
	return models.FormatDupGroup(p.n), nil
}
