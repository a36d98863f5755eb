// Package balance derives per-account balances for a shared-expense group.
//
// The engine is a set of pure, synchronous transforms over immutable input
// snapshots: the normalizer merges a transaction's committed state with any
// pending edits into one canonical transaction; the per-transaction
// calculator splits that transaction's value over positions, debitor shares,
// and creditor shares; the aggregate engine folds every transaction and
// resolves clearing accounts topologically; the history builder reconstructs
// one account's chronological balance deltas.
//
// All monetary arithmetic uses decimal numbers. The engine performs no I/O
// and holds no cross-call state; callers re-invoke it in full whenever the
// transaction or account set changes and treat each result as an atomic,
// replaceable snapshot.
//
// Example usage:
//
//	balances, err := balance.ComputeBalances(ctx, transactions, accounts)
//	if err != nil {
//	    var verr *balance.ValidationErrors
//	    if errors.As(err, &verr) {
//	        for _, e := range verr.Errors {
//	            fmt.Println(e)
//	        }
//	    }
//	}
package balance

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// Contribution is one account's share of a single transaction, split into
// the three components the calculator produces.
//
// Invariant: Total = CommonCreditors - Positions - CommonDebitors.
type Contribution struct {
	// Positions is the amount owed from itemized position usage.
	Positions decimal.Decimal `json:"positions"`

	// CommonCreditors is the amount owed to this account via creditor shares.
	CommonCreditors decimal.Decimal `json:"common_creditors"`

	// CommonDebitors is the amount owed by this account via debitor shares.
	CommonDebitors decimal.Decimal `json:"common_debitors"`

	// Total is the net signed contribution.
	Total decimal.Decimal `json:"total"`
}

// Transaction is one canonical, normalized transaction: committed state
// merged with pending edits, detail fields resolved, positions deduplicated,
// and the per-account contribution map derived.
//
// A Transaction holds no back-references into the mutable input records; it
// is an immutable snapshot owned by the normalization that produced it.
type Transaction struct {
	ID    group.TransactionID
	Type  group.TransactionType
	IsWip bool

	Description    string
	Value          decimal.Decimal
	CurrencySymbol string
	ConversionRate decimal.Decimal
	BilledAt       time.Time
	LastChanged    time.Time
	Deleted        bool

	CreditorShares *group.Shares
	DebitorShares  *group.Shares

	Positions   []*group.Position
	Attachments []*group.Attachment

	// AccountBalances maps each involved account to its contribution.
	// Accounts untouched by this transaction are absent, not zero-valued.
	AccountBalances map[group.AccountID]Contribution
}

// InvolvedAccounts returns the ids of all accounts with a contribution,
// in ascending order.
func (t *Transaction) InvolvedAccounts() []group.AccountID {
	ids := make([]group.AccountID, 0, len(t.AccountBalances))
	for id := range t.AccountBalances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// complete reports whether the transaction carries everything aggregation
// needs. WIP transactions may be saved with empty shares; those are excluded
// from balances rather than rejected.
func (t *Transaction) complete() bool {
	return !t.CreditorShares.IsEmpty() && !t.DebitorShares.IsEmpty()
}
