package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

// AccountBalance is one account's derived balance record within a single
// recomputation.
type AccountBalance struct {
	// Balance is the current net balance after clearing resolution.
	Balance decimal.Decimal `json:"balance"`

	// BeforeClearing is the balance prior to clearing redistribution. For
	// clearing accounts the resolver records the full amount it split,
	// including inflow from upstream clearing accounts.
	BeforeClearing decimal.Decimal `json:"before_clearing"`

	// TotalPaid is the amount this account paid in, via creditor shares
	// and positive clearing inflow.
	TotalPaid decimal.Decimal `json:"total_paid"`

	// TotalConsumed is the amount this account consumed, via positions,
	// debitor shares, and negative clearing inflow.
	TotalConsumed decimal.Decimal `json:"total_consumed"`

	// ClearingResolution maps downstream accounts to the amount this
	// clearing account pushed to them. Populated only for clearing
	// accounts that had a balance to split.
	ClearingResolution map[group.AccountID]decimal.Decimal `json:"clearing_resolution"`
}

// Map maps account ids to their balance records. It is a recomputed value
// owned by the ComputeBalances invocation that produced it and must be
// treated as an immutable snapshot.
type Map map[group.AccountID]*AccountBalance

// AccountIDs returns the account ids present in the map, in ascending order.
func (m Map) AccountIDs() []group.AccountID {
	ids := make([]group.AccountID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func newAccountBalance() *AccountBalance {
	return &AccountBalance{
		Balance:            decimal.Zero,
		BeforeClearing:     decimal.Zero,
		TotalPaid:          decimal.Zero,
		TotalConsumed:      decimal.Zero,
		ClearingResolution: make(map[group.AccountID]decimal.Decimal),
	}
}

// ensure returns the record for an account, creating a zeroed one if the
// account was not initialized (e.g. a clearing target outside the account
// list). Money must never vanish because a recipient record was missing.
func (m Map) ensure(id group.AccountID) *AccountBalance {
	rec, ok := m[id]
	if !ok {
		rec = newAccountBalance()
		m[id] = rec
	}
	return rec
}

// ComputeBalances folds every transaction's per-account contributions and
// resolves clearing accounts, producing one balance record per non-deleted
// account.
//
// The computation is deterministic and side-effect-free given its inputs.
// The context is checked between transaction folds so a stale computation
// can be discarded cheaply; no partial state escapes on cancellation.
//
// Deleted transactions and incomplete work-in-progress transactions are
// skipped. Normalization errors across all transactions are collected into
// a ValidationErrors before aborting; a clearing cycle aborts with
// ClearingCycleError. On error the returned map is nil.
func ComputeBalances(ctx context.Context, transactions []*group.Transaction, accounts []*group.Account) (Map, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("balance.compute (%d transactions)", len(transactions)))
	defer timer.End()

	balances := make(Map, len(accounts))
	for _, account := range accounts {
		if account.Deleted {
			continue
		}
		balances[account.ID] = newAccountBalance()
	}

	var errs []error

	foldTimer := timer.Child("balance.fold")
	for _, raw := range transactions {
		select {
		case <-ctx.Done():
			foldTimer.End()
			return nil, ctx.Err()
		default:
		}

		txn, err := Normalize(raw, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if txn.Deleted {
			continue
		}
		if txn.IsWip && !txn.complete() {
			continue
		}

		for id, c := range txn.AccountBalances {
			rec := balances.ensure(id)
			rec.Balance = rec.Balance.Add(c.Total)
			rec.TotalPaid = rec.TotalPaid.Add(c.CommonCreditors)
			rec.TotalConsumed = rec.TotalConsumed.Add(c.Positions).Add(c.CommonDebitors)
			rec.BeforeClearing = rec.Balance
		}
	}
	foldTimer.End()

	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	clearingTimer := timer.Child("balance.clearing")
	err := resolveClearing(balances, accounts)
	clearingTimer.End()
	if err != nil {
		return nil, err
	}

	return balances, nil
}
