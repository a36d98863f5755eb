package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

// EntryOrigin tags what produced a balance history entry.
type EntryOrigin string

const (
	// OriginTransaction marks a change driven by a transaction.
	OriginTransaction EntryOrigin = "transaction"

	// OriginClearing marks a change driven by a clearing account's
	// resolved distribution.
	OriginClearing EntryOrigin = "clearing"
)

// HistoryEntry is one chronological balance delta for an account.
type HistoryEntry struct {
	Date time.Time `json:"date"`

	// Change is the signed delta this event contributed.
	Change decimal.Decimal `json:"change"`

	// Balance is the running cumulative balance after applying Change.
	Balance decimal.Decimal `json:"balance"`

	Origin EntryOrigin `json:"origin"`

	// OriginID is the originating transaction id or clearing account id,
	// depending on Origin.
	OriginID int `json:"origin_id"`
}

// AccountHistory reconstructs the chronologically ordered balance deltas for
// one account: one entry per transaction that touches it and one entry per
// clearing account whose resolution pushes to it, sorted ascending by date
// (stable, ties broken by collection order) with a running cumulative sum.
//
// An account untouched by any transaction or clearing event yields an empty
// slice, not an error.
func AccountHistory(ctx context.Context, transactions []*group.Transaction, accounts []*group.Account, accountID group.AccountID) ([]HistoryEntry, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("balance.history (account %d)", accountID))
	defer timer.End()

	entries := []HistoryEntry{}

	for _, raw := range transactions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		txn, err := Normalize(raw, nil)
		if err != nil {
			return nil, err
		}
		if txn.Deleted || (txn.IsWip && !txn.complete()) {
			continue
		}

		c, ok := txn.AccountBalances[accountID]
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{
			Date:     txn.LastChanged,
			Change:   c.Total,
			Origin:   OriginTransaction,
			OriginID: int(txn.ID),
		})
	}

	balances, err := ComputeBalances(ctx, transactions, accounts)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.Deleted || !account.IsClearing() {
			continue
		}
		rec, ok := balances[account.ID]
		if !ok {
			continue
		}
		change, ok := rec.ClearingResolution[accountID]
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{
			Date:     account.LastChanged,
			Change:   change,
			Origin:   OriginClearing,
			OriginID: int(account.ID),
		})
	}

	// Stable: equal dates keep collection order (transactions first).
	slices.SortStableFunc(entries, func(a, b HistoryEntry) int {
		return a.Date.Compare(b.Date)
	})

	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Change)
		entries[i].Balance = running
	}

	return entries, nil
}
