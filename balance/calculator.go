package balance

import (
	"github.com/shopspring/decimal"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// computeContributions splits one canonical transaction's value over its
// positions, debitor shares, and creditor shares, producing each involved
// account's contribution.
//
// The walk mirrors how the money flows:
//
//  1. remaining starts at the transaction value.
//  2. Each position charges its usage accounts price*w/totalWeight and
//     returns its communist portion to remaining; the rest of the position
//     price leaves the common pot. A position with zero total usage weight
//     charges nobody and leaves remaining untouched.
//  3. remaining is split over the debitor shares.
//  4. The full value is credited over the creditor shares.
//
// Every component is scaled by the currency conversion rate. The returned
// map contains only accounts with a non-zero contribution.
func computeContributions(txn *Transaction) (map[group.AccountID]Contribution, error) {
	if txn.Deleted {
		return map[group.AccountID]Contribution{}, nil
	}

	switch txn.Type {
	case group.TransactionTypePurchase, group.TransactionTypeTransfer:
	default:
		// "mimo" is a recognized tag without defined distribution rules;
		// refuse to guess rather than invent semantics.
		return nil, NewUnsupportedTransactionTypeError(txn.ID, txn.Type)
	}

	positions := make(map[group.AccountID]decimal.Decimal)
	creditors := make(map[group.AccountID]decimal.Decimal)
	debitors := make(map[group.AccountID]decimal.Decimal)

	remaining := txn.Value

	if txn.Type == group.TransactionTypePurchase {
		for _, pos := range txn.Positions {
			totalWeight := pos.TotalUsageWeight()
			if totalWeight.IsZero() {
				// Charges nobody; dropped from reconciliation entirely.
				continue
			}

			for _, id := range pos.Usages.AccountIDs() {
				charge := pos.Price.Mul(pos.Usages.Get(id)).Div(totalWeight)
				positions[id] = positions[id].Add(charge)
			}

			// The communist portion of the position is billed via the
			// debitor shares instead of itemized usage.
			commonPortion := pos.Price.Mul(pos.CommunistShares).Div(totalWeight)
			remaining = remaining.Sub(pos.Price).Add(commonPortion)
		}
	}

	if debitorTotal := txn.DebitorShares.Total(); debitorTotal.IsPositive() {
		for _, id := range txn.DebitorShares.AccountIDs() {
			share := remaining.Mul(txn.DebitorShares.Get(id)).Div(debitorTotal)
			debitors[id] = debitors[id].Add(share)
		}
	}

	// Creditors are credited the full value, not the post-position remainder.
	if creditorTotal := txn.CreditorShares.Total(); creditorTotal.IsPositive() {
		for _, id := range txn.CreditorShares.AccountIDs() {
			share := txn.Value.Mul(txn.CreditorShares.Get(id)).Div(creditorTotal)
			creditors[id] = creditors[id].Add(share)
		}
	}

	touched := make(map[group.AccountID]struct{})
	for id := range positions {
		touched[id] = struct{}{}
	}
	for id := range creditors {
		touched[id] = struct{}{}
	}
	for id := range debitors {
		touched[id] = struct{}{}
	}

	contributions := make(map[group.AccountID]Contribution, len(touched))
	for id := range touched {
		c := Contribution{
			Positions:       positions[id].Mul(txn.ConversionRate),
			CommonCreditors: creditors[id].Mul(txn.ConversionRate),
			CommonDebitors:  debitors[id].Mul(txn.ConversionRate),
		}
		c.Total = c.CommonCreditors.Sub(c.Positions).Sub(c.CommonDebitors)

		if c.Positions.IsZero() && c.CommonCreditors.IsZero() && c.CommonDebitors.IsZero() {
			continue
		}
		contributions[id] = c
	}

	return contributions, nil
}
