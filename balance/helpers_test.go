package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// Test fixture builders. Weights and amounts are given as strings to keep
// the tables readable.

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func shares(m map[group.AccountID]string) *group.Shares {
	weights := make(map[group.AccountID]decimal.Decimal, len(m))
	for id, w := range m {
		weights[id] = amt(w)
	}
	return group.MustShares(weights)
}

func details(value string, creditors, debitors map[group.AccountID]string) *group.TransactionDetails {
	return &group.TransactionDetails{
		Description:    "test",
		Value:          amt(value),
		CurrencySymbol: "€",
		BilledAt:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreditorShares: shares(creditors),
		DebitorShares:  shares(debitors),
	}
}

func transfer(id group.TransactionID, value string, creditors, debitors map[group.AccountID]string) *group.Transaction {
	return &group.Transaction{
		ID:               id,
		Type:             group.TransactionTypeTransfer,
		CommittedDetails: details(value, creditors, debitors),
		LastChanged:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func purchase(id group.TransactionID, value string, creditors, debitors map[group.AccountID]string, positions ...*group.Position) *group.Transaction {
	return &group.Transaction{
		ID:                 id,
		Type:               group.TransactionTypePurchase,
		CommittedDetails:   details(value, creditors, debitors),
		CommittedPositions: positions,
		LastChanged:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func position(id group.PositionID, price string, communist string, usages map[group.AccountID]string) *group.Position {
	return &group.Position{
		ID:              id,
		Name:            "item",
		Price:           amt(price),
		CommunistShares: amt(communist),
		Usages:          shares(usages),
	}
}

func personal(id group.AccountID, name string) *group.Account {
	return &group.Account{
		ID:          id,
		Kind:        group.AccountKindPersonal,
		Name:        name,
		LastChanged: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func clearing(id group.AccountID, name string, targets map[group.AccountID]string) *group.Account {
	return &group.Account{
		ID:             id,
		Kind:           group.AccountKindClearing,
		Name:           name,
		ClearingShares: shares(targets),
		LastChanged:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// assertAmount compares within the engine's reconciliation tolerance, since
// proportional splits divide at finite precision.
func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !AmountEqual(amt(want), got, DefaultTolerance) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
