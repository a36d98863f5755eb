// Package group defines the plain data model the balance engine consumes:
// accounts, transactions with committed and pending state, purchase
// positions, share mappings, and locally pending edits.
//
// The types here are externally supplied, already-deserialized records. The
// package owns no persistence and no transport; it enforces only the value
// invariants the engine relies on (non-negative share weights, non-negative
// position prices) at construction and decode time.
package group

import "time"

// AccountID uniquely identifies an account within a group.
type AccountID int

// TransactionID uniquely identifies a transaction within a group.
type TransactionID int

// PositionID identifies a purchase position within its transaction.
// Negative ids denote locally generated, not-yet-persisted positions.
type PositionID int

// AccountKind distinguishes personal accounts from clearing accounts.
type AccountKind string

const (
	// AccountKindPersonal is a regular account settled directly.
	AccountKindPersonal AccountKind = "personal"

	// AccountKindClearing is a virtual account whose balance is not settled
	// directly but redistributed to other accounts via its clearing shares.
	AccountKindClearing AccountKind = "clearing"
)

// Valid reports whether the kind is one of the known account kinds.
func (k AccountKind) Valid() bool {
	return k == AccountKindPersonal || k == AccountKindClearing
}

// Account is a group member account or a clearing account. Accounts are
// created and mutated by an external account-management component; the
// engine only reads them.
type Account struct {
	ID   AccountID   `json:"id"`
	Kind AccountKind `json:"kind"`
	Name string      `json:"name"`

	// ClearingShares maps target accounts to redistribution weights.
	// Only meaningful for clearing accounts.
	ClearingShares *Shares `json:"clearing_shares,omitempty"`

	Deleted     bool      `json:"deleted"`
	LastChanged time.Time `json:"last_changed"`
}

// IsClearing reports whether the account is a clearing account with a
// non-empty redistribution mapping, i.e. one the resolver must process.
func (a *Account) IsClearing() bool {
	return a.Kind == AccountKindClearing && !a.ClearingShares.IsEmpty()
}
