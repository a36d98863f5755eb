package group

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags the balance semantics of a transaction.
type TransactionType string

const (
	// TransactionTypePurchase is an itemizable expense: positions plus a
	// common portion split over the debitor shares.
	TransactionTypePurchase TransactionType = "purchase"

	// TransactionTypeTransfer moves money from creditors to debitors with
	// no positions.
	TransactionTypeTransfer TransactionType = "transfer"

	// TransactionTypeMimo is recognized as a valid tag but carries no
	// defined balance-distribution rule; the calculator rejects it.
	TransactionTypeMimo TransactionType = "mimo"
)

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeTransfer, TransactionTypeMimo:
		return true
	}
	return false
}

// TransactionDetails holds the editable detail fields of a transaction.
// A transaction carries up to two of these: the committed state and an
// optional server-side pending state reflecting an edit in progress.
type TransactionDetails struct {
	Description    string          `json:"description"`
	Value          decimal.Decimal `json:"value"`
	CurrencySymbol string          `json:"currency_symbol"`

	// CurrencyConversionRate converts the transaction currency into the
	// group currency. Zero means unset; the normalizer defaults it to 1.
	CurrencyConversionRate decimal.Decimal `json:"currency_conversion_rate"`

	BilledAt       time.Time `json:"billed_at"`
	CreditorShares *Shares   `json:"creditor_shares"`
	DebitorShares  *Shares   `json:"debitor_shares"`
	Deleted        bool      `json:"deleted"`
}

// Copy creates a deep copy of the details.
func (d *TransactionDetails) Copy() *TransactionDetails {
	if d == nil {
		return nil
	}
	c := *d
	c.CreditorShares = d.CreditorShares.Copy()
	c.DebitorShares = d.DebitorShares.Copy()
	return &c
}

// Attachment is a file attached to a transaction. Attachments carry no
// balance semantics and pass through normalization unchanged.
type Attachment struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	BlobID   int    `json:"blob_id"`
	Deleted  bool   `json:"deleted"`
}

// Transaction is the server-side record of a transaction before
// normalization: committed state plus optional pending (uncommitted) state.
type Transaction struct {
	ID   TransactionID   `json:"id"`
	Type TransactionType `json:"type"`

	// IsWip marks a transaction with uncommitted pending edits. WIP
	// transactions are exempt from the non-empty share requirement and are
	// excluded from aggregate balances while still incomplete.
	IsWip bool `json:"is_wip"`

	CommittedDetails *TransactionDetails `json:"committed_details"`
	PendingDetails   *TransactionDetails `json:"pending_details,omitempty"`

	CommittedPositions []*Position `json:"committed_positions,omitempty"`
	PendingPositions   []*Position `json:"pending_positions,omitempty"`

	CommittedAttachments []*Attachment `json:"committed_attachments,omitempty"`
	PendingAttachments   []*Attachment `json:"pending_attachments,omitempty"`

	LastChanged time.Time `json:"last_changed"`
}
