package group

import (
	"github.com/shopspring/decimal"
)

// Position is a single line item within a purchase. Its price is billed to
// the accounts in Usages proportionally to their weights, with an optional
// shared (communist) portion that falls back to the transaction's debitor
// shares.
type Position struct {
	ID    PositionID      `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`

	// CommunistShares is the weight of the "split evenly among everyone"
	// portion of this position, relative to the usage weights.
	CommunistShares decimal.Decimal `json:"communist_shares"`

	Usages  *Shares `json:"usages"`
	Deleted bool    `json:"deleted"`

	// OnlyLocal marks a position added locally and not yet persisted.
	// Set by the normalizer, never by the server.
	OnlyLocal bool `json:"-"`
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	if p == nil {
		return nil
	}
	c := *p
	c.Usages = p.Usages.Copy()
	return &c
}

// IsEmpty reports whether the position is a blank scratch entry: no name,
// zero price, no usages and no communist share. The normalizer drops such
// positions instead of billing them.
func (p *Position) IsEmpty() bool {
	return p.Name == "" && p.Price.IsZero() && p.Usages.IsEmpty() && p.CommunistShares.IsZero()
}

// TotalUsageWeight returns the sum of the usage weights plus the communist
// share weight. A zero total means the position charges nobody.
func (p *Position) TotalUsageWeight() decimal.Decimal {
	return p.CommunistShares.Add(p.Usages.Total())
}
