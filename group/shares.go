package group

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Shares maps account ids to positive share weights.
//
// Shares back every fractional-ownership concept in the group model: who paid
// a transaction (creditor shares), who consumed its common portion (debitor
// shares), who used a purchase position (usages), and how a clearing account
// redistributes its balance (clearing shares).
//
// Two invariants are enforced at this boundary so the balance engine never
// has to re-check them:
//   - Weights are strictly positive. A negative weight is rejected with
//     InvalidShareWeightError; setting a weight to zero removes the entry,
//     so "present with weight 0" and "absent" are the same state.
//   - Iteration order is deterministic (ascending account id).
type Shares struct {
	weights map[AccountID]decimal.Decimal
}

// InvalidShareWeightError is returned when a negative weight is supplied
// for a share mapping.
type InvalidShareWeightError struct {
	Account AccountID
	Weight  decimal.Decimal
}

func (e *InvalidShareWeightError) Error() string {
	return fmt.Sprintf("invalid share weight %s for account %d: weights must be non-negative", e.Weight, e.Account)
}

// NewShares creates an empty share mapping.
func NewShares() *Shares {
	return &Shares{weights: make(map[AccountID]decimal.Decimal)}
}

// SharesFromMap creates a share mapping from a plain map, applying boundary
// enforcement: zero weights are dropped, negative weights are rejected.
func SharesFromMap(m map[AccountID]decimal.Decimal) (*Shares, error) {
	s := NewShares()
	for id, w := range m {
		if err := s.Set(id, w); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustShares is like SharesFromMap but panics on a negative weight.
// Use only in tests or when the weights are known to be valid.
func MustShares(m map[AccountID]decimal.Decimal) *Shares {
	s, err := SharesFromMap(m)
	if err != nil {
		panic(err)
	}
	return s
}

// Set stores the weight for an account. A zero weight removes the entry; a
// negative weight is rejected with InvalidShareWeightError.
func (s *Shares) Set(id AccountID, weight decimal.Decimal) error {
	if weight.IsNegative() {
		return &InvalidShareWeightError{Account: id, Weight: weight}
	}
	if weight.IsZero() {
		delete(s.weights, id)
		return nil
	}
	s.weights[id] = weight
	return nil
}

// Get returns the weight for an account, or zero if absent.
func (s *Shares) Get(id AccountID) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return s.weights[id]
}

// Has reports whether the account holds a share.
func (s *Shares) Has(id AccountID) bool {
	if s == nil {
		return false
	}
	_, ok := s.weights[id]
	return ok
}

// Len returns the number of accounts holding a share.
func (s *Shares) Len() int {
	if s == nil {
		return 0
	}
	return len(s.weights)
}

// IsEmpty reports whether no account holds a share.
func (s *Shares) IsEmpty() bool {
	return s.Len() == 0
}

// Total returns the sum of all weights. An empty mapping totals zero;
// callers must guard distributions against a zero total.
func (s *Shares) Total() decimal.Decimal {
	total := decimal.Zero
	if s == nil {
		return total
	}
	for _, w := range s.weights {
		total = total.Add(w)
	}
	return total
}

// AccountIDs returns the participating account ids in ascending order.
func (s *Shares) AccountIDs() []AccountID {
	if s == nil {
		return nil
	}
	ids := make([]AccountID, 0, len(s.weights))
	for id := range s.weights {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Copy creates a deep copy of the share mapping.
func (s *Shares) Copy() *Shares {
	c := NewShares()
	if s == nil {
		return c
	}
	for id, w := range s.weights {
		c.weights[id] = w
	}
	return c
}

// ToMap converts the shares to a plain map for convenience.
func (s *Shares) ToMap() map[AccountID]decimal.Decimal {
	m := make(map[AccountID]decimal.Decimal)
	if s == nil {
		return m
	}
	for id, w := range s.weights {
		m[id] = w
	}
	return m
}

// MarshalJSON encodes the shares as an object keyed by stringified account id.
func (s *Shares) MarshalJSON() ([]byte, error) {
	m := make(map[string]decimal.Decimal, s.Len())
	if s != nil {
		for id, w := range s.weights {
			m[strconv.Itoa(int(id))] = w
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by stringified account id, applying
// the same boundary enforcement as Set.
func (s *Shares) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.weights = make(map[AccountID]decimal.Decimal, len(raw))
	for key, w := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid account id %q in share mapping: %w", key, err)
		}
		if err := s.Set(AccountID(id), w); err != nil {
			return err
		}
	}
	return nil
}

// String returns a human-readable representation, ordered by account id.
func (s *Shares) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	out := "{"
	for i, id := range s.AccountIDs() {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d: %s", id, s.weights[id])
	}
	return out + "}"
}
