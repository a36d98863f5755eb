package balance

import (
	"github.com/shopspring/decimal"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// Normalize merges one server transaction record with locally pending edits
// into a canonical Transaction and derives its per-account contribution map.
//
// Detail fields resolve with precedence local override > server pending >
// server committed. Positions start from the committed list (minus deleted
// ones), are overlaid by server-pending then locally modified positions by
// id, and locally added positions are appended flagged OnlyLocal. The
// scratch empty position is appended too unless it is blank. Attachments
// resolve the same way as positions and pass through unchanged.
//
// Normalize is a pure function of its inputs; local may be nil.
func Normalize(txn *group.Transaction, local *group.PendingChanges) (*Transaction, error) {
	details, err := resolveDetails(txn, local)
	if err != nil {
		return nil, err
	}

	positions, err := resolvePositions(txn, local)
	if err != nil {
		return nil, err
	}

	rate := details.CurrencyConversionRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	out := &Transaction{
		ID:             txn.ID,
		Type:           txn.Type,
		IsWip:          txn.IsWip,
		Description:    details.Description,
		Value:          details.Value,
		CurrencySymbol: details.CurrencySymbol,
		ConversionRate: rate,
		BilledAt:       details.BilledAt,
		LastChanged:    txn.LastChanged,
		Deleted:        details.Deleted,
		CreditorShares: details.CreditorShares.Copy(),
		DebitorShares:  details.DebitorShares.Copy(),
		Positions:      positions,
		Attachments:    resolveAttachments(txn),
	}

	if err := validateShares(txn, out); err != nil {
		return nil, err
	}

	balances, err := computeContributions(out)
	if err != nil {
		return nil, err
	}
	out.AccountBalances = balances

	return out, nil
}

// resolveDetails picks the canonical detail fields.
func resolveDetails(txn *group.Transaction, local *group.PendingChanges) (*group.TransactionDetails, error) {
	if local != nil && local.Details != nil {
		return local.Details, nil
	}
	if txn.PendingDetails != nil {
		return txn.PendingDetails, nil
	}
	if txn.CommittedDetails != nil {
		return txn.CommittedDetails, nil
	}
	return nil, NewMissingTransactionDetailsError(txn.ID)
}

// resolvePositions merges committed, server-pending, and local position
// state into one deduplicated list. Order is committed order, then
// server-only pending positions, then local additions.
func resolvePositions(txn *group.Transaction, local *group.PendingChanges) ([]*group.Position, error) {
	byID := make(map[group.PositionID]*group.Position)
	var order []group.PositionID

	add := func(p *group.Position) {
		if _, seen := byID[p.ID]; !seen {
			order = append(order, p.ID)
		}
		byID[p.ID] = p
	}

	for _, p := range txn.CommittedPositions {
		if p.Deleted {
			continue
		}
		add(p)
	}
	for _, p := range txn.PendingPositions {
		add(p)
	}

	if local != nil {
		for id, change := range local.Positions {
			switch change.Kind {
			case group.ChangeModified:
				add(change.Position)
			case group.ChangeAdded:
				p := change.Position.Copy()
				p.OnlyLocal = true
				add(p)
			case group.ChangeDeleted:
				if existing, ok := byID[id]; ok {
					deleted := existing.Copy()
					deleted.Deleted = true
					byID[id] = deleted
				}
			}
		}
		if local.EmptyPosition != nil && !local.EmptyPosition.IsEmpty() {
			p := local.EmptyPosition.Copy()
			p.OnlyLocal = true
			add(p)
		}
	}

	positions := make([]*group.Position, 0, len(order))
	for _, id := range order {
		p := byID[id]
		if p.Deleted {
			continue
		}
		if p.Price.IsNegative() {
			return nil, NewInvalidPositionPriceError(txn.ID, p)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// resolveAttachments merges committed and pending attachments, excluding
// deleted ones. Attachments have no balance semantics.
func resolveAttachments(txn *group.Transaction) []*group.Attachment {
	byID := make(map[int]*group.Attachment)
	var order []int

	for _, a := range txn.CommittedAttachments {
		if _, seen := byID[a.ID]; !seen {
			order = append(order, a.ID)
		}
		byID[a.ID] = a
	}
	for _, a := range txn.PendingAttachments {
		if _, seen := byID[a.ID]; !seen {
			order = append(order, a.ID)
		}
		byID[a.ID] = a
	}

	attachments := make([]*group.Attachment, 0, len(order))
	for _, id := range order {
		if a := byID[id]; !a.Deleted {
			attachments = append(attachments, a)
		}
	}
	return attachments
}

// validateShares enforces the non-empty share requirement for committed
// transactions. WIP transactions are exempt; they are excluded from
// aggregation while incomplete instead.
func validateShares(raw *group.Transaction, txn *Transaction) error {
	if txn.IsWip || txn.Deleted {
		return nil
	}
	if txn.CreditorShares.IsEmpty() {
		return NewEmptyShareSetError(raw, "creditor")
	}
	if txn.DebitorShares.IsEmpty() {
		return NewEmptyShareSetError(raw, "debitor")
	}
	return nil
}
