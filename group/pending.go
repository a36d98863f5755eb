package group

// ChangeKind tags the local edit state of a position.
type ChangeKind int

const (
	// ChangeUnmodified means the server state is canonical.
	ChangeUnmodified ChangeKind = iota

	// ChangeModified replaces the server position with a local edit.
	ChangeModified

	// ChangeAdded introduces a position that exists only locally.
	ChangeAdded

	// ChangeDeleted removes the position locally.
	ChangeDeleted
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeUnmodified:
		return "unmodified"
	case ChangeModified:
		return "modified"
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// PositionChange is a tagged variant describing one locally pending position
// edit. Position is the full local state for Modified and Added changes and
// nil for Deleted ones.
type PositionChange struct {
	Kind     ChangeKind
	Position *Position
}

// ModifiedPosition builds a change that overrides the server position with
// the same id.
func ModifiedPosition(p *Position) PositionChange {
	return PositionChange{Kind: ChangeModified, Position: p}
}

// AddedPosition builds a change that appends a local-only position. Locally
// generated ids are negative until the server persists them.
func AddedPosition(p *Position) PositionChange {
	return PositionChange{Kind: ChangeAdded, Position: p}
}

// DeletedPosition builds a change that removes a position locally.
func DeletedPosition() PositionChange {
	return PositionChange{Kind: ChangeDeleted}
}

// PendingChanges collects the locally pending, unsaved edits to one
// transaction. The zero value means no local edits.
type PendingChanges struct {
	// Details overrides the transaction detail fields when non-nil. It
	// takes precedence over both server-pending and committed details.
	Details *TransactionDetails

	// Positions maps position ids to their local edit state. Ids absent
	// from the map are unmodified.
	Positions map[PositionID]PositionChange

	// EmptyPosition is the scratch position used for in-progress item
	// entry. It is appended as a local-only position unless it is blank.
	EmptyPosition *Position
}

// HasEdits reports whether any local edit is pending.
func (c *PendingChanges) HasEdits() bool {
	if c == nil {
		return false
	}
	return c.Details != nil || len(c.Positions) > 0 || (c.EmptyPosition != nil && !c.EmptyPosition.IsEmpty())
}
