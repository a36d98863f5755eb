// Package loader reads group snapshots: JSON exports of a group's accounts
// and transactions in the shape the balance engine consumes.
//
// A snapshot is one JSON object:
//
//	{
//	  "group": {"id": 1, "name": "Flat", "currency_symbol": "€"},
//	  "accounts": [...],
//	  "transactions": [...]
//	}
//
// Decoding applies the model's boundary enforcement (share weights, position
// prices); the loader additionally checks structural validity (known kinds
// and types, unique ids) and, optionally, referential integrity of share
// mappings.
//
// Example usage:
//
//	ldr := loader.New(loader.WithCheckReferences())
//	snapshot, err := ldr.Load(ctx, "group.json")
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

// GroupInfo is the snapshot's group header. The engine itself never reads
// it; it carries display metadata for the CLI and web surfaces.
type GroupInfo struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	CurrencySymbol string `json:"currency_symbol"`
}

// Snapshot is one decoded group snapshot.
type Snapshot struct {
	Group        GroupInfo            `json:"group"`
	Accounts     []*group.Account     `json:"accounts"`
	Transactions []*group.Transaction `json:"transactions"`
}

// Account returns the account with the given id, or nil.
func (s *Snapshot) Account(id group.AccountID) *group.Account {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Loader decodes and validates group snapshots.
//
// Configure the loader using functional options passed to New:
//
//	ldr := New(WithCheckReferences())
type Loader struct {
	// CheckReferences verifies that every share mapping (creditor, debitor,
	// usages, clearing) references an account present in the snapshot.
	// When false (default), unknown ids are tolerated; the engine conserves
	// money by creating records for them on demand.
	CheckReferences bool
}

// Option configures how snapshots are loaded.
type Option func(*Loader)

// WithCheckReferences configures the loader to reject snapshots whose share
// mappings reference accounts missing from the account list.
func WithCheckReferences() Option {
	return func(l *Loader) {
		l.CheckReferences = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes a snapshot file.
func (l *Loader) Load(ctx context.Context, filename string) (*Snapshot, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("loader.load %s", filepath.Base(filename)))
	defer timer.End()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.LoadBytes(ctx, filename, data)
}

// LoadBytes decodes a snapshot from memory. The filename is used only for
// error messages.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	if err := l.validate(&snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", filename, err)
	}

	return &snapshot, nil
}

// validate checks structural validity of the decoded snapshot.
func (l *Loader) validate(s *Snapshot) error {
	accountIDs := make(map[group.AccountID]bool, len(s.Accounts))
	for _, a := range s.Accounts {
		if !a.Kind.Valid() {
			return fmt.Errorf("account %d has unknown kind %q", a.ID, a.Kind)
		}
		if accountIDs[a.ID] {
			return fmt.Errorf("duplicate account id %d", a.ID)
		}
		accountIDs[a.ID] = true

		if a.Kind == group.AccountKindPersonal && !a.ClearingShares.IsEmpty() {
			return fmt.Errorf("personal account %d carries clearing shares", a.ID)
		}
	}

	txnIDs := make(map[group.TransactionID]bool, len(s.Transactions))
	for _, t := range s.Transactions {
		if !t.Type.Valid() {
			return fmt.Errorf("transaction %d has unknown type %q", t.ID, t.Type)
		}
		if txnIDs[t.ID] {
			return fmt.Errorf("duplicate transaction id %d", t.ID)
		}
		txnIDs[t.ID] = true
	}

	if !l.CheckReferences {
		return nil
	}

	known := func(shares *group.Shares, what string, owner int) error {
		for _, id := range shares.AccountIDs() {
			if !accountIDs[id] {
				return fmt.Errorf("%s of %d references unknown account %d", what, owner, id)
			}
		}
		return nil
	}

	for _, a := range s.Accounts {
		if err := known(a.ClearingShares, "clearing shares", int(a.ID)); err != nil {
			return err
		}
	}
	for _, t := range s.Transactions {
		for _, details := range []*group.TransactionDetails{t.CommittedDetails, t.PendingDetails} {
			if details == nil {
				continue
			}
			if err := known(details.CreditorShares, "creditor shares", int(t.ID)); err != nil {
				return err
			}
			if err := known(details.DebitorShares, "debitor shares", int(t.ID)); err != nil {
				return err
			}
		}
		for _, positions := range [][]*group.Position{t.CommittedPositions, t.PendingPositions} {
			for _, p := range positions {
				if err := known(p.Usages, "position usages", int(t.ID)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
