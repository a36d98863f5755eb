package balance

import (
	"fmt"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// Error types for normalization and aggregation failures.
//
// All errors are detected eagerly during normalization or aggregation and
// abort the single recomputation that hit them. The engine never retries and
// never returns a partially resolved balance map alongside an error.

// ValidationErrors wraps all errors collected across one recomputation.
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// MissingTransactionDetailsError is returned when a transaction carries
// neither committed nor pending details. Upstream invariants make this
// unreachable for well-formed data; treat it as a programming-error signal
// rather than a recoverable user-facing condition.
type MissingTransactionDetailsError struct {
	Transaction group.TransactionID
}

func (e *MissingTransactionDetailsError) Error() string {
	return fmt.Sprintf("transaction %d has neither committed nor pending details", e.Transaction)
}

func (e *MissingTransactionDetailsError) GetTransaction() group.TransactionID {
	return e.Transaction
}

// EmptyShareSetError is returned when a committed (non-WIP) transaction has
// empty creditor or debitor shares. Work-in-progress transactions are exempt
// and instead excluded from aggregation while incomplete.
type EmptyShareSetError struct {
	Transaction group.TransactionID
	Type        group.TransactionType
	Side        string // "creditor" or "debitor"
}

func (e *EmptyShareSetError) Error() string {
	return fmt.Sprintf("%s transaction %d has empty %s shares", e.Type, e.Transaction, e.Side)
}

func (e *EmptyShareSetError) GetTransaction() group.TransactionID {
	return e.Transaction
}

// InvalidPositionPriceError is returned when a position carries a negative
// price. Rejected when the position is normalized, before any balance math.
type InvalidPositionPriceError struct {
	Transaction group.TransactionID
	Position    group.PositionID
	Price       string
}

func (e *InvalidPositionPriceError) Error() string {
	return fmt.Sprintf("transaction %d: position %d has invalid price %s", e.Transaction, e.Position, e.Price)
}

func (e *InvalidPositionPriceError) GetTransaction() group.TransactionID {
	return e.Transaction
}

// UnsupportedTransactionTypeError is returned when the calculator encounters
// a transaction type it has no distribution rule for. The "mimo" tag is
// valid on the wire but its balance semantics are deliberately undefined;
// the calculator refuses to guess.
type UnsupportedTransactionTypeError struct {
	Transaction group.TransactionID
	Type        group.TransactionType
}

func (e *UnsupportedTransactionTypeError) Error() string {
	return fmt.Sprintf("transaction %d has unsupported type %q", e.Transaction, e.Type)
}

func (e *UnsupportedTransactionTypeError) GetTransaction() group.TransactionID {
	return e.Transaction
}

// ClearingCycleError is returned when the clearing-share graph contains a
// cycle. Cyclic clearing is not supported; the recomputation fails instead
// of looping or double-counting.
type ClearingCycleError struct {
	Account group.AccountID
}

func (e *ClearingCycleError) Error() string {
	return fmt.Sprintf("clearing shares form a cycle involving account %d", e.Account)
}

func (e *ClearingCycleError) GetAccount() group.AccountID {
	return e.Account
}

// Constructor functions for balance errors.
// These provide a cleaner API and ensure consistent field initialization.

// NewMissingTransactionDetailsError creates an error for a transaction with
// neither committed nor pending details.
func NewMissingTransactionDetailsError(id group.TransactionID) *MissingTransactionDetailsError {
	return &MissingTransactionDetailsError{Transaction: id}
}

// NewEmptyShareSetError creates an error for a committed transaction with an
// empty creditor or debitor share mapping.
func NewEmptyShareSetError(txn *group.Transaction, side string) *EmptyShareSetError {
	return &EmptyShareSetError{
		Transaction: txn.ID,
		Type:        txn.Type,
		Side:        side,
	}
}

// NewInvalidPositionPriceError creates an error for a position with a
// negative price.
func NewInvalidPositionPriceError(txnID group.TransactionID, pos *group.Position) *InvalidPositionPriceError {
	return &InvalidPositionPriceError{
		Transaction: txnID,
		Position:    pos.ID,
		Price:       pos.Price.String(),
	}
}

// NewUnsupportedTransactionTypeError creates an error for a transaction type
// without a distribution rule.
func NewUnsupportedTransactionTypeError(txnID group.TransactionID, typ group.TransactionType) *UnsupportedTransactionTypeError {
	return &UnsupportedTransactionTypeError{Transaction: txnID, Type: typ}
}

// NewClearingCycleError creates an error naming one account on the cycle.
func NewClearingCycleError(account group.AccountID) *ClearingCycleError {
	return &ClearingCycleError{Account: account}
}
