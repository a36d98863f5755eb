package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/loader"
)

var errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})

// ErrorRenderer renders validation errors with terminal styling and the
// offending transaction or account as context.
type ErrorRenderer struct {
	snapshot *loader.Snapshot
}

// NewErrorRenderer creates a renderer that resolves ids against the snapshot.
func NewErrorRenderer(snapshot *loader.Snapshot) *ErrorRenderer {
	return &ErrorRenderer{snapshot: snapshot}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	if e, ok := err.(interface {
		GetTransaction() group.TransactionID
		Error() string
	}); ok {
		return r.renderWithTransaction(e.GetTransaction(), e.Error())
	}

	if e, ok := err.(interface {
		GetAccount() group.AccountID
		Error() string
	}); ok {
		return r.renderWithAccount(e.GetAccount(), e.Error())
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithTransaction(id group.TransactionID, message string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))

	txn := r.findTransaction(id)
	if txn == nil {
		return buf.String()
	}

	details := txn.PendingDetails
	if details == nil {
		details = txn.CommittedDetails
	}

	buf.WriteString("\n\n")
	if details != nil {
		line := fmt.Sprintf("%s %s %q %s %s (transaction %d)",
			details.BilledAt.Format("2006-01-02"),
			txn.Type,
			details.Description,
			details.Value.StringFixed(2),
			details.CurrencySymbol,
			txn.ID)
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(line))
	} else {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(fmt.Sprintf("%s (transaction %d, no details)", txn.Type, txn.ID)))
	}
	buf.WriteByte('\n')

	return buf.String()
}

func (r *ErrorRenderer) renderWithAccount(id group.AccountID, message string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))

	account := r.findAccount(id)
	if account == nil {
		return buf.String()
	}

	buf.WriteString("\n\n")
	line := fmt.Sprintf("%s account %q (id %d)", account.Kind, account.Name, account.ID)
	if account.IsClearing() {
		line += fmt.Sprintf(", clearing shares %s", account.ClearingShares)
	}
	buf.WriteString("   ")
	buf.WriteString(errContextStyle.Render(line))
	buf.WriteByte('\n')

	return buf.String()
}

func (r *ErrorRenderer) findTransaction(id group.TransactionID) *group.Transaction {
	if r.snapshot == nil {
		return nil
	}
	for _, t := range r.snapshot.Transactions {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *ErrorRenderer) findAccount(id group.AccountID) *group.Account {
	if r.snapshot == nil {
		return nil
	}
	return r.snapshot.Account(id)
}
