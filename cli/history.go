package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/SFTtech/abrechnung-sub002/balance"
	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/loader"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

type HistoryCmd struct {
	File FileOrStdin `help:"Group snapshot filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`

	Account int `help:"Account id to show history for (interactive picker when omitted)." default:"-1"`
}

func (cmd *HistoryCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, nil)
		}()
	}

	ldr := loader.New()
	snapshot, err := cmd.File.LoadSnapshot(runCtx, ldr)
	if err != nil {
		return err
	}

	accountID, err := cmd.resolveAccount(snapshot)
	if err != nil {
		return err
	}

	account := snapshot.Account(accountID)
	if account == nil {
		return fmt.Errorf("unknown account id %d", accountID)
	}

	entries, err := balance.AccountHistory(runCtx, snapshot.Transactions, snapshot.Accounts, accountID)
	if err != nil {
		renderer := NewErrorRenderer(snapshot)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "balance computation failed")
		return NewCommandError(1)
	}

	if len(entries) == 0 {
		printInfof(ctx.Stdout, "No balance changes for %q", account.Name)
		return nil
	}

	printInfof(ctx.Stdout, "Balance history for %q", account.Name)
	for _, entry := range entries {
		change := entry.Change.StringFixed(2)
		if entry.Change.IsPositive() {
			change = successStyle.Render("+" + change)
		} else if entry.Change.IsNegative() {
			change = errorStyle.Render(change)
		}

		origin := fmt.Sprintf("%s %d", entry.Origin, entry.OriginID)

		_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s  %s %s  (%s)\n",
			entry.Date.Format("2006-01-02"),
			change,
			entry.Balance.StringFixed(2),
			snapshot.Group.CurrencySymbol,
			origin)
	}

	return nil
}

// resolveAccount picks the account to show: the --account flag when given,
// otherwise an interactive picker on a terminal.
func (cmd *HistoryCmd) resolveAccount(snapshot *loader.Snapshot) (group.AccountID, error) {
	if cmd.Account >= 0 {
		return group.AccountID(cmd.Account), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return 0, fmt.Errorf("--account is required when not running interactively")
	}

	var options []huh.Option[group.AccountID]
	for _, account := range snapshot.Accounts {
		if account.Deleted || account.Kind != group.AccountKindPersonal {
			continue
		}
		options = append(options, huh.NewOption(account.Name, account.ID))
	}
	if len(options) == 0 {
		return 0, fmt.Errorf("snapshot has no personal accounts")
	}

	var selected group.AccountID
	form := huh.NewSelect[group.AccountID]().
		Title("Account").
		Options(options...).
		Value(&selected)

	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}

	return selected, nil
}
