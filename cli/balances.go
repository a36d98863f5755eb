package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/SFTtech/abrechnung-sub002/balance"
	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/loader"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

type BalancesCmd struct {
	File FileOrStdin `help:"Group snapshot filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`

	All bool `help:"Include clearing accounts (zero after resolution)." short:"a"`
}

func (cmd *BalancesCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	balances, err := balance.ComputeBalances(runCtx, snapshot.Transactions, snapshot.Accounts)
	if err != nil {
		renderer := NewErrorRenderer(snapshot)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "balance computation failed")
		return NewCommandError(1)
	}

	rows := buildBalanceRows(snapshot, balances, cmd.All)
	writeBalanceTable(ctx, rows, snapshot.Group.CurrencySymbol)

	return nil
}

type balanceRow struct {
	name     string
	clearing bool
	paid     decimal.Decimal
	consumed decimal.Decimal
	balance  decimal.Decimal
}

// buildBalanceRows selects and orders the accounts to display. Sorted by
// name, personal accounts first; clearing accounts only with includeAll.
func buildBalanceRows(snapshot *loader.Snapshot, balances balance.Map, includeAll bool) []balanceRow {
	var rows []balanceRow

	for _, kind := range []group.AccountKind{group.AccountKindPersonal, group.AccountKindClearing} {
		var batch []balanceRow
		for _, account := range snapshot.Accounts {
			if account.Deleted || account.Kind != kind {
				continue
			}
			if kind == group.AccountKindClearing && !includeAll {
				continue
			}
			rec, ok := balances[account.ID]
			if !ok {
				continue
			}
			batch = append(batch, balanceRow{
				name:     account.Name,
				clearing: kind == group.AccountKindClearing,
				paid:     rec.TotalPaid,
				consumed: rec.TotalConsumed,
				balance:  rec.Balance,
			})
		}
		slices.SortStableFunc(batch, func(a, b balanceRow) int {
			return strings.Compare(a.name, b.name)
		})
		rows = append(rows, batch...)
	}

	return rows
}

func writeBalanceTable(ctx *kong.Context, rows []balanceRow, currency string) {
	nameWidth := runewidth.StringWidth("Account")
	amountWidth := runewidth.StringWidth("Consumed")

	format := func(d decimal.Decimal) string {
		return fmt.Sprintf("%s %s", d.StringFixed(2), currency)
	}

	for _, row := range rows {
		if w := runewidth.StringWidth(row.name); w > nameWidth {
			nameWidth = w
		}
		for _, amount := range []decimal.Decimal{row.paid, row.consumed, row.balance} {
			if w := runewidth.StringWidth(format(amount)); w > amountWidth {
				amountWidth = w
			}
		}
	}

	padLeft := func(s string) string {
		return strings.Repeat(" ", amountWidth-runewidth.StringWidth(s)) + s
	}
	padRight := func(s string) string {
		return s + strings.Repeat(" ", nameWidth-runewidth.StringWidth(s))
	}

	_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s  %s  %s\n",
		padRight("Account"),
		padLeft("Paid"),
		padLeft("Consumed"),
		padLeft("Balance"))

	for _, row := range rows {
		balanceCell := padLeft(format(row.balance))
		if row.balance.IsNegative() {
			balanceCell = errorStyle.Render(balanceCell)
		} else if row.balance.IsPositive() {
			balanceCell = successStyle.Render(balanceCell)
		}

		name := padRight(row.name)
		if row.clearing {
			name = pathStyle.Render(name)
		}

		_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s  %s  %s\n",
			name,
			padLeft(format(row.paid)),
			padLeft(format(row.consumed)),
			balanceCell)
	}
}
