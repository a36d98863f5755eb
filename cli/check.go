package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/SFTtech/abrechnung-sub002/balance"
	"github.com/SFTtech/abrechnung-sub002/loader"
	"github.com/SFTtech/abrechnung-sub002/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Group snapshot filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr, nil)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))

		defer reportTelemetry()
	}

	ldr := loader.New(loader.WithCheckReferences())
	snapshot, err := cmd.File.LoadSnapshot(runCtx, ldr)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, err)

		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "snapshot error")

		reportTelemetry()
		return NewCommandError(1)
	}

	if _, err := balance.ComputeBalances(runCtx, snapshot.Transactions, snapshot.Accounts); err != nil {
		renderer := NewErrorRenderer(snapshot)

		var validationErrors *balance.ValidationErrors
		if stdErrors.As(err, &validationErrors) {
			formatted := renderer.RenderAll(validationErrors.Errors)
			_, _ = fmt.Fprintln(ctx.Stderr, formatted)

			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(validationErrors.Errors)))
		} else {
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))

			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, "balance computation failed")
		}

		reportTelemetry()
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed (%d accounts, %d transactions)",
		len(snapshot.Accounts), len(snapshot.Transactions)))

	return nil
}
