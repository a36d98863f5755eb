package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/SFTtech/abrechnung-sub002/balance"
	"github.com/SFTtech/abrechnung-sub002/loader"
)

// DoctorCmd provides doctor utilities for debugging group snapshots.
type DoctorCmd struct {
	Normalize NormalizeCmd `cmd:"" help:"Show normalized transactions from a group snapshot."`
}

// NormalizeCmd dumps every transaction after committed/pending merging and
// contribution calculation.
type NormalizeCmd struct {
	File FileOrStdin `help:"Group snapshot filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the normalize command.
func (cmd *NormalizeCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	ldr := loader.New()
	snapshot, err := cmd.File.LoadSnapshot(context.Background(), ldr)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	for _, raw := range snapshot.Transactions {
		txn, err := balance.Normalize(raw, nil)
		if err != nil {
			renderer := NewErrorRenderer(snapshot)
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
			continue
		}

		repr.New(ctx.Stdout, repr.Indent("  ")).Println(txn)
	}

	return nil
}
