package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/SFTtech/abrechnung-sub002/telemetry"
	"github.com/SFTtech/abrechnung-sub002/web"
)

type WebCmd struct {
	File   string `help:"Group snapshot file to serve." arg:""`
	Port   int    `help:"Port to listen on." default:"8080"`
	Create bool   `help:"Automatically create file if it doesn't exist (no confirmation prompt)." short:"c"`
	Watch  bool   `help:"Watch the snapshot file and recompute balances on change." default:"true" negatable:""`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, nil)
		}()
	}

	snapshotFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(snapshotFile); err != nil {
		if os.IsNotExist(err) {
			shouldCreate := cmd.Create

			if !shouldCreate {
				confirmed, err := promptYesNo(ctx, fmt.Sprintf("File %q does not exist. Create it?", snapshotFile))
				if err != nil {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				shouldCreate = confirmed
			}

			if !shouldCreate {
				return fmt.Errorf("file does not exist: %s", snapshotFile)
			}

			parentDir := filepath.Dir(snapshotFile)
			if err := os.MkdirAll(parentDir, 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			if err := os.WriteFile(snapshotFile, []byte(emptySnapshot), 0600); err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			printInfof(ctx.Stdout, "Created empty snapshot file: %s", pathStyle.Render(snapshotFile))
		} else {
			return fmt.Errorf("failed to access file: %w", err)
		}
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, snapshotFile, version, commitSHA)
	server.WatchEnabled = cmd.Watch

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving snapshot: %s", pathStyle.Render(snapshotFile))

	return server.Start(runCtx)
}

// emptySnapshot is the minimal valid snapshot written by --create.
const emptySnapshot = `{
  "group": {"id": 0, "name": "", "currency_symbol": "€"},
  "accounts": [],
  "transactions": []
}
`
