package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Load a group snapshot and validate its transactions."`
	Balances BalancesCmd `cmd:"" help:"Compute and print per-account balances."`
	History  HistoryCmd  `cmd:"" help:"Print one account's chronological balance history."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging group snapshots."`
	Web      WebCmd      `cmd:"" help:"Start a web server over a group snapshot."`
}
