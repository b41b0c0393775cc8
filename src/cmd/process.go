package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/services"
)

type processCmd struct{}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "rebuild positions, activities and trades from the ledger" }
func (*processCmd) Usage() string {
	return `tradeherder process

  Drops all derived state and re-runs both matching families over the raw
  ledger. Safe to repeat; the result depends only on the ledger.
`
}

func (*processCmd) SetFlags(f *flag.FlagSet) {}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := services.NewReconcileService(st).Recompute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("run %s finished with %d anomalies\n", report.RunID, len(report.Anomalies))
	for _, a := range report.Anomalies {
		fmt.Printf("  %s %s: %s\n", a.Kind, a.Ref, a.Detail)
	}
	return subcommands.ExitSuccess
}
