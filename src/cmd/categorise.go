package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/classifier"
)

type categoriseCmd struct{}

func (*categoriseCmd) Name() string     { return "categorise" }
func (*categoriseCmd) Synopsis() string { return "assign categories to imported ledger rows" }
func (*categoriseCmd) Usage() string {
	return `tradeherder categorise

  Runs the category rules over every ledger row. Rows no rule places are
  left Unknown and counted.
`
}

func (*categoriseCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoriseCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	unknown, err := classifier.Run(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if unknown > 0 {
		fmt.Printf("categorised with %d rows left unknown\n", unknown)
	} else {
		fmt.Println("categorised")
	}
	return subcommands.ExitSuccess
}
