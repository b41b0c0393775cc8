package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/services"
)

type eventsCmd struct {
	window    windowFlags
	formatted bool
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "print per-parcel trade events for a window" }
func (*eventsCmd) Usage() string {
	return `tradeherder events [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-fyau YYYY] [-formatted]

  Expands closed option positions into trade events, one per closing
  parcel, and writes them to stdout as CSV.
`
}

func (c *eventsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window.start, "start", "", "window start date (inclusive)")
	f.StringVar(&c.window.end, "end", "", "window end date (inclusive)")
	f.IntVar(&c.window.fyau, "fyau", 0, "Australian financial year ending in this year")
	f.BoolVar(&c.formatted, "formatted", false, "human-readable layout")
}

func (c *eventsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	start, end, err := c.window.parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	eventSvc := services.NewEventService(st)
	events, _, err := eventSvc.Events(start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	exp := services.NewExportService(st, eventSvc)
	if err := exp.WriteEvents(os.Stdout, events, c.formatted); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
