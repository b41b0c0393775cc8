package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/config"
	"github.com/username/tradeherder/src/services"
)

type exportCmd struct {
	window windowFlags
	dir    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the derived results out as CSV files" }
func (*exportCmd) Usage() string {
	return `tradeherder export [-dir <dir>] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-fyau YYYY]

  Writes the cash category files, trade.csv and both event files.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", config.Cfg.OutputDir, "output directory")
	f.StringVar(&c.window.start, "start", "", "window start date (inclusive)")
	f.StringVar(&c.window.end, "end", "", "window end date (inclusive)")
	f.IntVar(&c.window.fyau, "fyau", 0, "Australian financial year ending in this year")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	exp := services.NewExportService(st, services.NewEventService(st))
	if err := exp.ExportAll(c.dir, start, end); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("exported to %s\n", c.dir)
	return subcommands.ExitSuccess
}
