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

type importCmd struct {
	source string
	abort  bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a broker export file into the raw ledger" }
func (*importCmd) Usage() string {
	return `tradeherder import -source <ig|optionsxpress> [-abort] <file>...

  Parses one or more export files and appends their rows to the ledger.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "ig", "input format: ig or optionsxpress")
	f.BoolVar(&c.abort, "abort", config.Cfg.AbortOnBadRow, "abort the whole file when a row is malformed")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		return subcommands.ExitUsageError
	}
	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	svc := services.NewImportService(st)
	for _, path := range f.Args() {
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		result, err := svc.Import(c.source, file, c.abort)
		file.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: %d rows imported, %d skipped\n", path, result.Imported, len(result.Skipped))
	}
	return subcommands.ExitSuccess
}
