package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/services"
)

type reportCmd struct {
	window windowFlags
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the summary totals for a window" }
func (*reportCmd) Usage() string {
	return `tradeherder report [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-fyau YYYY]

  Rolls trades and cash rows up into the running totals.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window.start, "start", "", "window start date (inclusive)")
	f.StringVar(&c.window.end, "end", "", "window end date (inclusive)")
	f.IntVar(&c.window.fyau, "fyau", 0, "Australian financial year ending in this year")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	sum, err := services.NewExportService(st, services.NewEventService(st)).Summarise(start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("trades:          %d\n", sum.TradeCount)
	fmt.Printf("profit:          %s\n", sum.Profit.StringFixed(2))
	fmt.Printf("interest long:   %s\n", sum.InterestLong.StringFixed(2))
	fmt.Printf("interest short:  %s\n", sum.InterestShort.StringFixed(2))
	fmt.Printf("commissions:     %s\n", sum.Commissions.StringFixed(2))
	fmt.Printf("risk fees:       %s\n", sum.RiskFees.StringFixed(2))
	fmt.Printf("exchange fees:   %s\n", sum.ExchangeFees.StringFixed(2))
	fmt.Printf("dividends:       %s\n", sum.Dividends.StringFixed(2))
	fmt.Printf("deposits:        %s\n", sum.Deposits.StringFixed(2))
	fmt.Printf("withdrawals:     %s\n", sum.Withdrawals.StringFixed(2))
	fmt.Printf("unknown:         %s\n", sum.Unknown.StringFixed(2))
	fmt.Printf("final balance:   %s\n", sum.FinalBalance.StringFixed(2))
	return subcommands.ExitSuccess
}
