// Package cmd implements the CLI application over the reconciliation engine.
package cmd

import (
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/username/tradeherder/src/config"
	"github.com/username/tradeherder/src/database"
	"github.com/username/tradeherder/src/store"
	"github.com/username/tradeherder/src/utils"
)

// Register registers every subcommand. A main package calls Register() and
// then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "ledger")
	c.Register(&categoriseCmd{}, "ledger")

	c.Register(&processCmd{}, "reconciliation")
	c.Register(&eventsCmd{}, "reconciliation")

	c.Register(&exportCmd{}, "reporting")
	c.Register(&reportCmd{}, "reporting")
}

// openStore opens the configured database and wraps it in a Store.
func openStore() (store.Store, error) {
	database.InitDB(config.Cfg.DatabasePath)
	return store.NewSQLiteStore(database.DB), nil
}

// windowFlags are the reporting window options shared by the windowed
// subcommands. The Australian financial year shorthand expands to
// 1 July..30 June ending in the given year.
type windowFlags struct {
	start string
	end   string
	fyau  int
}

func (w *windowFlags) parse() (start, end *time.Time, err error) {
	if w.fyau != 0 {
		if w.start != "" || w.end != "" {
			return nil, nil, fmt.Errorf("-fyau cannot be combined with -start/-end")
		}
		s, e := utils.FinancialYearAU(w.fyau)
		return &s, &e, nil
	}
	if w.start != "" {
		s, err := utils.ParseISODate(w.start)
		if err != nil {
			return nil, nil, fmt.Errorf("bad -start date: %w", err)
		}
		start = &s
	}
	if w.end != "" {
		e, err := utils.ParseISODate(w.end)
		if err != nil {
			return nil, nil, fmt.Errorf("bad -end date: %w", err)
		}
		end = &e
	}
	return start, end, nil
}
