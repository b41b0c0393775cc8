package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

// ExitPriceAverager replaces the provisional exit price of every closed
// option position that took more than one close with the unweighted
// arithmetic mean of its sell-to-close prices. The mean is deliberately not
// quantity-weighted; every close leg contributes equally.
type ExitPriceAverager struct {
	store  store.Store
	report *RunReport
}

func NewExitPriceAverager(st store.Store, report *RunReport) *ExitPriceAverager {
	return &ExitPriceAverager{store: st, report: report}
}

// Run averages exit prices across all closed multi-close option positions.
func (p *ExitPriceAverager) Run() error {
	positions, err := p.store.Positions()
	if err != nil {
		return err
	}
	for i := range positions {
		pos := &positions[i]
		if pos.Instrument != models.InstrumentOption ||
			pos.Status != models.StatusClosed || pos.NumCloses <= 1 {
			continue
		}
		if err := p.average(pos); err != nil {
			return err
		}
	}
	return nil
}

func (p *ExitPriceAverager) average(pos *models.Position) error {
	acts, err := p.store.ActivitiesForPosition(pos.ID)
	if err != nil {
		return err
	}
	sum := decimal.Decimal{}
	closes := 0
	for _, a := range acts {
		if a.Action == models.ActionSellToClose {
			sum = sum.Add(a.Price)
			closes++
		}
	}
	if closes == 0 {
		lg().Error("closed position has no sell-to-close activities",
			"positionID", pos.ID, "symbol", pos.Symbol)
		return nil
	}
	if closes != pos.NumCloses {
		p.report.Record(AnomalyActivityCount, pos.Symbol,
			fmt.Sprintf("position %d has %d sell-to-close activities but %d recorded closes",
				pos.ID, closes, pos.NumCloses))
	}
	pos.ExitPrice = sum.Div(decimal.NewFromInt(int64(pos.NumCloses)))
	return p.store.SavePosition(pos)
}
