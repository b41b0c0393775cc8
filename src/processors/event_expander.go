package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
	"github.com/username/tradeherder/src/utils"
)

// TradeLots is one closed option position with its legs split by side, the
// unit the expander works on.
type TradeLots struct {
	Position models.Position
	Opens    []models.Activity
	Closes   []models.Activity
}

// TradeEventExpander turns closed option positions into per-parcel trade
// events. A position closed in N tranches yields N events; the open side's
// brokerage, fees and net cost are apportioned evenly across the parcels.
type TradeEventExpander struct {
	store  store.Store
	report *RunReport
}

func NewTradeEventExpander(st store.Store, report *RunReport) *TradeEventExpander {
	return &TradeEventExpander{store: st, report: report}
}

// CollectLots loads every closed option position with its activities,
// ordered by close date ascending.
func (x *TradeEventExpander) CollectLots() ([]TradeLots, error) {
	positions, err := x.store.Positions()
	if err != nil {
		return nil, err
	}
	var lots []TradeLots
	for _, pos := range positions {
		if pos.Instrument != models.InstrumentOption || pos.Status != models.StatusClosed {
			continue
		}
		acts, err := x.store.ActivitiesForPosition(pos.ID)
		if err != nil {
			return nil, err
		}
		lot := TradeLots{Position: pos}
		for _, a := range acts {
			if a.Action.IsClosing() {
				lot.Closes = append(lot.Closes, a)
			} else {
				lot.Opens = append(lot.Opens, a)
			}
		}
		lots = append(lots, lot)
	}
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].Position.CloseDate.Before(lots[j].Position.CloseDate)
	})
	return lots, nil
}

// Expand produces the events for the lots, oldest close first. The window
// bounds are inclusive on the close date and compared at calendar-day
// granularity, so a close carrying a time-of-day still lands inside a
// window ending on that day. Nil bounds are open-ended.
func (x *TradeEventExpander) Expand(lots []TradeLots, start, end *time.Time) []models.TradeEvent {
	var events []models.TradeEvent
	for i := range lots {
		for _, ev := range x.expandLot(&lots[i]) {
			closeDay := utils.DayOf(ev.CloseDate)
			if start != nil && closeDay.Before(utils.DayOf(*start)) {
				continue
			}
			if end != nil && closeDay.After(utils.DayOf(*end)) {
				continue
			}
			events = append(events, ev)
		}
	}
	return events
}

// expandLot emits one event per close leg. Positions rebuilt across several
// open legs cannot be apportioned faithfully and emit nothing.
func (x *TradeEventExpander) expandLot(lot *TradeLots) []models.TradeEvent {
	pos := &lot.Position
	if len(lot.Opens) != 1 {
		x.report.Record(AnomalyMultipleOpens, pos.Symbol,
			fmt.Sprintf("position %d has %d open legs, cannot expand", pos.ID, len(lot.Opens)))
		return nil
	}
	open := lot.Opens[0]

	closes := make([]models.Activity, len(lot.Closes))
	copy(closes, lot.Closes)
	sort.SliceStable(closes, func(i, j int) bool {
		return closes[i].RefDate.Before(closes[j].RefDate)
	})

	n := decimal.NewFromInt(int64(len(closes)))
	openBrokerage := open.Brokerage.Div(n)
	openFees := open.Fees.Div(n)
	openNet := open.NetTotalCost.Div(n)

	events := make([]models.TradeEvent, 0, len(closes))
	closedQty := decimal.Decimal{}
	for i, c := range closes {
		ev := models.TradeEvent{
			Symbol:      pos.Symbol,
			Description: pos.Description,
			Quantity:    c.Quantity,
			Parcel:      i + 1,
			ParcelCount: len(closes),
		}
		ev.SetOpen(open.RefDate, open.Price, openBrokerage, openFees, openNet)
		ev.SetClose(c.RefDate, c.Price, c.Brokerage, c.Fees, c.NetTotalCost)
		events = append(events, ev)
		closedQty = closedQty.Add(c.Quantity)
	}
	if !closedQty.Equal(open.Quantity) {
		x.report.Record(AnomalyParcelQuantity, pos.Symbol,
			fmt.Sprintf("position %d parcels total %s against open quantity %s",
				pos.ID, closedQty.String(), open.Quantity.String()))
	}
	return events
}
