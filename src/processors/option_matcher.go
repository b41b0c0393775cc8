package processors

import (
	"fmt"

	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

// OptionLotMatcher matches the exchange-traded option family. Each activity
// row carries its own action label, commission and costs, so there is no
// commission attribution here; matching is a per-symbol state machine with at
// most one open position per symbol and no reopening after close.
type OptionLotMatcher struct {
	store  store.Store
	report *RunReport

	open map[string]*models.Position // symbol -> open position
}

func NewOptionLotMatcher(st store.Store, report *RunReport) *OptionLotMatcher {
	return &OptionLotMatcher{
		store:  st,
		report: report,
		open:   make(map[string]*models.Position),
	}
}

// Run processes every option activity row in (import sequence, ref date)
// order. Closing rows without an open position are the one hard matching
// failure in the system; they are recorded and skipped, never fabricated.
func (m *OptionLotMatcher) Run() error {
	entries, err := m.store.RawEntries()
	if err != nil {
		return err
	}
	for i := range entries {
		raw := &entries[i]
		action, err := models.ParseActionType(raw.Type)
		if err != nil {
			continue // not an option activity row
		}
		switch action {
		case models.ActionBuyToOpen:
			if err := m.openLot(raw); err != nil {
				return err
			}
		case models.ActionSellToClose, models.ActionExercise:
			if err := m.closeLot(raw, action); err != nil {
				return err
			}
		}
	}
	return nil
}

// openLot accumulates a buy-to-open row into the symbol's open position,
// creating it on first sight. Activity costs are unsigned magnitudes; the
// open side is subtracted so the position's net ends up proceeds minus
// outlay once the close legs land.
func (m *OptionLotMatcher) openLot(raw *models.RawEntry) error {
	a := models.NewOptionActivity(models.ActionBuyToOpen, raw)

	pos, ok := m.open[raw.Symbol]
	if !ok {
		lg().Debug("opening option position", "symbol", raw.Symbol)
		pos = models.NewPosition(models.InstrumentOption, raw.Symbol, raw.Description, raw.RefDate)
		m.open[raw.Symbol] = pos
	}
	pos.NumOpens++
	pos.EntryQuantity = pos.EntryQuantity.Add(raw.Size)
	pos.EntryPrice = raw.OpenPrice
	pos.Brokerage = pos.Brokerage.Add(raw.Brokerage)
	pos.Fees = pos.Fees.Add(raw.Fees)
	pos.NetTotalCost = pos.NetTotalCost.Add(a.NetTotalCost.Neg())
	pos.GrossTotalCost = pos.GrossTotalCost.Add(a.GrossTotalCost.Neg())

	return m.persist(pos, a, raw)
}

// closeLot accumulates a sell-to-close or exercise row against the symbol's
// open position. Exit quantity exactly matching entry quantity closes the
// position; overshooting is recorded but not rolled back.
func (m *OptionLotMatcher) closeLot(raw *models.RawEntry, action models.ActionType) error {
	pos, ok := m.open[raw.Symbol]
	if !ok {
		m.report.Record(AnomalyMissingCounterpart, raw.Symbol,
			fmt.Errorf("%s of %s with no open position: %w",
				action, raw.Symbol, ErrMissingCounterpart).Error())
		return nil
	}

	a := models.NewOptionActivity(action, raw)
	pos.NumCloses++
	pos.ExitQuantity = pos.ExitQuantity.Add(raw.Size)
	pos.ExitPrice = raw.OpenPrice // provisional; averaged after the pass
	pos.Brokerage = pos.Brokerage.Add(raw.Brokerage)
	pos.Fees = pos.Fees.Add(raw.Fees)
	pos.NetTotalCost = pos.NetTotalCost.Add(a.NetTotalCost)
	pos.GrossTotalCost = pos.GrossTotalCost.Add(a.GrossTotalCost)

	switch {
	case pos.ExitQuantity.Equal(pos.EntryQuantity):
		pos.Status = models.StatusClosed
		pos.CloseDate = raw.RefDate
		delete(m.open, raw.Symbol)
		lg().Debug("option position closed", "symbol", raw.Symbol,
			"closeDate", raw.RefDate.Format("2006-01-02"))
	case pos.ExitQuantity.GreaterThan(pos.EntryQuantity):
		m.report.Record(AnomalyExcessExit, raw.Symbol,
			fmt.Sprintf("exit quantity %s exceeds entry quantity %s",
				pos.ExitQuantity.String(), pos.EntryQuantity.String()))
	}

	return m.persist(pos, a, raw)
}

func (m *OptionLotMatcher) persist(pos *models.Position, a *models.Activity, raw *models.RawEntry) error {
	if err := m.store.SavePosition(pos); err != nil {
		return err
	}
	a.PositionID = pos.ID
	if err := m.store.SaveActivity(a); err != nil {
		return err
	}
	return m.store.LinkRawEntry(raw.ID, pos.ID, a.ID)
}
