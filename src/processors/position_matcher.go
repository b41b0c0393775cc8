package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
	"github.com/username/tradeherder/src/utils"
)

// PositionMatcher matches the contract-for-difference family: each trade or
// index ledger row is a one-open/one-close round trip keyed by broker
// reference. The first row for a reference opens a new chain; further rows
// with the same reference are additional closing tranches against the one
// shared open leg. There is no orphan-close case here: any unmatched
// reference simply starts a position.
//
// All matching state lives on the matcher instance and is valid for a single
// pass over the ordered ledger.
type PositionMatcher struct {
	store      store.Store
	attributor CommissionAttributor
	report     *RunReport

	open     map[string]*models.Position // broker ref -> position
	consumed map[int64]bool              // raw entry ids already attributed this run
}

// NewPositionMatcher builds a matcher for one processing run.
func NewPositionMatcher(st store.Store, attributor CommissionAttributor, report *RunReport) *PositionMatcher {
	return &PositionMatcher{
		store:      st,
		attributor: attributor,
		report:     report,
		open:       make(map[string]*models.Position),
		consumed:   make(map[int64]bool),
	}
}

// Run processes every trade and index row in (import sequence, ref date)
// order. Anomalies are recorded and never abort the run.
func (m *PositionMatcher) Run() error {
	entries, err := m.store.RawEntriesByCategory(models.CategoryTrade, models.CategoryIndex)
	if err != nil {
		return err
	}
	for i := range entries {
		raw := &entries[i]
		if pos, ok := m.open[raw.BrokerRef]; ok {
			if err := m.addToPosition(raw, pos); err != nil {
				return err
			}
		} else {
			if err := m.newPosition(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// commissions returns the not-yet-consumed commission candidates for the
// row, oldest first. Already-consumed rows are never attributed twice.
func (m *PositionMatcher) commissions(raw *models.RawEntry) ([]models.RawEntry, error) {
	candidates, err := m.attributor.Commissions(raw.RefDate, raw.BrokerRef)
	if err != nil {
		return nil, err
	}
	var out []models.RawEntry
	for _, c := range candidates {
		if !m.consumed[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// newPosition opens a new trade chain from its first ledger row, building
// the shared OPEN leg, the first CLOSE leg and the trade pairing them.
func (m *PositionMatcher) newPosition(raw *models.RawEntry) error {
	lg().Debug("creating new position", "brokerRef", raw.BrokerRef)

	riskFees, err := m.attributor.RiskFees(raw.RefDate, raw.BrokerRef)
	if err != nil {
		return err
	}
	totalOtherFees := decimal.Decimal{}
	for _, fee := range riskFees {
		totalOtherFees = totalOtherFees.Add(fee.Amount.Abs())
	}
	if len(riskFees) > 0 {
		lg().Debug("other fees found", "count", len(riskFees),
			"brokerRef", raw.BrokerRef, "total", totalOtherFees.String())
	}

	comms, err := m.commissions(raw)
	if err != nil {
		return err
	}
	// The first commission belongs to the open leg, the second to the close
	// leg. Any other count is an anomaly; zero means no brokerage at all,
	// one attributes the open leg only.
	if len(comms) != 2 {
		m.report.Record(AnomalyCommissionCount, raw.BrokerRef,
			fmt.Sprintf("found %d commissions for %s", len(comms), raw.Description))
	}

	// A ledger row is a full round trip, so the chain starts out closed;
	// later tranches only extend it.
	pos := models.NewPosition(models.InstrumentCFD, raw.Description, raw.Description, raw.RefDate)
	pos.BrokerRef = raw.BrokerRef
	pos.Status = models.StatusClosed
	pos.CloseDate = raw.RefDate
	pos.NumOpens++
	pos.NumCloses++
	pos.EntryQuantity = pos.EntryQuantity.Add(raw.Size)
	pos.ExitQuantity = pos.ExitQuantity.Add(raw.Size)
	pos.EntryPrice = raw.OpenPrice
	pos.ExitPrice = raw.ClosePrice
	pos.Fees = pos.Fees.Add(totalOtherFees)
	pos.GrossTotalCost = pos.GrossTotalCost.Add(raw.Amount)

	var cOpen, cClose *models.RawEntry
	if len(comms) > 0 {
		cOpen = &comms[0]
		pos.Brokerage = pos.Brokerage.Add(cOpen.Amount.Abs())
		if len(comms) > 1 {
			cClose = &comms[1]
			pos.Brokerage = pos.Brokerage.Add(cClose.Amount.Abs())
			// The closing commission should be dated the same day as the
			// closing trade.
			if !utils.SameDay(cClose.RefDate, raw.RefDate) {
				m.report.Record(AnomalyCommissionDate, raw.BrokerRef,
					fmt.Sprintf("closing commission dated %s, trade closed %s",
						utils.FormatDMY(cClose.RefDate), utils.FormatDMY(raw.RefDate)))
			}
		}
	}

	aOpen := models.NewLedgerActivity(models.ActionOpen, raw, cOpen)
	aOpen.Fees = totalOtherFees
	aClose := models.NewLedgerActivity(models.ActionClose, raw, cClose)
	trade := models.NewTrade(aOpen, aClose, raw)
	m.checkGrossTotal(trade)

	pos.NetTotalCost = pos.GrossTotalCost.Sub(pos.Brokerage).Sub(pos.Fees)
	if err := m.store.SavePosition(pos); err != nil {
		return err
	}
	aOpen.PositionID = pos.ID
	aClose.PositionID = pos.ID
	if err := m.store.SaveActivity(aOpen); err != nil {
		return err
	}
	if err := m.store.SaveActivity(aClose); err != nil {
		return err
	}
	trade.PositionID = pos.ID
	if err := m.store.SaveTrade(trade); err != nil {
		return err
	}
	aOpen.TradeID = trade.ID
	aClose.TradeID = trade.ID
	if err := m.store.SaveActivity(aOpen); err != nil {
		return err
	}
	if err := m.store.SaveActivity(aClose); err != nil {
		return err
	}

	if cOpen != nil {
		if err := m.consume(cOpen, pos.ID, aOpen.ID); err != nil {
			return err
		}
	}
	if cClose != nil {
		if err := m.consume(cClose, pos.ID, aClose.ID); err != nil {
			return err
		}
	}
	for i := range riskFees {
		if err := m.consume(&riskFees[i], pos.ID, aOpen.ID); err != nil {
			return err
		}
	}

	m.open[raw.BrokerRef] = pos
	return nil
}

// addToPosition records an additional closing tranche against an existing
// chain: the shared open leg is widened by the tranche's size, and only the
// most recent unconsumed commission is attributed to the new close leg.
func (m *PositionMatcher) addToPosition(raw *models.RawEntry, pos *models.Position) error {
	lg().Debug("adding tranche to position", "rawID", raw.ID,
		"positionID", pos.ID, "brokerRef", raw.BrokerRef)

	comms, err := m.commissions(raw)
	if err != nil {
		return err
	}
	if len(comms) > 1 {
		lg().Info("several commissions found for multi-tranche chain",
			"count", len(comms), "brokerRef", raw.BrokerRef)
	}
	pos.NumCloses++
	pos.EntryQuantity = pos.EntryQuantity.Add(raw.Size)
	pos.ExitQuantity = pos.ExitQuantity.Add(raw.Size)
	pos.CloseDate = raw.RefDate
	pos.GrossTotalCost = pos.GrossTotalCost.Add(raw.Amount)

	var cClose *models.RawEntry
	if len(comms) > 0 {
		cClose = &comms[len(comms)-1]
		pos.Brokerage = pos.Brokerage.Add(cClose.Amount.Abs())
		if !utils.SameDay(cClose.RefDate, raw.RefDate) {
			m.report.Record(AnomalyCommissionDate, raw.BrokerRef,
				fmt.Sprintf("closing commission dated %s, tranche closed %s",
					utils.FormatDMY(cClose.RefDate), utils.FormatDMY(raw.RefDate)))
		}
	}

	aClose := models.NewLedgerActivity(models.ActionClose, raw, cClose)

	// Widen the quantity of the first (shared) open activity. The matching
	// logic only works with a single open leg and multiple closes; a second
	// independent open cannot be reconstructed from this data.
	acts, err := m.store.ActivitiesForPosition(pos.ID)
	if err != nil {
		return err
	}
	if len(acts) == 0 {
		return fmt.Errorf("position %d has no activities", pos.ID)
	}
	numOpens := 0
	for _, a := range acts {
		if a.Action == models.ActionOpen {
			numOpens++
		}
	}
	if numOpens > 1 {
		m.report.Record(AnomalyMultipleOpens, raw.BrokerRef,
			fmt.Sprintf("position %d has %d open legs", pos.ID, numOpens))
	}
	aOpen := acts[0]
	aOpen.Quantity = aOpen.Quantity.Add(raw.Size)
	if err := m.store.SaveActivity(&aOpen); err != nil {
		return err
	}

	trade := models.NewTrade(&aOpen, aClose, raw)
	m.checkGrossTotal(trade)

	aClose.PositionID = pos.ID
	if err := m.store.SaveActivity(aClose); err != nil {
		return err
	}
	trade.PositionID = pos.ID
	if err := m.store.SaveTrade(trade); err != nil {
		return err
	}
	aClose.TradeID = trade.ID
	if err := m.store.SaveActivity(aClose); err != nil {
		return err
	}
	pos.NetTotalCost = pos.GrossTotalCost.Sub(pos.Brokerage).Sub(pos.Fees)
	if err := m.store.SavePosition(pos); err != nil {
		return err
	}

	if cClose != nil {
		if err := m.consume(cClose, pos.ID, aClose.ID); err != nil {
			return err
		}
	}
	return nil
}

// consume back-links a commission or fee row to the position and activity
// that claimed it, so it can never be attributed again.
func (m *PositionMatcher) consume(e *models.RawEntry, positionID, activityID int64) error {
	m.consumed[e.ID] = true
	return m.store.LinkRawEntry(e.ID, positionID, activityID)
}

// checkGrossTotal compares the computed gross return against the amount the
// ledger reported for the row. A mismatch is flagged, never rejected.
func (m *PositionMatcher) checkGrossTotal(t *models.Trade) {
	if !t.GrossTotal().Equal(t.GrossTotalImp) {
		m.report.Record(AnomalyGrossTotal, t.BrokerRef,
			fmt.Sprintf("computed gross %s, imported %s",
				t.GrossTotal().String(), t.GrossTotalImp.String()))
	}
}
