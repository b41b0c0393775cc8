package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndexContractMultiplier is the fixed contract multiplier applied to index
// trades when computing gross totals.
const IndexContractMultiplier = 5

// OptionContractSize is the number of underlying units per option contract,
// used for gross cost of option legs and trade events.
const OptionContractSize = 100

// RawEntry is one imported ledger row. The imported columns are immutable;
// only Tags, Category and the PositionID/ActivityID back-links are assigned
// after import. A linked entry is never consumed by a second match.
type RawEntry struct {
	ID          int64
	ImportSeq   int64 // order imported from the input file, strictly increasing per batch
	Type        string
	RefDate     time.Time
	Symbol      string // option family only; CFD rows use Description as symbol
	BrokerRef   string
	Description string
	Period      string
	Currency    string
	OpenPrice   decimal.Decimal
	ClosePrice  decimal.Decimal
	Size        decimal.Decimal
	Amount      decimal.Decimal
	Brokerage   decimal.Decimal // option family only
	Fees        decimal.Decimal // option family only
	Tags        string
	Category    Category
	PositionID  int64 // 0 until the matcher links this entry
	ActivityID  int64
}

// Linked reports whether this entry has already been consumed by a match.
func (e RawEntry) Linked() bool {
	return e.PositionID != 0
}

// Position is the full lifecycle aggregate of one instrument holding:
// a collection of one or more related trades. CFD positions share a broker
// reference, option positions a symbol.
// Position --> Trade --> Activity, with some deliberate de-normalisation to
// make reporting easier.
type Position struct {
	ID             int64
	Instrument     Instrument
	Symbol         string
	Description    string
	BrokerRef      string
	OpenDate       time.Time
	CloseDate      time.Time // zero while the position is open
	Status         TradeStatus
	EntryQuantity  decimal.Decimal
	ExitQuantity   decimal.Decimal
	EntryPrice     decimal.Decimal
	ExitPrice      decimal.Decimal
	Brokerage      decimal.Decimal
	Fees           decimal.Decimal
	NetTotalCost   decimal.Decimal
	GrossTotalCost decimal.Decimal
	NumOpens       int
	NumCloses      int
}

// NewPosition returns an OPEN position with zeroed aggregates.
func NewPosition(instrument Instrument, symbol, description string, openDate time.Time) *Position {
	return &Position{
		Instrument:  instrument,
		Symbol:      symbol,
		Description: description,
		OpenDate:    openDate,
		Status:      StatusOpen,
	}
}

// Activity is one open or close leg of a trade, with its own price, cost and
// commission attribution.
type Activity struct {
	ID             int64
	PositionID     int64
	TradeID        int64
	RefDate        time.Time
	Symbol         string
	Description    string
	BrokerRef      string
	Action         ActionType
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	Brokerage      decimal.Decimal
	Fees           decimal.Decimal
	NetTotalCost   decimal.Decimal
	GrossTotalCost decimal.Decimal
}

// NewLedgerActivity builds the OPEN or CLOSE leg of a CFD trade from its raw
// ledger row, with the matched commission row attributed to the leg when
// present. An open commission also supplies the leg's effective date; a
// closing leg always keeps the ledger row's date. If the position was closed
// the same day it was opened, there may not be a commission at all.
func NewLedgerActivity(action ActionType, raw *RawEntry, comm *RawEntry) *Activity {
	a := &Activity{
		RefDate:     raw.RefDate,
		Symbol:      raw.Description,
		Description: raw.Description,
		BrokerRef:   raw.BrokerRef,
		Action:      action,
		Quantity:    raw.Size,
	}
	switch action {
	case ActionOpen:
		a.Price = raw.OpenPrice
		if comm != nil {
			a.RefDate = comm.RefDate
		}
	case ActionClose:
		a.Price = raw.ClosePrice
	}
	if comm != nil {
		a.Brokerage = comm.Amount.Abs()
	}
	return a
}

// NewOptionActivity builds one option leg from its imported activity row.
// Gross cost is quantity x contract size x price. Net cost is the row's
// total cost as an unsigned magnitude; the matcher applies the sign per
// side, so open legs net against close proceeds to a profit or loss.
func NewOptionActivity(action ActionType, raw *RawEntry) *Activity {
	return &Activity{
		RefDate:        raw.RefDate,
		Symbol:         raw.Symbol,
		Description:    raw.Description,
		BrokerRef:      raw.BrokerRef,
		Action:         action,
		Quantity:       raw.Size,
		Price:          raw.OpenPrice,
		Brokerage:      raw.Brokerage,
		Fees:           raw.Fees,
		NetTotalCost:   raw.Amount.Abs(),
		GrossTotalCost: raw.Size.Mul(decimal.NewFromInt(OptionContractSize)).Mul(raw.OpenPrice),
	}
}

// Trade represents a parcel of instruments that has been bought then sold:
// exactly one entry leg paired with one exit leg. Multi-tranche positions
// produce several trades sharing the one entry activity.
type Trade struct {
	ID             int64
	PositionID     int64
	ImportSeq      int64
	EntryDate      time.Time
	ExitDate       time.Time
	Symbol         string
	Description    string
	BrokerRef      string
	Quantity       decimal.Decimal
	EntryPrice     decimal.Decimal
	ExitPrice      decimal.Decimal
	EntryBrokerage decimal.Decimal
	ExitBrokerage  decimal.Decimal
	Fees           decimal.Decimal
	GrossTotalImp  decimal.Decimal // gross total from the imported data
	Category       Category
}

// NewTrade pairs an entry and an exit activity built from the given raw
// ledger row. Quantity is forced equal to the row's size, which by
// construction equals the exit activity's quantity.
func NewTrade(entry, exit *Activity, raw *RawEntry) *Trade {
	return &Trade{
		ImportSeq:      raw.ImportSeq,
		EntryDate:      entry.RefDate,
		ExitDate:       exit.RefDate,
		Symbol:         raw.Description,
		Description:    raw.Description,
		BrokerRef:      raw.BrokerRef,
		Quantity:       raw.Size,
		EntryPrice:     entry.Price,
		ExitPrice:      exit.Price,
		EntryBrokerage: entry.Brokerage,
		ExitBrokerage:  exit.Brokerage,
		Fees:           entry.Fees.Add(exit.Fees),
		GrossTotalImp:  raw.Amount,
		Category:       raw.Category,
	}
}

func (t *Trade) contractMultiplier() decimal.Decimal {
	if t.Category == CategoryIndex {
		return decimal.NewFromInt(IndexContractMultiplier)
	}
	return decimal.NewFromInt(1)
}

// EntryTotal is entry price x quantity x contract multiplier.
func (t *Trade) EntryTotal() decimal.Decimal {
	return t.EntryPrice.Mul(t.Quantity).Mul(t.contractMultiplier())
}

// ExitTotal is exit price x quantity x contract multiplier.
func (t *Trade) ExitTotal() decimal.Decimal {
	return t.ExitPrice.Mul(t.Quantity).Mul(t.contractMultiplier())
}

// GrossTotal is the computed gross return of the trade. It should equal
// GrossTotalImp; a mismatch is a reconciliation anomaly, not a failure.
func (t *Trade) GrossTotal() decimal.Decimal {
	return t.ExitTotal().Sub(t.EntryTotal())
}
