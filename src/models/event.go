package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeEvent is one tax-reportable closing event: a close leg paired with
// its (possibly apportioned) share of the open leg. Events are derived on
// demand and never persisted.
type TradeEvent struct {
	Symbol      string
	Description string
	Quantity    decimal.Decimal
	Parcel      int
	ParcelCount int

	OpenDate      time.Time
	OpenPrice     decimal.Decimal
	OpenBrokerage decimal.Decimal
	OpenFees      decimal.Decimal
	OpenNet       decimal.Decimal
	OpenGross     decimal.Decimal

	CloseDate      time.Time
	ClosePrice     decimal.Decimal
	CloseBrokerage decimal.Decimal
	CloseFees      decimal.Decimal
	CloseNet       decimal.Decimal
	CloseGross     decimal.Decimal

	NetTotal   decimal.Decimal
	GrossTotal decimal.Decimal
}

// SetOpen fills the open side and derives the open gross from the event's
// own quantity at contract size.
func (e *TradeEvent) SetOpen(date time.Time, price, brokerage, fees, net decimal.Decimal) {
	e.OpenDate = date
	e.OpenPrice = price
	e.OpenBrokerage = brokerage
	e.OpenFees = fees
	e.OpenNet = net
	e.OpenGross = e.Quantity.Mul(price).Mul(decimal.NewFromInt(OptionContractSize))
}

// SetClose fills the close side and the event's net and gross totals.
func (e *TradeEvent) SetClose(date time.Time, price, brokerage, fees, net decimal.Decimal) {
	e.CloseDate = date
	e.ClosePrice = price
	e.CloseBrokerage = brokerage
	e.CloseFees = fees
	e.CloseNet = net
	e.CloseGross = e.Quantity.Mul(price).Mul(decimal.NewFromInt(OptionContractSize))

	e.NetTotal = e.CloseNet.Sub(e.OpenNet)
	e.GrossTotal = e.CloseGross.Sub(e.OpenGross)
}

// TotalCosts is the sum of brokerage and fees on both sides.
func (e *TradeEvent) TotalCosts() decimal.Decimal {
	return e.OpenBrokerage.Add(e.CloseBrokerage).Add(e.OpenFees).Add(e.CloseFees)
}

// ParcelNote describes a partial close, or "" for a whole-position event.
func (e *TradeEvent) ParcelNote() string {
	if e.ParcelCount <= 1 {
		return ""
	}
	return fmt.Sprintf("Partially closed position %d of %d", e.Parcel, e.ParcelCount)
}
