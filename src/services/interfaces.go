package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/processors"
)

// ImportResult summarises one file import.
type ImportResult struct {
	Imported int
	Skipped  []*models.DataShapeError
}

// ImportService reads a broker export into the raw ledger.
type ImportService interface {
	// Import parses the file with the named source parser and appends its
	// rows to the ledger with fresh import sequence numbers. Bad rows abort
	// the whole file when abortOnBadRow is set, otherwise they are skipped
	// and reported in the result.
	Import(source string, file io.Reader, abortOnBadRow bool) (*ImportResult, error)
}

// ReconcileService derives positions, activities and trades from the raw
// ledger. Recompute always starts from a clean slate; there is no
// incremental path.
type ReconcileService interface {
	Recompute() (*processors.RunReport, error)
}

// EventService expands closed option positions into per-parcel trade events.
type EventService interface {
	Events(start, end *time.Time) ([]models.TradeEvent, *processors.RunReport, error)
}

// Summary is the cash-flow and profit rollup of a reporting window.
type Summary struct {
	Profit        decimal.Decimal
	TradeCount    int
	InterestLong  decimal.Decimal
	InterestShort decimal.Decimal
	Commissions   decimal.Decimal
	RiskFees      decimal.Decimal
	ExchangeFees  decimal.Decimal
	Dividends     decimal.Decimal
	Deposits      decimal.Decimal
	Withdrawals   decimal.Decimal
	Unknown       decimal.Decimal
	FinalBalance  decimal.Decimal
}

// ExportService writes the derived results out as CSV files.
type ExportService interface {
	// Summarise rolls up trades and cash rows over an inclusive window.
	Summarise(start, end *time.Time) (*Summary, error)
	// ExportAll writes the cash category files, the trade file and both
	// event files into dir.
	ExportAll(dir string, start, end *time.Time) error
	// WriteTrades writes the trade rows for the window as CSV.
	WriteTrades(w io.Writer, start, end *time.Time) error
	// WriteEvents writes trade events as CSV, either raw or formatted for
	// reading (day/month/year dates, close date first, parcel notes).
	WriteEvents(w io.Writer, events []models.TradeEvent, formatted bool) error
}
