package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
	"github.com/username/tradeherder/src/utils"
)

type exportServiceImpl struct {
	store  store.Store
	events EventService
}

func NewExportService(st store.Store, events EventService) ExportService {
	return &exportServiceImpl{store: st, events: events}
}

// cashFiles maps output file names to the categories they collect.
var cashFiles = []struct {
	name     string
	category models.Category
}{
	{"div.csv", models.CategoryDividend},
	{"longint.csv", models.CategoryInterest},
	{"shortint.csv", models.CategoryInterest},
	{"unknown.csv", models.CategoryUnknown},
}

func (s *exportServiceImpl) ExportAll(dir string, start, end *time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for _, f := range cashFiles {
		if err := s.exportCashFile(dir, f.name, f.category, start, end); err != nil {
			return err
		}
	}
	if err := s.exportFile(dir, "trade.csv", func(w io.Writer) error {
		return s.WriteTrades(w, start, end)
	}); err != nil {
		return err
	}

	events, _, err := s.events.Events(start, end)
	if err != nil {
		return err
	}
	if err := s.exportFile(dir, "events.csv", func(w io.Writer) error {
		return s.WriteEvents(w, events, false)
	}); err != nil {
		return err
	}
	if err := s.exportFile(dir, "events_formatted.csv", func(w io.Writer) error {
		return s.WriteEvents(w, events, true)
	}); err != nil {
		return err
	}
	lg().Info("export finished", "dir", dir)
	return nil
}

func (s *exportServiceImpl) exportFile(dir, name string, write func(io.Writer) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// exportCashFile writes the cash ledger rows of one category. Interest rows
// are split between the long and short files by their ledger direction.
func (s *exportServiceImpl) exportCashFile(dir, name string, cat models.Category, start, end *time.Time) error {
	entries, err := s.cashEntries(cat, start, end)
	if err != nil {
		return err
	}
	if cat == models.CategoryInterest {
		// long interest is withdrawn, short interest deposited
		wantType := "WITH"
		if name == "shortint.csv" {
			wantType = "DEPO"
		}
		var filtered []models.RawEntry
		for _, e := range entries {
			if e.Type == wantType {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return s.exportFile(dir, name, func(w io.Writer) error {
		return writeCashRows(w, entries)
	})
}

// cashEntries returns the windowed rows of one category, excluding option
// activity rows, which are reported through trade events instead.
func (s *exportServiceImpl) cashEntries(cat models.Category, start, end *time.Time) ([]models.RawEntry, error) {
	all, err := s.store.RawEntriesInWindow(start, end)
	if err != nil {
		return nil, err
	}
	var out []models.RawEntry
	for _, e := range all {
		if e.Category != cat {
			continue
		}
		if _, err := models.ParseActionType(e.Type); err == nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func writeCashRows(w io.Writer, entries []models.RawEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "ref", "description", "currency", "amount", "tags"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			utils.FormatDMY(e.RefDate), e.Type, e.BrokerRef, e.Description,
			e.Currency, e.Amount.StringFixed(2), e.Tags,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportServiceImpl) WriteTrades(w io.Writer, start, end *time.Time) error {
	trades, err := s.store.TradesInWindow(start, end)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{
		"entry_date", "exit_date", "symbol", "ref", "quantity",
		"entry_price", "exit_price", "entry_brokerage", "exit_brokerage",
		"fees", "gross_total", "category",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			utils.FormatDMY(t.EntryDate), utils.FormatDMY(t.ExitDate),
			t.Symbol, t.BrokerRef, t.Quantity.String(),
			t.EntryPrice.String(), t.ExitPrice.String(),
			t.EntryBrokerage.StringFixed(2), t.ExitBrokerage.StringFixed(2),
			t.Fees.StringFixed(2), t.GrossTotal().StringFixed(2),
			t.Category.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportServiceImpl) WriteEvents(w io.Writer, events []models.TradeEvent, formatted bool) error {
	cw := csv.NewWriter(w)
	if formatted {
		return writeFormattedEvents(cw, events)
	}
	header := []string{
		"symbol", "description", "quantity", "open_date", "open_price",
		"open_brokerage", "open_fees", "open_net", "open_gross",
		"close_date", "close_price", "close_brokerage", "close_fees",
		"close_net", "close_gross", "net_total", "gross_total", "parcel", "parcel_count",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, ev := range events {
		record := []string{
			ev.Symbol, ev.Description, ev.Quantity.String(),
			ev.OpenDate.Format(utils.ISODateFormat), ev.OpenPrice.String(),
			ev.OpenBrokerage.StringFixed(2), ev.OpenFees.StringFixed(2),
			ev.OpenNet.StringFixed(2), ev.OpenGross.StringFixed(2),
			ev.CloseDate.Format(utils.ISODateFormat), ev.ClosePrice.String(),
			ev.CloseBrokerage.StringFixed(2), ev.CloseFees.StringFixed(2),
			ev.CloseNet.StringFixed(2), ev.CloseGross.StringFixed(2),
			ev.NetTotal.StringFixed(2), ev.GrossTotal.StringFixed(2),
			fmt.Sprint(ev.Parcel), fmt.Sprint(ev.ParcelCount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFormattedEvents is the human-readable layout: close date first,
// day/month/year dates, a summed costs column and a parcel note.
func writeFormattedEvents(cw *csv.Writer, events []models.TradeEvent) error {
	header := []string{
		"close_date", "open_date", "symbol", "description", "quantity",
		"open_price", "close_price", "costs", "net_total", "gross_total", "note",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, ev := range events {
		record := []string{
			utils.FormatDMY(ev.CloseDate), utils.FormatDMY(ev.OpenDate),
			ev.Symbol, ev.Description, ev.Quantity.String(),
			ev.OpenPrice.String(), ev.ClosePrice.String(),
			ev.TotalCosts().StringFixed(2),
			ev.NetTotal.StringFixed(2), ev.GrossTotal.StringFixed(2),
			ev.ParcelNote(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summarise rolls the window up into the running totals: trading profit,
// cash flows by category and the final ledger balance.
func (s *exportServiceImpl) Summarise(start, end *time.Time) (*Summary, error) {
	sum := &Summary{}

	trades, err := s.store.TradesInWindow(start, end)
	if err != nil {
		return nil, err
	}
	for _, t := range trades {
		sum.Profit = sum.Profit.Add(t.GrossTotalImp)
	}
	sum.TradeCount = len(trades)

	entries, err := s.store.RawEntriesInWindow(start, end)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := models.ParseActionType(e.Type); err == nil {
			continue // option activity rows live outside the cash ledger
		}
		sum.FinalBalance = sum.FinalBalance.Add(e.Amount)
		switch e.Category {
		case models.CategoryInterest:
			if e.Type == "WITH" {
				sum.InterestLong = sum.InterestLong.Add(e.Amount)
			} else {
				sum.InterestShort = sum.InterestShort.Add(e.Amount)
			}
		case models.CategoryCommission:
			sum.Commissions = sum.Commissions.Add(e.Amount)
		case models.CategoryRiskFee:
			sum.RiskFees = sum.RiskFees.Add(e.Amount)
		case models.CategoryExchangeFee:
			sum.ExchangeFees = sum.ExchangeFees.Add(e.Amount)
		case models.CategoryDividend:
			sum.Dividends = sum.Dividends.Add(e.Amount)
		case models.CategoryTransfer:
			if e.Amount.GreaterThanOrEqual(decimal.Decimal{}) {
				sum.Deposits = sum.Deposits.Add(e.Amount)
			} else {
				sum.Withdrawals = sum.Withdrawals.Add(e.Amount)
			}
		case models.CategoryUnknown:
			sum.Unknown = sum.Unknown.Add(e.Amount)
		}
	}
	return sum, nil
}
