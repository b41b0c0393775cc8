package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/database"
	"github.com/username/tradeherder/src/models"
)

// Dates are stored as RFC3339 strings, which sort lexicographically in the
// same order as the timestamps they encode.
const timeLayout = time.RFC3339

// sqliteStore implements Store on top of the shared sqlite database.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle. The schema must already have
// been created via database.InitDB or database.EnsureSchema.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func decodeDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

const rawColumns = `id, import_seq, type, ref_date, symbol, broker_ref, description, period,
	currency, open_price, close_price, size, amount, brokerage, fees, tags, category,
	position_id, activity_id`

func (s *sqliteStore) InsertRawEntry(e *models.RawEntry) error {
	res, err := s.db.Exec(`INSERT INTO raw_entries (import_seq, type, ref_date, symbol,
		broker_ref, description, period, currency, open_price, close_price, size, amount,
		brokerage, fees, tags, category, position_id, activity_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ImportSeq, e.Type, encodeTime(e.RefDate), e.Symbol, e.BrokerRef, e.Description,
		e.Period, e.Currency, e.OpenPrice.String(), e.ClosePrice.String(), e.Size.String(),
		e.Amount.String(), e.Brokerage.String(), e.Fees.String(), e.Tags, int(e.Category),
		e.PositionID, e.ActivityID)
	if err != nil {
		return fmt.Errorf("error inserting raw entry (seq %d): %w", e.ImportSeq, err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

func scanRawEntry(rows *sql.Rows) (models.RawEntry, error) {
	var e models.RawEntry
	var refDate, openPrice, closePrice, size, amount, brokerage, fees string
	var category int
	err := rows.Scan(&e.ID, &e.ImportSeq, &e.Type, &refDate, &e.Symbol, &e.BrokerRef,
		&e.Description, &e.Period, &e.Currency, &openPrice, &closePrice, &size, &amount,
		&brokerage, &fees, &e.Tags, &category, &e.PositionID, &e.ActivityID)
	if err != nil {
		return e, err
	}
	e.Category = models.Category(category)
	if e.RefDate, err = decodeTime(refDate); err != nil {
		return e, err
	}
	if e.OpenPrice, err = decodeDecimal(openPrice); err != nil {
		return e, err
	}
	if e.ClosePrice, err = decodeDecimal(closePrice); err != nil {
		return e, err
	}
	if e.Size, err = decodeDecimal(size); err != nil {
		return e, err
	}
	if e.Amount, err = decodeDecimal(amount); err != nil {
		return e, err
	}
	if e.Brokerage, err = decodeDecimal(brokerage); err != nil {
		return e, err
	}
	e.Fees, err = decodeDecimal(fees)
	return e, err
}

func (s *sqliteStore) queryRawEntries(where string, args ...any) ([]models.RawEntry, error) {
	q := "SELECT " + rawColumns + " FROM raw_entries"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY import_seq, ref_date"
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RawEntry
	for rows.Next() {
		e, err := scanRawEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) RawEntries() ([]models.RawEntry, error) {
	return s.queryRawEntries("")
}

func (s *sqliteStore) RawEntriesByCategory(cats ...models.Category) ([]models.RawEntry, error) {
	if len(cats) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(cats))
	args := make([]any, len(cats))
	for i, c := range cats {
		placeholders[i] = "?"
		args[i] = int(c)
	}
	return s.queryRawEntries("category IN ("+strings.Join(placeholders, ", ")+")", args...)
}

func (s *sqliteStore) RawEntriesMatchingRef(cat models.Category, brokerRef string) ([]models.RawEntry, error) {
	// instr rather than LIKE so that % and _ in references stay literal.
	return s.queryRawEntries("category = ? AND instr(description, ?) > 0", int(cat), brokerRef)
}

func (s *sqliteStore) RawEntriesInWindow(start, end *time.Time) ([]models.RawEntry, error) {
	var conds []string
	var args []any
	// date() compares at day granularity so rows carrying a time-of-day
	// still land inside a window ending on that day.
	if start != nil {
		conds = append(conds, "date(ref_date) >= date(?)")
		args = append(args, encodeTime(*start))
	}
	if end != nil {
		conds = append(conds, "date(ref_date) <= date(?)")
		args = append(args, encodeTime(*end))
	}
	return s.queryRawEntries(strings.Join(conds, " AND "), args...)
}

func (s *sqliteStore) MaxImportSeq() (int64, error) {
	var max sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(import_seq) FROM raw_entries").Scan(&max); err != nil {
		return 0, err
	}
	return max.Int64, nil
}

func (s *sqliteStore) UpdateRawCategory(id int64, cat models.Category) error {
	_, err := s.db.Exec("UPDATE raw_entries SET category = ? WHERE id = ?", int(cat), id)
	return err
}

func (s *sqliteStore) UpdateRawTags(id int64, tags string) error {
	_, err := s.db.Exec("UPDATE raw_entries SET tags = ? WHERE id = ?", tags, id)
	return err
}

func (s *sqliteStore) LinkRawEntry(id, positionID, activityID int64) error {
	_, err := s.db.Exec("UPDATE raw_entries SET position_id = ?, activity_id = ? WHERE id = ?",
		positionID, activityID, id)
	return err
}

func (s *sqliteStore) ResetDerived() error {
	return database.RefreshDerivedTables(s.db)
}

func (s *sqliteStore) SavePosition(p *models.Position) error {
	if p.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO positions (instrument, symbol, description,
			broker_ref, open_date, close_date, status, entry_quantity, exit_quantity,
			entry_price, exit_price, brokerage, fees, net_total_cost, gross_total_cost,
			num_opens, num_closes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			int(p.Instrument), p.Symbol, p.Description, p.BrokerRef, encodeTime(p.OpenDate),
			encodeTime(p.CloseDate), int(p.Status), p.EntryQuantity.String(),
			p.ExitQuantity.String(), p.EntryPrice.String(), p.ExitPrice.String(),
			p.Brokerage.String(), p.Fees.String(), p.NetTotalCost.String(),
			p.GrossTotalCost.String(), p.NumOpens, p.NumCloses)
		if err != nil {
			return fmt.Errorf("error inserting position %s: %w", p.BrokerRef, err)
		}
		p.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.Exec(`UPDATE positions SET instrument = ?, symbol = ?, description = ?,
		broker_ref = ?, open_date = ?, close_date = ?, status = ?, entry_quantity = ?,
		exit_quantity = ?, entry_price = ?, exit_price = ?, brokerage = ?, fees = ?,
		net_total_cost = ?, gross_total_cost = ?, num_opens = ?, num_closes = ?
		WHERE id = ?`,
		int(p.Instrument), p.Symbol, p.Description, p.BrokerRef, encodeTime(p.OpenDate),
		encodeTime(p.CloseDate), int(p.Status), p.EntryQuantity.String(),
		p.ExitQuantity.String(), p.EntryPrice.String(), p.ExitPrice.String(),
		p.Brokerage.String(), p.Fees.String(), p.NetTotalCost.String(),
		p.GrossTotalCost.String(), p.NumOpens, p.NumCloses, p.ID)
	return err
}

const positionColumns = `id, instrument, symbol, description, broker_ref, open_date, close_date,
	status, entry_quantity, exit_quantity, entry_price, exit_price, brokerage, fees,
	net_total_cost, gross_total_cost, num_opens, num_closes`

func scanPosition(rows *sql.Rows) (models.Position, error) {
	var p models.Position
	var instrument, status int
	var openDate, closeDate string
	var entryQty, exitQty, entryPrice, exitPrice, brokerage, fees, net, gross string
	err := rows.Scan(&p.ID, &instrument, &p.Symbol, &p.Description, &p.BrokerRef,
		&openDate, &closeDate, &status, &entryQty, &exitQty, &entryPrice, &exitPrice,
		&brokerage, &fees, &net, &gross, &p.NumOpens, &p.NumCloses)
	if err != nil {
		return p, err
	}
	p.Instrument = models.Instrument(instrument)
	p.Status = models.TradeStatus(status)
	if p.OpenDate, err = decodeTime(openDate); err != nil {
		return p, err
	}
	if p.CloseDate, err = decodeTime(closeDate); err != nil {
		return p, err
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.EntryQuantity, entryQty}, {&p.ExitQuantity, exitQty},
		{&p.EntryPrice, entryPrice}, {&p.ExitPrice, exitPrice},
		{&p.Brokerage, brokerage}, {&p.Fees, fees},
		{&p.NetTotalCost, net}, {&p.GrossTotalCost, gross},
	} {
		if *f.dst, err = decodeDecimal(f.src); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *sqliteStore) queryPositions(where string, args ...any) ([]models.Position, error) {
	q := "SELECT " + positionColumns + " FROM positions"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id"
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Positions() ([]models.Position, error) {
	return s.queryPositions("")
}

func (s *sqliteStore) SaveActivity(a *models.Activity) error {
	if a.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO activities (position_id, trade_id, ref_date,
			symbol, description, broker_ref, action, quantity, price, brokerage, fees,
			net_total_cost, gross_total_cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.PositionID, a.TradeID, encodeTime(a.RefDate), a.Symbol, a.Description,
			a.BrokerRef, int(a.Action), a.Quantity.String(), a.Price.String(),
			a.Brokerage.String(), a.Fees.String(), a.NetTotalCost.String(),
			a.GrossTotalCost.String())
		if err != nil {
			return fmt.Errorf("error inserting activity %s: %w", a.BrokerRef, err)
		}
		a.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.Exec(`UPDATE activities SET position_id = ?, trade_id = ?, ref_date = ?,
		symbol = ?, description = ?, broker_ref = ?, action = ?, quantity = ?, price = ?,
		brokerage = ?, fees = ?, net_total_cost = ?, gross_total_cost = ? WHERE id = ?`,
		a.PositionID, a.TradeID, encodeTime(a.RefDate), a.Symbol, a.Description,
		a.BrokerRef, int(a.Action), a.Quantity.String(), a.Price.String(),
		a.Brokerage.String(), a.Fees.String(), a.NetTotalCost.String(),
		a.GrossTotalCost.String(), a.ID)
	return err
}

func (s *sqliteStore) ActivitiesForPosition(positionID int64) ([]models.Activity, error) {
	rows, err := s.db.Query(`SELECT id, position_id, trade_id, ref_date, symbol, description,
		broker_ref, action, quantity, price, brokerage, fees, net_total_cost, gross_total_cost
		FROM activities WHERE position_id = ? ORDER BY id`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var refDate string
		var action int
		var qty, price, brokerage, fees, net, gross string
		err := rows.Scan(&a.ID, &a.PositionID, &a.TradeID, &refDate, &a.Symbol,
			&a.Description, &a.BrokerRef, &action, &qty, &price, &brokerage, &fees,
			&net, &gross)
		if err != nil {
			return nil, err
		}
		a.Action = models.ActionType(action)
		if a.RefDate, err = decodeTime(refDate); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&a.Quantity, qty}, {&a.Price, price}, {&a.Brokerage, brokerage},
			{&a.Fees, fees}, {&a.NetTotalCost, net}, {&a.GrossTotalCost, gross},
		} {
			if *f.dst, err = decodeDecimal(f.src); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveTrade(t *models.Trade) error {
	if t.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO trades (position_id, import_seq, entry_date,
			exit_date, symbol, description, broker_ref, quantity, entry_price, exit_price,
			entry_brokerage, exit_brokerage, fees, gross_total_imp, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.PositionID, t.ImportSeq, encodeTime(t.EntryDate), encodeTime(t.ExitDate),
			t.Symbol, t.Description, t.BrokerRef, t.Quantity.String(),
			t.EntryPrice.String(), t.ExitPrice.String(), t.EntryBrokerage.String(),
			t.ExitBrokerage.String(), t.Fees.String(), t.GrossTotalImp.String(),
			int(t.Category))
		if err != nil {
			return fmt.Errorf("error inserting trade %s: %w", t.BrokerRef, err)
		}
		t.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.Exec(`UPDATE trades SET position_id = ?, import_seq = ?, entry_date = ?,
		exit_date = ?, symbol = ?, description = ?, broker_ref = ?, quantity = ?,
		entry_price = ?, exit_price = ?, entry_brokerage = ?, exit_brokerage = ?, fees = ?,
		gross_total_imp = ?, category = ? WHERE id = ?`,
		t.PositionID, t.ImportSeq, encodeTime(t.EntryDate), encodeTime(t.ExitDate),
		t.Symbol, t.Description, t.BrokerRef, t.Quantity.String(), t.EntryPrice.String(),
		t.ExitPrice.String(), t.EntryBrokerage.String(), t.ExitBrokerage.String(),
		t.Fees.String(), t.GrossTotalImp.String(), int(t.Category), t.ID)
	return err
}

const tradeColumns = `id, position_id, import_seq, entry_date, exit_date, symbol, description,
	broker_ref, quantity, entry_price, exit_price, entry_brokerage, exit_brokerage, fees,
	gross_total_imp, category`

func (s *sqliteStore) queryTrades(where, order string, args ...any) ([]models.Trade, error) {
	q := "SELECT " + tradeColumns + " FROM trades"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + order
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Trade
	for rows.Next() {
		var t models.Trade
		var entryDate, exitDate string
		var category int
		var qty, entryPrice, exitPrice, entryBrok, exitBrok, fees, gross string
		err := rows.Scan(&t.ID, &t.PositionID, &t.ImportSeq, &entryDate, &exitDate,
			&t.Symbol, &t.Description, &t.BrokerRef, &qty, &entryPrice, &exitPrice,
			&entryBrok, &exitBrok, &fees, &gross, &category)
		if err != nil {
			return nil, err
		}
		t.Category = models.Category(category)
		if t.EntryDate, err = decodeTime(entryDate); err != nil {
			return nil, err
		}
		if t.ExitDate, err = decodeTime(exitDate); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&t.Quantity, qty}, {&t.EntryPrice, entryPrice}, {&t.ExitPrice, exitPrice},
			{&t.EntryBrokerage, entryBrok}, {&t.ExitBrokerage, exitBrok},
			{&t.Fees, fees}, {&t.GrossTotalImp, gross},
		} {
			if *f.dst, err = decodeDecimal(f.src); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Trades() ([]models.Trade, error) {
	return s.queryTrades("", "id")
}

func (s *sqliteStore) TradesInWindow(start, end *time.Time) ([]models.Trade, error) {
	var conds []string
	var args []any
	if start != nil {
		conds = append(conds, "date(exit_date) >= date(?)")
		args = append(args, encodeTime(*start))
	}
	if end != nil {
		conds = append(conds, "date(exit_date) <= date(?)")
		args = append(args, encodeTime(*end))
	}
	return s.queryTrades(strings.Join(conds, " AND "), "exit_date, import_seq", args...)
}
