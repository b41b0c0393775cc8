package optionsxpress

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/utils"
)

var requiredColumns = []string{
	"SYMBOL", "DESCRIPTION", "ACTION", "QUANTITY", "PRICE", "COMMISSION",
	"REG FEES", "DATE", "TRANSACTIONID", "ORDER NUMBER", "TRANSACTION TYPE ID", "TOTAL COST",
}

// OXParser reads the optionsXpress activity export. Every row already
// carries its own commission, fees and total cost, so the parser checks the
// row's internal arithmetic before accepting it.
type OXParser struct{}

func NewParser() *OXParser {
	return &OXParser{}
}

func (p *OXParser) Parse(file io.Reader) ([]models.RawEntry, []*models.DataShapeError, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var entries []models.RawEntry
	var badRows []*models.DataShapeError
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			badRows = append(badRows, &models.DataShapeError{Line: line, Reason: err.Error()})
			continue
		}
		entry, shapeErr := p.parseRow(record, col, line)
		if shapeErr != nil {
			badRows = append(badRows, shapeErr)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, badRows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("activity header is missing column %s", name)
		}
	}
	return col, nil
}

func (p *OXParser) parseRow(record []string, col map[string]int, line int) (*models.RawEntry, *models.DataShapeError) {
	field := func(name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	actionLabel := strings.ToUpper(field("ACTION"))
	action, err := models.ParseActionType(actionLabel)
	if err != nil || action == models.ActionOpen || action == models.ActionClose {
		// Plain BUY/SELL rows belong to share dealing, not options; an
		// exercised contract shows up as SELL TO CLOSE.
		return nil, &models.DataShapeError{Line: line,
			Reason: fmt.Sprintf("unsupported action %q", field("ACTION"))}
	}

	date, err := utils.ParseActivityDate(field("DATE"))
	if err != nil {
		return nil, &models.DataShapeError{Line: line, Reason: fmt.Sprintf("bad date %q", field("DATE"))}
	}

	entry := &models.RawEntry{
		Type:        action.String(),
		RefDate:     date,
		Symbol:      field("SYMBOL"),
		Description: field("DESCRIPTION"),
		BrokerRef:   field("TRANSACTIONID"),
	}
	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"QUANTITY", &entry.Size},
		{"PRICE", &entry.OpenPrice},
		{"COMMISSION", &entry.Brokerage},
		{"REG FEES", &entry.Fees},
		{"TOTAL COST", &entry.Amount},
	} {
		s := field(f.name)
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
		if err != nil {
			return nil, &models.DataShapeError{Line: line,
				Reason: fmt.Sprintf("bad %s value %q", f.name, s)}
		}
		*f.dst = d
	}

	if shapeErr := checkTotalCost(entry, action, line); shapeErr != nil {
		return nil, shapeErr
	}
	return entry, nil
}

// checkTotalCost verifies the row against its own arithmetic: the reported
// total cost must equal the gross at contract size plus costs on the buy
// side, or minus costs on the sell side.
func checkTotalCost(e *models.RawEntry, action models.ActionType, line int) *models.DataShapeError {
	gross := e.Size.Mul(decimal.NewFromInt(models.OptionContractSize)).Mul(e.OpenPrice)
	costs := e.Brokerage.Add(e.Fees)

	var expected decimal.Decimal
	if action == models.ActionBuyToOpen {
		expected = gross.Add(costs).Neg()
	} else {
		expected = gross.Sub(costs)
	}
	if !e.Amount.Equal(expected) {
		return &models.DataShapeError{Line: line,
			Reason: fmt.Sprintf("total cost %s does not reconcile with %s at price %s (expected %s)",
				e.Amount.String(), e.Size.String(), e.OpenPrice.String(), expected.String())}
	}
	return nil
}
