package ig

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/utils"
)

// Contract note prices in the ledger switched scale at the start of December
// 2008; DEAL rows before the cutover are quoted at 100x and get divided down
// on import.
var priceAdjustCutoff = time.Date(2008, time.December, 1, 0, 0, 0, 0, time.UTC)

const priceAdjustTag = "priceadjust|"

var requiredColumns = []string{
	"TYPE", "DATE", "REF", "DESC", "PERIOD", "OPEN", "CURRENCY", "SIZE", "CLOSE", "AMOUNT",
}

// IGParser reads the IG Markets CFD ledger export.
type IGParser struct{}

func NewParser() *IGParser {
	return &IGParser{}
}

func (p *IGParser) Parse(file io.Reader) ([]models.RawEntry, []*models.DataShapeError, error) {
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
			return nil, fmt.Errorf("ledger header is missing column %s", name)
		}
	}
	return col, nil
}

func (p *IGParser) parseRow(record []string, col map[string]int, line int) (*models.RawEntry, *models.DataShapeError) {
	field := func(name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := utils.ParseLedgerDate(field("DATE"))
	if err != nil {
		return nil, &models.DataShapeError{Line: line, Reason: fmt.Sprintf("bad date %q", field("DATE"))}
	}

	entry := &models.RawEntry{
		Type:        field("TYPE"),
		RefDate:     date,
		BrokerRef:   field("REF"),
		Description: field("DESC"),
		Period:      field("PERIOD"),
		Currency:    field("CURRENCY"),
	}
	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"OPEN", &entry.OpenPrice},
		{"CLOSE", &entry.ClosePrice},
		{"SIZE", &entry.Size},
		{"AMOUNT", &entry.Amount},
	} {
		d, err := parseAmount(field(f.name))
		if err != nil {
			return nil, &models.DataShapeError{Line: line,
				Reason: fmt.Sprintf("bad %s value %q", f.name, field(f.name))}
		}
		*f.dst = d
	}

	if entry.Type == "DEAL" && entry.RefDate.Before(priceAdjustCutoff) {
		// Only positive prices are scaled; blank fields parse to zero and
		// must stay zero.
		hundred := decimal.NewFromInt(100)
		if entry.OpenPrice.IsPositive() {
			entry.OpenPrice = entry.OpenPrice.Div(hundred)
		}
		if entry.ClosePrice.IsPositive() {
			entry.ClosePrice = entry.ClosePrice.Div(hundred)
		}
		entry.Tags += priceAdjustTag
	}
	return entry, nil
}

// parseAmount reads a ledger money or size field. Blank means zero;
// thousands separators are tolerated.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" || s == "-" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
