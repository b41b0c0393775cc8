package parsers

import (
	"io"

	"github.com/username/tradeherder/src/models"
)

// Result is the outcome of parsing one file: the rows that held the expected
// shape, plus an error per row that did not.
type Result struct {
	Entries []models.RawEntry
	BadRows []*models.DataShapeError
}

// Parser turns one broker export file into raw ledger entries. Parsers only
// validate shape; categorisation and matching happen downstream. A non-nil
// error means the file itself was unreadable, not that a row was bad.
type Parser interface {
	Parse(file io.Reader) ([]models.RawEntry, []*models.DataShapeError, error)
}

// Collect adapts a parser's three-value return into a Result.
func Collect(p Parser, file io.Reader) (*Result, error) {
	entries, bad, err := p.Parse(file)
	if err != nil {
		return nil, err
	}
	return &Result{Entries: entries, BadRows: bad}, nil
}
