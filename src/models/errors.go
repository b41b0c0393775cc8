package models

import "fmt"

// DataShapeError reports one input row a parser could not accept. It is
// fatal for the row, never for the file; the import flow decides whether a
// file with bad rows aborts or continues without them.
type DataShapeError struct {
	Line   int
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
