package store

import (
	"time"

	"github.com/username/tradeherder/src/models"
)

// Store is the persistence boundary for the raw ledger and the derived
// reconciliation aggregates. Raw entries are written once at import and only
// their category, tags and match back-links change afterwards; positions,
// activities and trades are dropped and rebuilt by every processing run.
type Store interface {
	// InsertRawEntry persists a new ledger row and assigns its ID.
	InsertRawEntry(e *models.RawEntry) error
	// RawEntries returns every ledger row ordered by (import sequence, ref date).
	RawEntries() ([]models.RawEntry, error)
	// RawEntriesByCategory returns rows of the given categories, same ordering.
	RawEntriesByCategory(cats ...models.Category) ([]models.RawEntry, error)
	// RawEntriesMatchingRef returns rows of one category whose description
	// contains the broker reference as a substring, same ordering. This is
	// the correlation primitive behind the commission attributor.
	RawEntriesMatchingRef(cat models.Category, brokerRef string) ([]models.RawEntry, error)
	// RawEntriesInWindow returns rows whose ref date falls inside the
	// inclusive window, compared at calendar-day granularity; nil bounds
	// are open-ended.
	RawEntriesInWindow(start, end *time.Time) ([]models.RawEntry, error)
	// MaxImportSeq returns the highest import sequence seen, 0 when empty.
	MaxImportSeq() (int64, error)
	// UpdateRawCategory reassigns one row's category.
	UpdateRawCategory(id int64, cat models.Category) error
	// UpdateRawTags rewrites one row's tags.
	UpdateRawTags(id int64, tags string) error
	// LinkRawEntry records which position and activity consumed the row.
	LinkRawEntry(id, positionID, activityID int64) error

	// ResetDerived drops and recreates all derived state and clears raw
	// entry back-links. Every processing run starts here.
	ResetDerived() error

	// SavePosition inserts (ID==0) or updates a position.
	SavePosition(p *models.Position) error
	// Positions returns all positions in creation order.
	Positions() ([]models.Position, error)

	// SaveActivity inserts (ID==0) or updates an activity.
	SaveActivity(a *models.Activity) error
	// ActivitiesForPosition returns a position's activities in creation
	// order, so the first is always the original open leg.
	ActivitiesForPosition(positionID int64) ([]models.Activity, error)

	// SaveTrade inserts (ID==0) or updates a trade.
	SaveTrade(t *models.Trade) error
	// Trades returns all trades in creation order.
	Trades() ([]models.Trade, error)
	// TradesInWindow returns trades whose exit date falls inside the
	// inclusive window, compared at calendar-day granularity, ordered by
	// (exit date, import sequence).
	TradesInWindow(start, end *time.Time) ([]models.Trade, error)
}
