package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/utils"
)

// memoryStore is an in-memory Store used by tests and by dry runs. It mirrors
// the sqlite implementation's ordering guarantees.
type memoryStore struct {
	raws       []models.RawEntry
	positions  []models.Position
	activities []models.Activity
	trades     []models.Trade

	nextRawID      int64
	nextPositionID int64
	nextActivityID int64
	nextTradeID    int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) InsertRawEntry(e *models.RawEntry) error {
	s.nextRawID++
	e.ID = s.nextRawID
	s.raws = append(s.raws, *e)
	return nil
}

func sortByImportSeq(entries []models.RawEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ImportSeq != entries[j].ImportSeq {
			return entries[i].ImportSeq < entries[j].ImportSeq
		}
		return entries[i].RefDate.Before(entries[j].RefDate)
	})
}

func (s *memoryStore) RawEntries() ([]models.RawEntry, error) {
	out := append([]models.RawEntry(nil), s.raws...)
	sortByImportSeq(out)
	return out, nil
}

func (s *memoryStore) RawEntriesByCategory(cats ...models.Category) ([]models.RawEntry, error) {
	var out []models.RawEntry
	for _, e := range s.raws {
		for _, c := range cats {
			if e.Category == c {
				out = append(out, e)
				break
			}
		}
	}
	sortByImportSeq(out)
	return out, nil
}

func (s *memoryStore) RawEntriesMatchingRef(cat models.Category, brokerRef string) ([]models.RawEntry, error) {
	var out []models.RawEntry
	for _, e := range s.raws {
		if e.Category == cat && strings.Contains(e.Description, brokerRef) {
			out = append(out, e)
		}
	}
	sortByImportSeq(out)
	return out, nil
}

func (s *memoryStore) RawEntriesInWindow(start, end *time.Time) ([]models.RawEntry, error) {
	var out []models.RawEntry
	for _, e := range s.raws {
		day := utils.DayOf(e.RefDate)
		if start != nil && day.Before(utils.DayOf(*start)) {
			continue
		}
		if end != nil && day.After(utils.DayOf(*end)) {
			continue
		}
		out = append(out, e)
	}
	sortByImportSeq(out)
	return out, nil
}

func (s *memoryStore) MaxImportSeq() (int64, error) {
	var max int64
	for _, e := range s.raws {
		if e.ImportSeq > max {
			max = e.ImportSeq
		}
	}
	return max, nil
}

func (s *memoryStore) UpdateRawCategory(id int64, cat models.Category) error {
	for i := range s.raws {
		if s.raws[i].ID == id {
			s.raws[i].Category = cat
			return nil
		}
	}
	return fmt.Errorf("raw entry %d not found", id)
}

func (s *memoryStore) UpdateRawTags(id int64, tags string) error {
	for i := range s.raws {
		if s.raws[i].ID == id {
			s.raws[i].Tags = tags
			return nil
		}
	}
	return fmt.Errorf("raw entry %d not found", id)
}

func (s *memoryStore) LinkRawEntry(id, positionID, activityID int64) error {
	for i := range s.raws {
		if s.raws[i].ID == id {
			s.raws[i].PositionID = positionID
			s.raws[i].ActivityID = activityID
			return nil
		}
	}
	return fmt.Errorf("raw entry %d not found", id)
}

func (s *memoryStore) ResetDerived() error {
	s.positions = nil
	s.activities = nil
	s.trades = nil
	s.nextPositionID = 0
	s.nextActivityID = 0
	s.nextTradeID = 0
	for i := range s.raws {
		s.raws[i].PositionID = 0
		s.raws[i].ActivityID = 0
	}
	return nil
}

func (s *memoryStore) SavePosition(p *models.Position) error {
	if p.ID == 0 {
		s.nextPositionID++
		p.ID = s.nextPositionID
		s.positions = append(s.positions, *p)
		return nil
	}
	for i := range s.positions {
		if s.positions[i].ID == p.ID {
			s.positions[i] = *p
			return nil
		}
	}
	return fmt.Errorf("position %d not found", p.ID)
}

func (s *memoryStore) Positions() ([]models.Position, error) {
	return append([]models.Position(nil), s.positions...), nil
}

func (s *memoryStore) SaveActivity(a *models.Activity) error {
	if a.ID == 0 {
		s.nextActivityID++
		a.ID = s.nextActivityID
		s.activities = append(s.activities, *a)
		return nil
	}
	for i := range s.activities {
		if s.activities[i].ID == a.ID {
			s.activities[i] = *a
			return nil
		}
	}
	return fmt.Errorf("activity %d not found", a.ID)
}

func (s *memoryStore) ActivitiesForPosition(positionID int64) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range s.activities {
		if a.PositionID == positionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memoryStore) SaveTrade(t *models.Trade) error {
	if t.ID == 0 {
		s.nextTradeID++
		t.ID = s.nextTradeID
		s.trades = append(s.trades, *t)
		return nil
	}
	for i := range s.trades {
		if s.trades[i].ID == t.ID {
			s.trades[i] = *t
			return nil
		}
	}
	return fmt.Errorf("trade %d not found", t.ID)
}

func (s *memoryStore) Trades() ([]models.Trade, error) {
	return append([]models.Trade(nil), s.trades...), nil
}

func (s *memoryStore) TradesInWindow(start, end *time.Time) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range s.trades {
		day := utils.DayOf(t.ExitDate)
		if start != nil && day.Before(utils.DayOf(*start)) {
			continue
		}
		if end != nil && day.After(utils.DayOf(*end)) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExitDate.Equal(out[j].ExitDate) {
			return out[i].ExitDate.Before(out[j].ExitDate)
		}
		return out[i].ImportSeq < out[j].ImportSeq
	})
	return out, nil
}
