package services

import (
	"time"

	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/processors"
	"github.com/username/tradeherder/src/store"
)

type eventServiceImpl struct {
	store store.Store
}

func NewEventService(st store.Store) EventService {
	return &eventServiceImpl{store: st}
}

func (s *eventServiceImpl) Events(start, end *time.Time) ([]models.TradeEvent, *processors.RunReport, error) {
	report := processors.NewRunReport()
	expander := processors.NewTradeEventExpander(s.store, report)
	lots, err := expander.CollectLots()
	if err != nil {
		return nil, report, err
	}
	return expander.Expand(lots, start, end), report, nil
}
