package services

import (
	"fmt"
	"time"

	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/processors"
	"github.com/username/tradeherder/src/store"
)

type reconcileServiceImpl struct {
	store store.Store
}

func NewReconcileService(st store.Store) ReconcileService {
	return &reconcileServiceImpl{store: st}
}

// Recompute rebuilds all derived state from the raw ledger: derived tables
// are dropped, both matcher families run, and exit prices are averaged.
// Matching depends on row order, so the ledger's ordering is validated as a
// precondition rather than assumed.
func (s *reconcileServiceImpl) Recompute() (*processors.RunReport, error) {
	if err := s.validateOrdering(); err != nil {
		return nil, err
	}
	if err := s.store.ResetDerived(); err != nil {
		return nil, fmt.Errorf("resetting derived state: %w", err)
	}

	report := processors.NewRunReport()
	started := time.Now()
	lg().Info("processing run starting", "runID", report.RunID)

	attributor := processors.NewCommissionAttributor(s.store)
	if err := processors.NewPositionMatcher(s.store, attributor, report).Run(); err != nil {
		return report, fmt.Errorf("matching ledger positions: %w", err)
	}
	if err := processors.NewOptionLotMatcher(s.store, report).Run(); err != nil {
		return report, fmt.Errorf("matching option lots: %w", err)
	}
	if err := processors.NewExitPriceAverager(s.store, report).Run(); err != nil {
		return report, fmt.Errorf("averaging exit prices: %w", err)
	}

	lg().Info("processing run finished", "runID", report.RunID,
		"anomalies", len(report.Anomalies), "took", time.Since(started).String())
	return report, nil
}

// validateOrdering rejects a ledger whose import sequence numbers are
// missing or duplicated. The matchers rely on (import sequence, ref date)
// being a total order over each batch.
func (s *reconcileServiceImpl) validateOrdering() error {
	entries, err := s.store.RawEntries()
	if err != nil {
		return err
	}
	var prev models.RawEntry
	for i, e := range entries {
		if e.ImportSeq <= 0 {
			return fmt.Errorf("raw entry %d has no import sequence", e.ID)
		}
		if i > 0 && e.ImportSeq <= prev.ImportSeq {
			return fmt.Errorf("raw entries %d and %d share import sequence %d",
				prev.ID, e.ID, e.ImportSeq)
		}
		prev = e
	}
	return nil
}
