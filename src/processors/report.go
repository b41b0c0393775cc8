package processors

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/username/tradeherder/src/logger"
)

// ErrMissingCounterpart marks a close-side record with no corresponding open
// trade. Option family only; the CFD family opens a new chain instead.
var ErrMissingCounterpart = errors.New("no open trade found for closing activity")

// AnomalyKind labels a soft inconsistency detected while matching. Anomalies
// are logged and counted, never raised as failures; the run proceeds on
// best-effort data.
type AnomalyKind string

const (
	AnomalyCommissionCount    AnomalyKind = "commission-count"
	AnomalyCommissionDate     AnomalyKind = "commission-date-mismatch"
	AnomalyGrossTotal         AnomalyKind = "gross-total-mismatch"
	AnomalyMultipleOpens      AnomalyKind = "multiple-opens"
	AnomalyExcessExit         AnomalyKind = "exit-exceeds-entry"
	AnomalyMissingCounterpart AnomalyKind = "missing-counterpart"
	AnomalyParcelQuantity     AnomalyKind = "parcel-quantity-mismatch"
	AnomalyActivityCount      AnomalyKind = "activity-count-mismatch"
)

// Anomaly is one recorded inconsistency, keyed by the broker reference or
// symbol it concerns.
type Anomaly struct {
	Kind   AnomalyKind
	Ref    string
	Detail string
}

// RunReport collects the anomalies of one processing run. It exists so the
// outcome of a run can be inspected and asserted on; the arithmetic results
// never depend on it.
type RunReport struct {
	RunID     string
	Anomalies []Anomaly
}

// NewRunReport returns an empty report with a fresh run id.
func NewRunReport() *RunReport {
	return &RunReport{RunID: uuid.NewString()}
}

// Record notes an anomaly and logs it.
func (r *RunReport) Record(kind AnomalyKind, ref, detail string) {
	r.Anomalies = append(r.Anomalies, Anomaly{Kind: kind, Ref: ref, Detail: detail})
	lg().Warn("reconciliation anomaly",
		"kind", string(kind), "ref", ref, "detail", detail, "runID", r.RunID)
}

// Count returns how many anomalies of one kind were recorded.
func (r *RunReport) Count(kind AnomalyKind) int {
	n := 0
	for _, a := range r.Anomalies {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// lg returns the configured application logger, falling back to slog's
// default so library code stays usable before InitLogger runs (tests).
func lg() *slog.Logger {
	if logger.L != nil {
		return logger.L
	}
	return slog.Default()
}
