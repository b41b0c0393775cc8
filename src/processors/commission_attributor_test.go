package processors

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

func TestAttributorSubstringAndCeiling(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, commissionRow("AB12", day(2014, 2, 20), "-15.00"))
	insertRaw(t, st, commissionRow("AB12", day(2014, 3, 5), "-15.00"))
	insertRaw(t, st, commissionRow("XY99", day(2014, 2, 25), "-9.00"))
	insertRaw(t, st, riskFeeRow("AB12", day(2014, 2, 21), "-5.00"))

	a := NewCommissionAttributor(st)

	comms, err := a.Commissions(day(2014, 3, 1), "AB12")
	require.NoError(t, err)
	require.Len(t, comms, 1, "rows after the ceiling are ignored")
	require.Equal(t, day(2014, 2, 20), comms[0].RefDate)

	comms, err = a.Commissions(day(2014, 3, 5), "AB12")
	require.NoError(t, err)
	require.Len(t, comms, 2, "ceiling is inclusive")

	fees, err := a.RiskFees(day(2014, 3, 1), "AB12")
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.Equal(t, models.CategoryRiskFee, fees[0].Category)
}

func TestAttributorMemoisesCandidateList(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, commissionRow("AB12", day(2014, 2, 20), "-15.00"))

	a := NewCommissionAttributor(st)
	_, err := a.Commissions(day(2014, 3, 1), "AB12")
	require.NoError(t, err)

	// A row inserted after the first lookup stays invisible to the cached
	// candidate list. Build one attributor per run.
	insertRaw(t, st, commissionRow("AB12", day(2014, 2, 22), "-15.00"))
	comms, err := a.Commissions(day(2014, 3, 1), "AB12")
	require.NoError(t, err)
	require.Len(t, comms, 1)
}
