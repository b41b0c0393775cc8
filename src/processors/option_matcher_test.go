package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

func optionRow(action string, symbol string, date time.Time, qty, price, comm, fees, total string) models.RawEntry {
	return models.RawEntry{
		Type:        action,
		RefDate:     date,
		Symbol:      symbol,
		Description: symbol + " CALL",
		BrokerRef:   "T" + date.Format("20060102"),
		OpenPrice:   dec(price),
		Size:        dec(qty),
		Brokerage:   dec(comm),
		Fees:        dec(fees),
		Amount:      dec(total),
	}
}

func runOptionMatcher(t *testing.T, st store.Store) *RunReport {
	t.Helper()
	report := NewRunReport()
	m := NewOptionLotMatcher(st, report)
	require.NoError(t, m.Run())
	return report
}

func TestOptionMatcherOpenAndClose(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "1.50", "-2011.50"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "10", "2.50", "10.00", "1.50", "2488.50"))

	report := runOptionMatcher(t, st)
	require.Empty(t, report.Anomalies)

	positions, err := st.Positions()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	pos := positions[0]
	require.Equal(t, models.StatusClosed, pos.Status)
	require.Equal(t, day(2014, 2, 1), pos.CloseDate)
	require.True(t, pos.EntryQuantity.Equal(dec("10")))
	require.True(t, pos.ExitQuantity.Equal(dec("10")))
	require.True(t, pos.Brokerage.Equal(dec("20.00")))
	require.True(t, pos.Fees.Equal(dec("3.00")))
	// entry cost sign-inverted, exit accumulated as is:
	// 2488.50 proceeds - 2011.50 outlay = 477.00 profit
	require.True(t, pos.NetTotalCost.Equal(dec("477.00")), "net %s", pos.NetTotalCost)
	// gross = 10 x 100 x (2.50 - 2.00)
	require.True(t, pos.GrossTotalCost.Equal(dec("500.00")), "gross %s", pos.GrossTotalCost)
}

func TestOptionMatcherEqualWeightExitPrice(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "6", "2.50", "10.00", "0", "1490.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 10), "4", "2.00", "10.00", "0", "790.00"))

	report := runOptionMatcher(t, st)
	require.Empty(t, report.Anomalies)
	require.NoError(t, NewExitPriceAverager(st, report).Run())

	positions, err := st.Positions()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	pos := positions[0]
	require.Equal(t, models.StatusClosed, pos.Status)
	require.Equal(t, 2, pos.NumCloses)

	// The mean weights each close leg equally. A quantity-weighted mean of
	// the same legs would be 2.30; it must not be that.
	require.True(t, pos.ExitPrice.Equal(dec("2.25")), "exit price %s", pos.ExitPrice)
	require.False(t, pos.ExitPrice.Equal(dec("2.30")))
}

func TestOptionMatcherMissingCounterpart(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("SELL TO CLOSE", "NOOPEN", day(2014, 2, 1), "5", "1.00", "10.00", "0", "490.00"))

	report := runOptionMatcher(t, st)
	require.Equal(t, 1, report.Count(AnomalyMissingCounterpart))

	positions, err := st.Positions()
	require.NoError(t, err)
	require.Empty(t, positions)
}

func TestOptionMatcherExitExceedsEntry(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "12", "2.50", "10.00", "0", "2990.00"))

	report := runOptionMatcher(t, st)
	require.Equal(t, 1, report.Count(AnomalyExcessExit))

	// No rollback: the aggregates keep the excess quantity.
	positions, err := st.Positions()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.True(t, positions[0].ExitQuantity.Equal(dec("12")))
	require.NotEqual(t, models.StatusClosed, positions[0].Status)
}

func TestOptionMatcherNoReopenAfterClose(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "10", "2.50", "10.00", "0", "2490.00"))
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 3, 1), "5", "1.00", "10.00", "0", "-510.00"))

	runOptionMatcher(t, st)

	positions, err := st.Positions()
	require.NoError(t, err)
	require.Len(t, positions, 2, "a close ends the chain; the next open starts a fresh position")
	require.Equal(t, models.StatusClosed, positions[0].Status)
	require.Equal(t, models.StatusOpen, positions[1].Status)
}

func TestOptionMatcherExerciseCloses(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("EXERCISE", "BHPXY", day(2014, 2, 1), "10", "0.00", "0.00", "0", "0.00"))

	report := runOptionMatcher(t, st)
	require.Empty(t, report.Anomalies)

	positions, err := st.Positions()
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.Equal(t, models.StatusClosed, positions[0].Status)
}
