package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

func expandAll(t *testing.T, st store.Store, report *RunReport) []models.TradeEvent {
	t.Helper()
	x := NewTradeEventExpander(st, report)
	lots, err := x.CollectLots()
	require.NoError(t, err)
	return x.Expand(lots, nil, nil)
}

func TestExpanderSingleParcel(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "1.50", "-2011.50"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "10", "2.50", "10.00", "1.50", "2488.50"))
	report := runOptionMatcher(t, st)

	events := expandAll(t, st, report)
	require.Len(t, events, 1)
	ev := events[0]
	require.Equal(t, 1, ev.Parcel)
	require.Equal(t, 1, ev.ParcelCount)
	require.Empty(t, ev.ParcelNote())
	require.Equal(t, day(2014, 1, 5), ev.OpenDate)
	require.Equal(t, day(2014, 2, 1), ev.CloseDate)
	require.True(t, ev.OpenBrokerage.Equal(dec("10.00")))
	require.True(t, ev.CloseBrokerage.Equal(dec("10.00")))
	require.True(t, ev.NetTotal.Equal(dec("477.00")), "net %s", ev.NetTotal)
	require.True(t, ev.GrossTotal.Equal(dec("500.00")), "gross %s", ev.GrossTotal)
}

func TestExpanderApportionsOpenSideEvenly(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "12.00", "3.00", "-2015.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 10), "4", "2.00", "10.00", "1.00", "789.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "6", "2.50", "10.00", "1.00", "1489.00"))
	report := runOptionMatcher(t, st)

	events := expandAll(t, st, report)
	require.Len(t, events, 2)

	// Parcels come out close-date ascending regardless of import order.
	require.Equal(t, day(2014, 2, 1), events[0].CloseDate)
	require.Equal(t, day(2014, 2, 10), events[1].CloseDate)
	require.Equal(t, "Partially closed position 1 of 2", events[0].ParcelNote())
	require.Equal(t, "Partially closed position 2 of 2", events[1].ParcelNote())

	// The open side splits evenly by parcel count, not by quantity.
	for _, ev := range events {
		require.True(t, ev.OpenBrokerage.Equal(dec("6.00")), "open brokerage %s", ev.OpenBrokerage)
		require.True(t, ev.OpenFees.Equal(dec("1.50")))
	}

	// Apportioned open sides add back up to the whole open leg.
	var openNet, openBrokerage, quantity decimal.Decimal
	for _, ev := range events {
		openNet = openNet.Add(ev.OpenNet)
		openBrokerage = openBrokerage.Add(ev.OpenBrokerage)
		quantity = quantity.Add(ev.Quantity)
	}
	require.True(t, openNet.Equal(dec("2015.00")))
	require.True(t, openBrokerage.Equal(dec("12.00")))
	require.True(t, quantity.Equal(dec("10")))

	require.Equal(t, 0, report.Count(AnomalyParcelQuantity))
}

func TestExpanderParcelQuantityMismatch(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "6", "2.50", "10.00", "0", "1490.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 10), "6", "2.00", "10.00", "0", "1190.00"))
	report := runOptionMatcher(t, st)

	// The matcher already flagged the overshoot and left the position open,
	// so close it by hand to force the expander over inconsistent parcels.
	positions, err := st.Positions()
	require.NoError(t, err)
	pos := positions[0]
	pos.Status = models.StatusClosed
	pos.CloseDate = day(2014, 2, 10)
	require.NoError(t, st.SavePosition(&pos))

	events := expandAll(t, st, report)
	require.Len(t, events, 2, "output still emitted")
	require.Equal(t, 1, report.Count(AnomalyParcelQuantity))
}

func TestExpanderMultipleOpensEmitsNothing(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 5), "6", "2.00", "10.00", "0", "-1210.00"))
	insertRaw(t, st, optionRow("BUY TO OPEN", "BHPXY", day(2014, 1, 10), "4", "2.10", "10.00", "0", "-850.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BHPXY", day(2014, 2, 1), "10", "2.50", "10.00", "0", "2490.00"))
	report := runOptionMatcher(t, st)

	events := expandAll(t, st, report)
	require.Empty(t, events)
	require.Equal(t, 1, report.Count(AnomalyMultipleOpens))
}

func TestExpanderWindow(t *testing.T) {
	st := store.NewMemoryStore()
	insertRaw(t, st, optionRow("BUY TO OPEN", "AAA", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "AAA", day(2014, 2, 1), "10", "2.50", "10.00", "0", "2490.00"))
	insertRaw(t, st, optionRow("BUY TO OPEN", "BBB", day(2014, 3, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "BBB", day(2014, 4, 1), "10", "2.50", "10.00", "0", "2490.00"))
	report := runOptionMatcher(t, st)

	x := NewTradeEventExpander(st, report)
	lots, err := x.CollectLots()
	require.NoError(t, err)

	// The window is inclusive at both ends.
	start := day(2014, 2, 1)
	end := day(2014, 3, 31)
	events := x.Expand(lots, &start, &end)
	require.Len(t, events, 1)
	require.Equal(t, "AAA", events[0].Symbol)

	end = day(2014, 4, 1)
	events = x.Expand(lots, &start, &end)
	require.Len(t, events, 2)
	require.Equal(t, "AAA", events[0].Symbol, "oldest close first")
	require.Equal(t, "BBB", events[1].Symbol)
}

func TestExpanderWindowComparesCalendarDays(t *testing.T) {
	st := store.NewMemoryStore()
	// Activity exports carry a time of day; the window bounds never do.
	closeAt := day(2014, 2, 1).Add(14*time.Hour + 15*time.Minute)
	insertRaw(t, st, optionRow("BUY TO OPEN", "AAA", day(2014, 1, 5), "10", "2.00", "10.00", "0", "-2010.00"))
	insertRaw(t, st, optionRow("SELL TO CLOSE", "AAA", closeAt, "10", "2.50", "10.00", "0", "2490.00"))
	report := runOptionMatcher(t, st)

	x := NewTradeEventExpander(st, report)
	lots, err := x.CollectLots()
	require.NoError(t, err)

	start := day(2014, 1, 1)
	end := day(2014, 2, 1)
	events := x.Expand(lots, &start, &end)
	require.Len(t, events, 1, "a 2:15 PM close still falls inside a window ending that day")
}
