package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/classifier"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

const ledgerFixture = `TYPE,DATE,REF,DESC,PERIOD,OPEN,CURRENCY,SIZE,CLOSE,AMOUNT
WITH,20/02/14,C1,Share COMM AB12CD BHP Billiton,-,,AUD,0,,-15.00
WITH,01/03/14,C2,Share COMM AB12CD BHP Billiton,-,,AUD,0,,-15.00
DEAL,01/03/14,AB12CD,BHP Billiton,MAR-14,10.00,AUD,100,15.00,500.00
DIVIDEND,05/03/14,D1,BHP Billiton,-,,AUD,0,,42.00
DEPO,10/03/14,T1,BPAY 123,-,,AUD,0,,1000.00
`

const activityFixture = `Symbol,Description,Action,Quantity,Price,Commission,Reg Fees,Date,TransactionID,Order Number,Transaction Type ID,Total Cost
BHPXY,BHP JAN 35 CALL,BUY TO OPEN,10,2.00,10.00,0.00,05/01/2014 10:30:00 AM,111,O1,2,-2010.00
BHPXY,BHP JAN 35 CALL,SELL TO CLOSE,10,2.50,10.00,0.00,01/02/2014 2:15:00 PM,112,O2,2,2490.00
`

func importFixtures(t *testing.T, st store.Store) {
	t.Helper()
	imp := NewImportService(st)
	res, err := imp.Import("ig", strings.NewReader(ledgerFixture), true)
	require.NoError(t, err)
	require.Equal(t, 5, res.Imported)
	res, err = imp.Import("optionsxpress", strings.NewReader(activityFixture), true)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	_, err = classifier.Run(st)
	require.NoError(t, err)
}

func TestImportAssignsContinuousSequence(t *testing.T) {
	st := store.NewMemoryStore()
	importFixtures(t, st)

	entries, err := st.RawEntries()
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for i, e := range entries {
		require.Equal(t, int64(i+1), e.ImportSeq, "sequence continues across batches")
	}
}

func TestImportAbortsOnBadRows(t *testing.T) {
	st := store.NewMemoryStore()
	bad := "TYPE,DATE,REF,DESC,PERIOD,OPEN,CURRENCY,SIZE,CLOSE,AMOUNT\n" +
		"DEAL,garbage,AB,BHP,MAR-14,10.00,AUD,100,11.00,100.00\n"

	imp := NewImportService(st)
	_, err := imp.Import("ig", strings.NewReader(bad), true)
	require.Error(t, err)

	entries, err := st.RawEntries()
	require.NoError(t, err)
	require.Empty(t, entries, "aborted import writes nothing")

	res, err := imp.Import("ig", strings.NewReader(bad), false)
	require.NoError(t, err)
	require.Equal(t, 0, res.Imported)
	require.Len(t, res.Skipped, 1)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	importFixtures(t, st)

	rec := NewReconcileService(st)
	report1, err := rec.Recompute()
	require.NoError(t, err)
	require.Empty(t, report1.Anomalies)

	first, err := st.Positions()
	require.NoError(t, err)

	report2, err := rec.Recompute()
	require.NoError(t, err)
	require.NotEqual(t, report1.RunID, report2.RunID)

	second, err := st.Positions()
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].BrokerRef, second[i].BrokerRef)
		require.True(t, first[i].Brokerage.Equal(second[i].Brokerage))
		require.True(t, first[i].EntryQuantity.Equal(second[i].EntryQuantity))
	}
}

func TestRecomputeRejectsUnorderedLedger(t *testing.T) {
	st := store.NewMemoryStore()
	e1 := models.RawEntry{Type: "DEAL", ImportSeq: 7, Category: models.CategoryTrade}
	e2 := models.RawEntry{Type: "DEAL", ImportSeq: 7, Category: models.CategoryTrade}
	require.NoError(t, st.InsertRawEntry(&e1))
	require.NoError(t, st.InsertRawEntry(&e2))

	_, err := NewReconcileService(st).Recompute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "import sequence")
}

func TestSummarise(t *testing.T) {
	st := store.NewMemoryStore()
	importFixtures(t, st)
	_, err := NewReconcileService(st).Recompute()
	require.NoError(t, err)

	sum, err := NewExportService(st, NewEventService(st)).Summarise(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, sum.TradeCount)
	require.True(t, sum.Profit.Equal(decimal.RequireFromString("500.00")))
	require.True(t, sum.Commissions.Equal(decimal.RequireFromString("-30.00")))
	require.True(t, sum.Dividends.Equal(decimal.RequireFromString("42.00")))
	require.True(t, sum.Deposits.Equal(decimal.RequireFromString("1000.00")))
	// 500 - 30 + 42 + 1000 from the cash ledger only
	require.True(t, sum.FinalBalance.Equal(decimal.RequireFromString("1512.00")), "balance %s", sum.FinalBalance)
}

func TestExportEventsFormatted(t *testing.T) {
	st := store.NewMemoryStore()
	importFixtures(t, st)
	_, err := NewReconcileService(st).Recompute()
	require.NoError(t, err)

	events, _, err := NewEventService(st).Events(nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var buf bytes.Buffer
	exp := NewExportService(st, NewEventService(st))
	require.NoError(t, exp.WriteEvents(&buf, events, true))

	out := buf.String()
	require.Contains(t, out, "01/02/2014", "close date formatted day first")
	require.Contains(t, out, "BHPXY")
}
