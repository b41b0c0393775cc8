package optionsxpress

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/models"
)

const activityHeader = "Symbol,Description,Action,Quantity,Price,Commission,Reg Fees,Date,TransactionID,Order Number,Transaction Type ID,Total Cost\n"

func TestParseActivityRows(t *testing.T) {
	input := activityHeader +
		"BHPXY,BHP JAN 35 CALL,BUY TO OPEN,10,2.00,10.00,1.50,05/01/2014 10:30:00 AM,111,O1,2,-2011.50\n" +
		"BHPXY,BHP JAN 35 CALL,SELL TO CLOSE,10,2.50,10.00,1.50,01/02/2014 2:15:00 PM,112,O2,2,2488.50\n"

	entries, bad, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Len(t, entries, 2)

	open := entries[0]
	require.Equal(t, models.ActionBuyToOpen.String(), open.Type)
	require.Equal(t, "BHPXY", open.Symbol)
	require.Equal(t, "111", open.BrokerRef)
	require.Equal(t, time.Date(2014, 1, 5, 10, 30, 0, 0, time.UTC), open.RefDate)
	require.True(t, open.Size.Equal(decimal.RequireFromString("10")))
	require.True(t, open.Brokerage.Equal(decimal.RequireFromString("10.00")))
	require.True(t, open.Fees.Equal(decimal.RequireFromString("1.50")))
	require.True(t, open.Amount.Equal(decimal.RequireFromString("-2011.50")))

	require.Equal(t, models.ActionSellToClose.String(), entries[1].Type)
}

func TestShareDealingActionsRejected(t *testing.T) {
	input := activityHeader +
		"BHP,BHP BILLITON,BUY,100,35.00,10.00,0,05/01/2014 10:30:00 AM,111,O1,1,-3510.00\n" +
		"BHP,BHP BILLITON,SELL,100,36.00,10.00,0,06/01/2014 10:30:00 AM,112,O2,1,3590.00\n"

	entries, bad, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Len(t, bad, 2)
	require.Contains(t, bad[0].Reason, "BUY")
}

func TestTotalCostMustReconcile(t *testing.T) {
	// total cost says -2000.00 but 10 x 100 x 2.00 + 10.00 + 1.50 = 2011.50
	input := activityHeader +
		"BHPXY,BHP JAN 35 CALL,BUY TO OPEN,10,2.00,10.00,1.50,05/01/2014 10:30:00 AM,111,O1,2,-2000.00\n"

	entries, bad, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Len(t, bad, 1)
	require.Contains(t, bad[0].Reason, "reconcile")
}

func TestSellSideCostsAreSubtracted(t *testing.T) {
	// 10 x 100 x 2.50 - 10.00 - 1.50 = 2488.50
	input := activityHeader +
		"BHPXY,BHP JAN 35 CALL,SELL TO CLOSE,10,2.50,10.00,1.50,01/02/2014 2:15:00 PM,112,O2,2,2488.50\n"

	entries, bad, err := NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Len(t, entries, 1)
}
