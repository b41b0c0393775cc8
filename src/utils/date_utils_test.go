package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLedgerDate(t *testing.T) {
	d, err := ParseLedgerDate("28/11/08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2008, 11, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseLedgerDate("2008-11-28")
	assert.Error(t, err)
}

func TestParseActivityDate(t *testing.T) {
	d, err := ParseActivityDate("05/01/2014 10:30:00 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2014, 1, 5, 10, 30, 0, 0, time.UTC), d)

	d, err = ParseActivityDate("01/02/2014 2:15:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2014, 2, 1, 14, 15, 0, 0, time.UTC), d)
}

func TestFinancialYearAU(t *testing.T) {
	start, end := FinancialYearAU(2014)
	assert.Equal(t, time.Date(2013, 7, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2014, 6, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestDayOf(t *testing.T) {
	d := DayOf(time.Date(2014, 2, 1, 14, 15, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, d, DayOf(d))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2014, 3, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2014, 3, 1, 23, 59, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, b.Add(time.Minute)))
}
