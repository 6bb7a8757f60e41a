package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestYearlyReturns(t *testing.T) {
	t.Parallel()

	dates := []time.Time{
		d(2020, time.June, 1), d(2020, time.December, 31),
		d(2021, time.March, 1), d(2021, time.December, 30),
	}
	wealth := []float64{101000, 102000, 103000, 105000}

	got := YearlyReturns(dates, wealth, 100000)
	require.Len(t, got, 2)
	assert.Equal(t, YearlyReturn{Year: 2020, Percent: 2}, got[0])
	assert.Equal(t, YearlyReturn{Year: 2021, Percent: 3}, got[1])
}

func TestYearlyReturnsEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, YearlyReturns(nil, nil, 100000))
	assert.Nil(t, YearlyReturns([]time.Time{d(2020, time.January, 1)}, nil, 100000))
}

func TestStdDev(t *testing.T) {
	t.Parallel()

	rets := []YearlyReturn{{2020, 2}, {2021, 3}}
	assert.InDelta(t, math.Sqrt(0.5), StdDev(rets), 1e-12)

	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev(rets[:1]))
}

func TestDrawdownStats(t *testing.T) {
	t.Parallel()

	t.Run("recovered drawdown", func(t *testing.T) {
		t.Parallel()
		dates := make([]time.Time, 6)
		for i := range dates {
			dates[i] = d(2020, time.January, 6+i)
		}
		wealth := []float64{100, 110, 100, 90, 110, 120}

		dd := DrawdownStats(dates, wealth, 100)
		assert.Equal(t, -20.0, dd.Max)
		assert.Equal(t, -20.0, dd.MaxPercent)
		assert.Equal(t, dates[3], dd.Trough)
		assert.Equal(t, 4, dd.Length, "peak through recovery inclusive")
	})

	t.Run("never recovered", func(t *testing.T) {
		t.Parallel()
		dates := []time.Time{d(2020, time.January, 6), d(2020, time.January, 7), d(2020, time.January, 8)}
		wealth := []float64{100, 90, 95}

		dd := DrawdownStats(dates, wealth, 100)
		assert.Equal(t, -10.0, dd.Max)
		assert.Equal(t, 3, dd.Length, "runs to the end of the series")
	})

	t.Run("monotone rise has no drawdown", func(t *testing.T) {
		t.Parallel()
		dates := []time.Time{d(2020, time.January, 6), d(2020, time.January, 7)}
		wealth := []float64{100, 105}

		dd := DrawdownStats(dates, wealth, 100)
		assert.Equal(t, 0.0, dd.Max)
		assert.Equal(t, 0, dd.Length)
	})
}

func TestMonthlyReturns(t *testing.T) {
	t.Parallel()

	dates := []time.Time{
		d(2020, time.January, 30), d(2020, time.January, 31),
		d(2020, time.February, 3), d(2020, time.February, 4),
	}
	wealth := []float64{101000, 102000, 103000, 101000}

	t.Run("against starting cash", func(t *testing.T) {
		t.Parallel()
		rows := MonthlyReturns(dates, wealth, 100000, false)
		require.Len(t, rows, 1)
		row := rows[0]

		assert.Equal(t, 2020, row.Year)
		assert.InDelta(t, 2, row.Months[0], 1e-9)
		assert.InDelta(t, -1, row.Months[1], 1e-9)
		assert.True(t, math.IsNaN(row.Months[2]), "months without data stay NaN")
		assert.InDelta(t, 1, row.Total, 1e-9)
	})

	t.Run("compounding against month start", func(t *testing.T) {
		t.Parallel()
		rows := MonthlyReturns(dates, wealth, 100000, true)
		require.Len(t, rows, 1)
		row := rows[0]

		assert.InDelta(t, 2, row.Months[0], 1e-9)
		assert.InDelta(t, 100*(-1000.0/102000), row.Months[1], 1e-9)
	})
}
