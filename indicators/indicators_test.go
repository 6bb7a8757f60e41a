package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI(t *testing.T) {
	t.Parallel()

	out, err := RSI([]float64{1, 2, 3, 2, 3}, 2)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	// Two up moves and no down moves pin the first reading at 100; the
	// pullback then balances the averages to 50, the recovery to 75.
	assert.Equal(t, 100.0, out[2])
	assert.InDelta(t, 50.0, out[3], 1e-9)
	assert.InDelta(t, 75.0, out[4], 1e-9)
}

func TestRSIMonotonicRise(t *testing.T) {
	t.Parallel()

	out, err := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	for _, v := range out[3:] {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSIErrors(t *testing.T) {
	t.Parallel()

	_, err := RSI([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
	_, err = RSI([]float64{1, 2, 3}, 3)
	assert.Error(t, err)
}

func TestSkew(t *testing.T) {
	t.Parallel()

	sym, err := Skew([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0, sym, 1e-12)

	right, err := Skew([]float64{1, 1, 4}, 3)
	require.NoError(t, err)
	assert.Greater(t, right, 0.0)

	flat, err := Skew([]float64{2, 2, 2, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat)

	_, err = Skew([]float64{1, 2, 3}, 2)
	assert.Error(t, err)
	_, err = Skew([]float64{1, 2}, 3)
	assert.Error(t, err)
}

func TestKurtosis(t *testing.T) {
	t.Parallel()

	// A uniform ramp has excess kurtosis -1.2 under the sample formula.
	k, err := Kurtosis([]float64{1, 2, 3, 4, 5}, 5)
	require.NoError(t, err)
	assert.InDelta(t, -1.2, k, 1e-9)

	flat, err := Kurtosis([]float64{3, 3, 3, 3}, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat)

	_, err = Kurtosis([]float64{1, 2, 3}, 3)
	assert.Error(t, err, "lookback of 3 or less is rejected")
}

func TestHistoricVolatility(t *testing.T) {
	t.Parallel()

	out, err := HistoricVolatility([]float64{10, 10, 10, 10, 10}, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[1]))
	for _, v := range out[2:] {
		assert.Equal(t, 0.0, v, "a flat series has zero volatility")
	}

	moving, err := HistoricVolatility([]float64{10, 11, 10, 12, 10}, 3)
	require.NoError(t, err)
	assert.Greater(t, moving[4], 0.0)

	_, err = HistoricVolatility([]float64{1, 2}, 1)
	assert.Error(t, err)
}

func TestHighestHigh(t *testing.T) {
	t.Parallel()

	out, err := HighestHigh([]float64{1, 3, 2, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, true}, out)

	_, err = HighestHigh([]float64{1}, 0)
	assert.Error(t, err)
}

func TestTrueRange(t *testing.T) {
	t.Parallel()

	highs := []float64{10, 11, 13}
	lows := []float64{8, 9, 12}
	closes := []float64{9, 10, 12}

	tr, err := TrueRange(highs, lows, closes)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(tr[0]))
	assert.Equal(t, 2.0, tr[1])
	// Gap day: the true low stretches down to yesterday's close of 10.
	assert.Equal(t, 3.0, tr[2])

	_, err = TrueRange(highs, lows, []float64{1})
	assert.Error(t, err)
}

func TestATR(t *testing.T) {
	t.Parallel()

	// Constant 2 point ranges with no gaps: every TR is 2 and both
	// averaging methods settle on 2.
	highs := []float64{10, 11, 11, 11, 11, 11}
	lows := []float64{8, 9, 9, 9, 9, 9}
	closes := []float64{9, 10, 10, 10, 10, 10}

	for _, method := range []ATRMethod{Simple, Wilders} {
		out, err := ATR(highs, lows, closes, 3, method)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out[2]))
		assert.InDelta(t, 2.0, out[3], 1e-9)
		assert.InDelta(t, 2.0, out[5], 1e-9)
	}

	_, err := ATR(highs, lows, closes, 0, Simple)
	assert.Error(t, err)
	_, err = ATR(highs[:3], lows[:3], closes[:3], 3, Simple)
	assert.Error(t, err)
}

func TestADXTrendingMarket(t *testing.T) {
	t.Parallel()

	// A steady one-way climb is pure +DM: the index pins near 100.
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 11 + float64(i)
		lows[i] = 9 + float64(i)
		closes[i] = 10 + float64(i)
	}

	out, err := ADX(highs, lows, closes, 5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[4]))
	assert.InDelta(t, 100.0, out[n-1], 1e-6)

	_, err = ADX(highs[:10], lows[:10], closes[:10], 5)
	assert.Error(t, err)
}
