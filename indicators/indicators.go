// Package indicators provides technical analysis transforms over daily price
// series. All functions are pure: they take price slices and return value
// slices NaN-padded over the warmup period, never touching simulation state.
package indicators

import (
	"fmt"
	"math"
)

// RSI calculates the Relative Strength Index over the series using Wilder's
// smoothing. The first n values are NaN.
func RSI(prices []float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rsi: lookback must be positive, got %d", n)
	}
	if len(prices) <= n {
		return nil, fmt.Errorf("rsi: need more than %d prices, got %d", n, len(prices))
	}

	out := nanSlice(len(prices))

	var avgUp, avgDown float64
	for i := 1; i <= n; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			avgUp += d
		} else {
			avgDown += -d
		}
	}
	avgUp /= float64(n)
	avgDown /= float64(n)
	out[n] = rsiValue(avgUp, avgDown)

	for i := n + 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		up, down := 0.0, 0.0
		if d > 0 {
			up = d
		} else {
			down = -d
		}
		avgUp += (up - avgUp) / float64(n)
		avgDown += (down - avgDown) / float64(n)
		out[i] = rsiValue(avgUp, avgDown)
	}
	return out, nil
}

func rsiValue(avgUp, avgDown float64) float64 {
	if avgDown == 0 {
		return 100
	}
	rs := avgUp / avgDown
	return 100 - (100 / (1 + rs))
}

// Skew returns the sample skewness of the last n values of the series, or 0
// when the window has no spread.
func Skew(prices []float64, n int) (float64, error) {
	if n < 3 {
		return 0, fmt.Errorf("skew: lookback must be at least 3, got %d", n)
	}
	w, err := window(prices, n)
	if err != nil {
		return 0, fmt.Errorf("skew: %w", err)
	}

	m, sdev := meanStd(w)
	if sdev <= 0 {
		return 0, nil
	}
	s := 0.0
	for _, v := range w {
		s += math.Pow((v-m)/sdev, 3)
	}
	fn := float64(n)
	return fn / ((fn - 1) * (fn - 2)) * s, nil
}

// Kurtosis returns the excess kurtosis of the last n values of the series.
// A lookback of 3 or less is a configuration error; a spreadless window
// returns 0.
func Kurtosis(prices []float64, n int) (float64, error) {
	if n <= 3 {
		return 0, fmt.Errorf("kurtosis: lookback must be greater than 3, got %d", n)
	}
	w, err := window(prices, n)
	if err != nil {
		return 0, fmt.Errorf("kurtosis: %w", err)
	}

	m, sdev := meanStd(w)
	if sdev <= 0 {
		return 0, nil
	}
	s := 0.0
	for _, v := range w {
		s += math.Pow((v-m)/sdev, 4)
	}
	fn := float64(n)
	p1 := fn * (fn + 1) / ((fn - 1) * (fn - 2) * (fn - 3))
	p3 := 3 * (fn - 1) * (fn - 1) / ((fn - 2) * (fn - 3))
	return p1*s - p3, nil
}

// HistoricVolatility returns the annualised volatility series: the rolling
// standard deviation of daily log returns over n days, scaled by sqrt(252)
// and expressed in percent. The first n values are NaN.
func HistoricVolatility(prices []float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("historic volatility: lookback must be at least 2, got %d", n)
	}
	if len(prices) <= n {
		return nil, fmt.Errorf("historic volatility: need more than %d prices, got %d", n, len(prices))
	}

	rets := nanSlice(len(prices))
	for i := 1; i < len(prices); i++ {
		rets[i] = math.Log(prices[i] / prices[i-1])
	}

	out := nanSlice(len(prices))
	for i := n; i < len(prices); i++ {
		_, sdev := meanStd(rets[i-n+1 : i+1])
		out[i] = sdev * math.Sqrt(252) * 100
	}
	return out, nil
}

// HighestHigh flags, for each day, whether its value is the highest of the n
// values ending on it.
func HighestHigh(prices []float64, n int) ([]bool, error) {
	if n <= 0 {
		return nil, fmt.Errorf("highest high: lookback must be positive, got %d", n)
	}
	out := make([]bool, len(prices))
	for i := n - 1; i < len(prices); i++ {
		hh := true
		for j := i - n + 1; j < i; j++ {
			if prices[j] >= prices[i] {
				hh = false
				break
			}
		}
		out[i] = hh
	}
	return out, nil
}

func window(prices []float64, n int) ([]float64, error) {
	if len(prices) < n {
		return nil, fmt.Errorf("need at least %d prices, got %d", n, len(prices))
	}
	return prices[len(prices)-n:], nil
}

// meanStd returns the mean and the sample standard deviation.
func meanStd(vals []float64) (float64, float64) {
	m := 0.0
	for _, v := range vals {
		m += v
	}
	m /= float64(len(vals))

	if len(vals) < 2 {
		return m, 0
	}
	ss := 0.0
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return m, math.Sqrt(ss / float64(len(vals)-1))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
