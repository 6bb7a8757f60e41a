package indicators

import (
	"fmt"
	"math"
)

// TrueHigh is the greater of today's high and yesterday's close.
func TrueHigh(high, prevClose float64) float64 {
	return math.Max(high, prevClose)
}

// TrueLow is the lesser of today's low and yesterday's close.
func TrueLow(low, prevClose float64) float64 {
	return math.Min(low, prevClose)
}

// TrueRange returns the daily true-range series: true high minus true low.
// The first value is NaN since it has no prior close.
func TrueRange(highs, lows, closes []float64) ([]float64, error) {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil, fmt.Errorf("true range: series lengths differ: %d/%d/%d",
			len(highs), len(lows), len(closes))
	}
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		out[i] = TrueHigh(highs[i], closes[i-1]) - TrueLow(lows[i], closes[i-1])
	}
	return out, nil
}

// ATRMethod selects the averaging used by ATR.
type ATRMethod int

const (
	Simple ATRMethod = iota
	Wilders
)

// ATR returns the average true range over the given lookback. The first
// length values are NaN.
func ATR(highs, lows, closes []float64, length int, method ATRMethod) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("atr: lookback must be positive, got %d", length)
	}
	tr, err := TrueRange(highs, lows, closes)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	if len(tr) <= length {
		return nil, fmt.Errorf("atr: need more than %d bars, got %d", length, len(tr))
	}

	out := nanSlice(len(tr))
	sum := 0.0
	for i := 1; i <= length; i++ {
		sum += tr[i]
	}
	avg := sum / float64(length)
	out[length] = avg

	for i := length + 1; i < len(tr); i++ {
		switch method {
		case Wilders:
			avg += (tr[i] - avg) / float64(length)
		default:
			sum += tr[i] - tr[i-length]
			avg = sum / float64(length)
		}
		out[i] = avg
	}
	return out, nil
}

// ADX returns the average directional index series with Wilder smoothing of
// the directional movements. The first 2×length values warm the smoothers
// up; values before index length are NaN.
func ADX(highs, lows, closes []float64, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("adx: lookback must be positive, got %d", length)
	}
	tr, err := TrueRange(highs, lows, closes)
	if err != nil {
		return nil, fmt.Errorf("adx: %w", err)
	}
	if len(closes) <= 2*length {
		return nil, fmt.Errorf("adx: need more than %d bars, got %d", 2*length, len(closes))
	}

	sf := 1.0 / float64(length)
	out := nanSlice(len(closes))

	var avgPlusDM, avgMinusDM, volty, dmiSum, adx float64
	for i := length; i < len(closes); i++ {
		if i == length {
			var sumPlus, sumMinus, sumTR float64
			for j := i - length + 1; j <= i; j++ {
				plus, minus := directionalMove(highs, lows, j)
				sumPlus += plus
				sumMinus += minus
				sumTR += tr[j]
			}
			avgPlusDM = sumPlus / float64(length)
			avgMinusDM = sumMinus / float64(length)
			volty = sumTR / float64(length)
		} else {
			plus, minus := directionalMove(highs, lows, i)
			avgPlusDM += sf * (plus - avgPlusDM)
			avgMinusDM += sf * (minus - avgMinusDM)
			volty += sf * (tr[i] - volty)
		}

		var dmiPlus, dmiMinus float64
		if volty > 0 {
			dmiPlus = 100 * avgPlusDM / volty
			dmiMinus = 100 * avgMinusDM / volty
		}
		dmi := 0.0
		if d := dmiPlus + dmiMinus; d > 0 {
			dmi = 100 * math.Abs(dmiPlus-dmiMinus) / d
		}

		if i <= 2*length {
			dmiSum += dmi
			adx = dmiSum / float64(i+1-length)
		} else {
			adx += sf * (dmi - adx)
		}
		out[i] = adx
	}
	return out, nil
}

func directionalMove(highs, lows []float64, i int) (plus, minus float64) {
	upper := highs[i] - highs[i-1]
	lower := lows[i-1] - lows[i]
	if upper > lower && upper > 0 {
		plus = upper
	} else if lower > upper && lower > 0 {
		minus = lower
	}
	return plus, minus
}
