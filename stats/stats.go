// Package stats computes performance summaries from a run's daily wealth
// series: yearly and monthly return tables and drawdown figures.
package stats

import (
	"math"
	"time"
)

// YearlyReturn is one calendar year's profit as a percent of starting cash.
type YearlyReturn struct {
	Year    int
	Percent float64
}

// YearlyReturns walks the wealth series year by year, taking each year's
// last mark and expressing the change over the prior year end (the starting
// amount for the first year) as a percent of starting cash.
func YearlyReturns(dates []time.Time, wealth []float64, startingAmount float64) []YearlyReturn {
	if len(dates) == 0 || len(dates) != len(wealth) {
		return nil
	}

	var out []YearlyReturn
	prev := startingAmount
	year := dates[0].Year()
	last := wealth[0]
	flush := func() {
		out = append(out, YearlyReturn{
			Year:    year,
			Percent: 100 * (last - prev) / startingAmount,
		})
		prev = last
	}
	for i := 1; i < len(dates); i++ {
		if y := dates[i].Year(); y != year {
			flush()
			year = y
		}
		last = wealth[i]
	}
	flush()
	return out
}

// StdDev returns the sample standard deviation of the yearly returns.
func StdDev(returns []YearlyReturn) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := 0.0
	for _, r := range returns {
		m += r.Percent
	}
	m /= float64(len(returns))

	ss := 0.0
	for _, r := range returns {
		ss += (r.Percent - m) * (r.Percent - m)
	}
	return math.Sqrt(ss / float64(len(returns)-1))
}

// Drawdown summarises the deepest peak-to-recovery excursion of the series.
type Drawdown struct {
	Max        float64 // most negative wealth-below-peak, ≤ 0
	MaxPercent float64 // Max as percent of starting cash
	Length     int     // trading days from the peak to recovery (or series end)
	Trough     time.Time
}

// DrawdownStats scans the wealth series for its maximum drawdown.
func DrawdownStats(dates []time.Time, wealth []float64, startingAmount float64) Drawdown {
	var dd Drawdown
	if len(wealth) == 0 || len(dates) != len(wealth) {
		return dd
	}

	peak := wealth[0]
	peakIdx := 0
	troughIdx := 0
	maxStart, maxEnd := 0, 0
	for i, w := range wealth {
		if w >= peak {
			peak = w
			peakIdx = i
		}
		if d := w - peak; d < dd.Max {
			dd.Max = d
			troughIdx = i
			maxStart = peakIdx
			maxEnd = len(wealth) - 1
			// recovery: first index after the trough back at the peak
			for j := i + 1; j < len(wealth); j++ {
				if wealth[j] >= peak {
					maxEnd = j
					break
				}
			}
		}
	}

	dd.MaxPercent = 100 * dd.Max / startingAmount
	dd.Trough = dates[troughIdx]
	if dd.Max < 0 {
		dd.Length = maxEnd - maxStart + 1
	}
	return dd
}

// MonthlyRow is one calendar year of monthly profit percentages plus the
// year total. Months with no data stay NaN.
type MonthlyRow struct {
	Year   int
	Months [12]float64
	Total  float64
}

// MonthlyReturns breaks daily profits into a year × month percent table.
// Without compounding each cell is the month's profit as a percent of
// starting cash; with compounding it is measured against the wealth at the
// month's start.
func MonthlyReturns(dates []time.Time, wealth []float64, startingAmount float64, compounding bool) []MonthlyRow {
	if len(dates) == 0 || len(dates) != len(wealth) {
		return nil
	}

	var rows []MonthlyRow
	rowFor := func(year int) *MonthlyRow {
		if n := len(rows); n > 0 && rows[n-1].Year == year {
			return &rows[n-1]
		}
		row := MonthlyRow{Year: year}
		for i := range row.Months {
			row.Months[i] = math.NaN()
		}
		rows = append(rows, row)
		return &rows[len(rows)-1]
	}

	prevWealth := startingAmount
	monthStart := startingAmount
	curYear, curMonth := dates[0].Year(), dates[0].Month()
	for i, d := range dates {
		if d.Year() != curYear || d.Month() != curMonth {
			curYear, curMonth = d.Year(), d.Month()
			monthStart = prevWealth
		}
		row := rowFor(d.Year())
		profit := wealth[i] - prevWealth
		base := startingAmount
		if compounding {
			base = monthStart
		}
		m := int(d.Month()) - 1
		if math.IsNaN(row.Months[m]) {
			row.Months[m] = 0
		}
		row.Months[m] += 100 * profit / base
		row.Total += 100 * profit / base
		prevWealth = wealth[i]
	}
	return rows
}
