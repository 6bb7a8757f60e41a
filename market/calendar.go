package market

import (
	"fmt"
	"time"
)

// Rebalance is how often the scheduled trade hooks fire.
type Rebalance int

const (
	Daily Rebalance = iota
	Weekly
	MonthEnd
	MonthStart
)

func (r Rebalance) String() string {
	switch r {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case MonthEnd:
		return "month-end"
	case MonthStart:
		return "month-start"
	}
	return fmt.Sprintf("Rebalance(%d)", int(r))
}

// RebalanceFromString parses a rebalance frequency. An unknown value is a
// configuration error and should abort the run before it starts.
func RebalanceFromString(s string) (Rebalance, error) {
	switch s {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "month-end":
		return MonthEnd, nil
	case "month-start":
		return MonthStart, nil
	}
	return 0, fmt.Errorf(`rebalance must be "daily", "weekly", "month-end", or "month-start", got %q`, s)
}

// Schedule maps an ordered trading-day axis to the subset of days the
// rebalance hooks fire on. Target days that are not trading days snap back
// to the last trading day before them; duplicates collapse.
func Schedule(dates []time.Time, r Rebalance) []time.Time {
	if r == Daily {
		return append([]time.Time(nil), dates...)
	}

	valid := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		valid[d] = true
	}
	first := dates[0]

	var out []time.Time
	seen := make(map[time.Time]bool)
	for _, d := range dates {
		target := rebalanceTarget(d, r)
		for target.After(first) && !valid[target] {
			target = target.AddDate(0, 0, -1)
		}
		if !valid[target] || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

// rebalanceTarget returns the nominal date an observation maps to: the
// containing week's Friday, the month's last weekday, or the month's first
// weekday.
func rebalanceTarget(d time.Time, r Rebalance) time.Time {
	switch r {
	case Weekly:
		offset := int(time.Friday) - int(d.Weekday())
		if offset < 0 {
			offset -= 7 // past Friday, map back to it
		}
		return d.AddDate(0, 0, offset)
	case MonthEnd:
		t := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 1, -1)
		for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			t = t.AddDate(0, 0, -1)
		}
		return t
	case MonthStart:
		t := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			t = t.AddDate(0, 0, 1)
		}
		return t
	}
	return d
}
