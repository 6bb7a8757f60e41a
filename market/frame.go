package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is an ordered daily table for a single price field: one row per
// trading day, one column per symbol. Missing observations are NaN.
type Frame struct {
	dates   []time.Time
	index   map[time.Time]int
	columns map[string][]float64
	symbols []string
}

// NewFrame creates an empty frame over the given ordered dates and symbols.
// All cells start as NaN.
func NewFrame(dates []time.Time, symbols []string) *Frame {
	f := &Frame{
		dates:   append([]time.Time(nil), dates...),
		index:   make(map[time.Time]int, len(dates)),
		columns: make(map[string][]float64, len(symbols)),
		symbols: append([]string(nil), symbols...),
	}
	for i, d := range f.dates {
		f.index[d] = i
	}
	for _, s := range symbols {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		f.columns[s] = col
	}
	sort.Strings(f.symbols)
	return f
}

// Dates returns the frame's ordered date axis. Callers must not mutate it.
func (f *Frame) Dates() []time.Time { return f.dates }

// Symbols returns the frame's symbols in sorted order.
func (f *Frame) Symbols() []string { return f.symbols }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Set writes one cell. Unknown dates or symbols are ignored.
func (f *Frame) Set(date time.Time, symbol string, v float64) {
	i, ok := f.index[date]
	if !ok {
		return
	}
	col, ok := f.columns[symbol]
	if !ok {
		return
	}
	col[i] = v
}

// At reads one cell. The second return is false when the date or symbol is
// unknown, or the cell is NaN.
func (f *Frame) At(date time.Time, symbol string) (float64, bool) {
	i, ok := f.index[date]
	if !ok {
		return 0, false
	}
	col, ok := f.columns[symbol]
	if !ok {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Col returns the full series for a symbol, NaN-padded. Callers must not
// mutate the returned slice.
func (f *Frame) Col(symbol string) ([]float64, error) {
	col, ok := f.columns[symbol]
	if !ok {
		return nil, fmt.Errorf("market: unknown symbol %q", symbol)
	}
	return col, nil
}

// ColThrough returns the series for a symbol from the first row up to and
// including date. Used to hand a lookback window to indicator functions.
func (f *Frame) ColThrough(symbol string, date time.Time) ([]float64, error) {
	col, err := f.Col(symbol)
	if err != nil {
		return nil, err
	}
	i, ok := f.index[date]
	if !ok {
		return nil, fmt.Errorf("market: date %s not in frame", date.Format("2006-01-02"))
	}
	return col[:i+1], nil
}

// between returns a copy of the frame holding rows lo through hi inclusive.
func (f *Frame) between(lo, hi int) *Frame {
	out := NewFrame(f.dates[lo:hi+1], f.symbols)
	for s, col := range f.columns {
		copy(out.columns[s], col[lo:hi+1])
	}
	return out
}

// Loc returns the row index of a date.
func (f *Frame) Loc(date time.Time) (int, bool) {
	i, ok := f.index[date]
	return i, ok
}

// ForwardFill replaces interior NaN runs with the last seen value, column by
// column. Leading NaNs are left alone so symbols enter the universe only once
// they have data.
func (f *Frame) ForwardFill() {
	for _, col := range f.columns {
		last := math.NaN()
		for i, v := range col {
			if math.IsNaN(v) {
				if !math.IsNaN(last) {
					col[i] = last
				}
				continue
			}
			last = v
		}
	}
}

// Dataset bundles the per-field frames a backtest needs. Closes is always
// required; the others may be nil when the data source did not carry them.
type Dataset struct {
	Opens   *Frame
	Highs   *Frame
	Lows    *Frame
	Closes  *Frame
	Volumes *Frame
}

// Dates returns the dataset's date axis, taken from the closes frame.
func (d *Dataset) Dates() []time.Time {
	if d.Closes == nil {
		return nil
	}
	return d.Closes.Dates()
}

// Symbols returns the dataset's symbols, taken from the closes frame.
func (d *Dataset) Symbols() []string {
	if d.Closes == nil {
		return nil
	}
	return d.Closes.Symbols()
}

// Between trims the dataset to trading days within [start, end]. A zero
// bound is open on that side. Trimming to an empty range is an error.
func (d *Dataset) Between(start, end time.Time) (*Dataset, error) {
	dates := d.Dates()
	lo, hi := 0, len(dates)-1
	for lo <= hi && !start.IsZero() && dates[lo].Before(start) {
		lo++
	}
	for hi >= lo && !end.IsZero() && dates[hi].After(end) {
		hi--
	}
	if lo > hi {
		return nil, fmt.Errorf("market: no trading days between %s and %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	trim := func(f *Frame) *Frame {
		if f == nil {
			return nil
		}
		return f.between(lo, hi)
	}
	return &Dataset{
		Opens:   trim(d.Opens),
		Highs:   trim(d.Highs),
		Lows:    trim(d.Lows),
		Closes:  trim(d.Closes),
		Volumes: trim(d.Volumes),
	}, nil
}

// Validate reports whether the dataset can support a full simulation.
// The intraday paths (limit orders, intraday stops) need open/high/low.
func (d *Dataset) Validate() error {
	if d.Closes == nil || d.Closes.Len() == 0 {
		return fmt.Errorf("market: dataset has no close prices")
	}
	for name, f := range map[string]*Frame{"opens": d.Opens, "highs": d.Highs, "lows": d.Lows} {
		if f == nil {
			return fmt.Errorf("market: dataset is missing required field %s", name)
		}
	}
	return nil
}
