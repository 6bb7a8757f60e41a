package ledger

import "time"

// Snapshot is a copy of the ledger's readout surface, safe to hold after the
// run continues or the ledger is discarded. In optimising mode Lots only
// carries the lots that survived the purge; Trades and Wins are always
// complete.
type Snapshot struct {
	Cash          float64
	ValueInvested float64
	Lots          []Lot
	OpenSymbols   []string
	Positions     map[time.Time]map[string]int
	WealthTrack   []float64
	DateTrack     []time.Time
	Trades        int
	Wins          int
}

// Snapshot copies the current readout state.
func (l *Ledger) Snapshot() Snapshot {
	positions := make(map[time.Time]map[string]int, len(l.positions))
	for d, day := range l.positions {
		cp := make(map[string]int, len(day))
		for s, n := range day {
			cp[s] = n
		}
		positions[d] = cp
	}
	return Snapshot{
		Cash:          l.cash,
		ValueInvested: l.valueInvested,
		Lots:          append([]Lot(nil), l.lots...),
		OpenSymbols:   l.OpenSymbols(),
		Positions:     positions,
		WealthTrack:   append([]float64(nil), l.wealthTrack...),
		DateTrack:     append([]time.Time(nil), l.dateTrack...),
		Trades:        l.trades,
		Wins:          l.wins,
	}
}
