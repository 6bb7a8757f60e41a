package ledger

import "time"

// Direction of a trade lot.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// CloseInfo holds the terminal fields of a closed lot. A lot is open exactly
// while its Close pointer is nil; once set, the lot is immutable.
type CloseInfo struct {
	Date   time.Time
	Price  float64
	Value  float64
	Reason string
	Profit float64
}

// Lot is one row of the trade log: a discrete position opened by a single
// order placement or split off by a partial close. Amount is signed shares;
// OpenValue = Amount × OpenPrice carries the same sign.
type Lot struct {
	ID         Handle
	Direction  Direction
	Symbol     string
	OpenDate   time.Time
	OpenPrice  float64
	Amount     int
	OpenValue  float64
	OpenReason string

	Close *CloseInfo
}

// IsOpen reports whether the lot has not been closed.
func (l *Lot) IsOpen() bool { return l.Close == nil }

// Handle is a stable lot identifier, assigned in creation order. Handles
// survive the optimising-mode purge of closed lots; a purged handle simply
// stops resolving.
type Handle int

// NoHandle is returned when an open attempt places no lot.
const NoHandle Handle = -1
