package order

import (
	"go.uber.org/zap"

	"github.com/quantworks/backtester/ledger"
)

// StopTiming selects which of the day's prices the stop is checked against.
type StopTiming int

const (
	// Intraday triggers on the worst excursion implied by today's low
	// (long) or high (short), and resolves an execution price.
	Intraday StopTiming = iota
	// EndOfDay compares the position's value at today's close.
	EndOfDay
	// StartOfDay compares the position's value at today's open.
	StartOfDay
)

// StopCheck configures a stop-loss evaluation. With Lot nil the check runs
// against the aggregate of the symbol's open lots, otherwise against the one
// addressed lot.
type StopCheck struct {
	// Fraction is the allowed adverse move on entry value, usually 0–1.
	Fraction float64
	Timing   StopTiming
	Lot      *ledger.Handle
	// CloseIfHit exits the position when the stop triggers: a target-0
	// order at the resolved execution price for the aggregate case, a
	// direct full close for the single-lot case.
	CloseIfHit bool
}

// CheckStopLoss reports whether the stop level was breached today. It
// returns the hit result regardless of whether the close action ran.
//
// Entry value, stop value, and marked value are all signed with the
// position: a short entry value is negative, its stop value is
// (1 + fraction) × entry value and therefore further below zero, and the
// breach comparison is value < stop value on both sides.
func (o *Order) CheckStopLoss(sc StopCheck) bool {
	c, err := o.book.Candle(o.symbol)
	if err != nil {
		o.log.Error("order: no candle for stop-loss check",
			zap.String("symbol", o.symbol),
			zap.Time("date", o.book.Date()),
			zap.Error(err))
		return false
	}

	var (
		entryValue float64
		shares     int
		dir        ledger.Direction
	)
	if sc.Lot == nil {
		if len(o.openLots) == 0 {
			return false
		}
		for i, h := range o.openLots {
			lot, ok := o.led.Lot(h)
			if !ok {
				continue
			}
			if i == 0 {
				dir = lot.Direction
			}
			entryValue += lot.OpenValue
		}
		shares = o.currentShares
	} else {
		lot, ok := o.led.Lot(*sc.Lot)
		if !ok || !lot.IsOpen() {
			o.log.Error("order: stop-loss check on unknown or closed lot",
				zap.Int("lot", int(*sc.Lot)),
				zap.String("symbol", o.symbol),
				zap.Time("date", o.book.Date()))
			return false
		}
		entryValue = lot.OpenValue
		shares = lot.Amount
		dir = lot.Direction
	}
	if shares == 0 {
		return false
	}

	stopValue := (1 - sc.Fraction) * entryValue
	if dir == ledger.Short {
		stopValue = (1 + sc.Fraction) * entryValue
	}

	var value float64
	switch sc.Timing {
	case EndOfDay:
		value = float64(shares) * c.Close
	case StartOfDay:
		value = float64(shares) * c.Open
	default:
		if dir == ledger.Long {
			value = float64(shares) * c.Low
		} else {
			value = float64(shares) * c.High
		}
	}
	if value >= stopValue {
		return false
	}

	exitPrice := o.price
	if sc.Timing == Intraday {
		stopPrice := stopValue / float64(shares)
		switch {
		case dir == ledger.Long && c.Open <= stopPrice:
			exitPrice = c.Open // gapped past the stop at the open
		case dir == ledger.Short && c.Open >= stopPrice:
			exitPrice = c.Open
		case c.Low < stopPrice && stopPrice < c.High:
			exitPrice = stopPrice
		default:
			// Geometrically impossible with consistent OHLC data:
			// the excursion breached the stop but the stop price is
			// outside both the gap and the day's range.
			o.log.Error("order: stop price outside today's range, close abandoned",
				zap.String("symbol", o.symbol),
				zap.Time("date", o.book.Date()),
				zap.Float64("stop_price", stopPrice),
				zap.Float64("open", c.Open),
				zap.Float64("low", c.Low),
				zap.Float64("high", c.High))
			return true
		}
	}

	if sc.CloseIfHit {
		if sc.Lot == nil {
			if sc.Timing == Intraday {
				o.TargetAmount(0, Limit(exitPrice))
			} else {
				o.TargetAmount(0, nil)
			}
		} else {
			o.led.CloseLotFully(*sc.Lot, o.symbol, exitPrice, o.book.Date(), o.closeReason)
		}
	}
	return true
}
