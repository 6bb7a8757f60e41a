// Package order turns trading intents (share amounts, cash values, percent
// of capital, and position targets) into share-level lots on the ledger,
// with a one-day limit-price gate and a stop-loss evaluator on top.
package order

import (
	"math"

	"go.uber.org/zap"

	"github.com/quantworks/backtester/ledger"
	"github.com/quantworks/backtester/market"
)

// Status is the tri-state outcome of an order attempt. Rejections are
// business outcomes for the strategy to branch on, never errors.
type Status int

const (
	// Placed means the ledger was mutated.
	Placed Status = iota
	// Rejected means a policy rule refused the order: below minimum size,
	// zero value, or a no-op target. The ledger is unchanged.
	Rejected
	// LimitNotHit means the limit price was not touched today. The caller
	// may retry on a later day with a fresh Order.
	LimitNotHit
)

func (s Status) String() string {
	switch s {
	case Placed:
		return "placed"
	case Rejected:
		return "rejected"
	case LimitNotHit:
		return "limit-not-hit"
	}
	return "unknown"
}

// minAmount is the fixed noise floor: any order resolving to 10 shares or
// fewer in magnitude is dropped. Distinct from the configurable MinToEnter,
// which only gates target-amount increases.
const minAmount = 10

// DefaultMinToEnter is the default minimum share delta for a target-amount
// increase.
const DefaultMinToEnter = 10

// Order scopes one intent to one symbol on one day. It snapshots the
// symbol's open lots, net shares, current price, and basis capital at
// construction; the limit latch lives on the instance and never carries over
// to the next day.
type Order struct {
	led    *ledger.Ledger
	book   *market.Book
	symbol string

	openLots      []ledger.Handle
	currentShares int
	price         float64
	capital       float64

	openReason   string
	closeReason  string
	ableToExceed bool
	minToEnter   int
	limitPassed  bool
	log          *zap.Logger
}

// Option configures an Order at construction.
type Option func(*Order)

// OpenReason tags lots opened by this order.
func OpenReason(reason string) Option {
	return func(o *Order) { o.openReason = reason }
}

// CloseReason tags lots closed by this order.
func CloseReason(reason string) Option {
	return func(o *Order) { o.closeReason = reason }
}

// Compound switches the basis capital for percent sizing from the fixed
// starting amount to the latest tracked wealth.
func Compound() Option {
	return func(o *Order) { o.capital = o.led.LatestWealth() }
}

// NoExceed clamps orders so total invested value never passes the starting
// amount.
func NoExceed() Option {
	return func(o *Order) { o.ableToExceed = false }
}

// MinToEnter overrides the minimum share delta for target-amount increases.
func MinToEnter(n int) Option {
	return func(o *Order) { o.minToEnter = n }
}

// WithLogger sets the diagnostic logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(o *Order) { o.log = log }
}

// New builds an order scoped to the symbol and the book's current day and
// phase. It fails only when the symbol has no current price.
func New(led *ledger.Ledger, book *market.Book, symbol string, opts ...Option) (*Order, error) {
	price, err := book.Price(symbol)
	if err != nil {
		return nil, err
	}
	o := &Order{
		led:           led,
		book:          book,
		symbol:        symbol,
		openLots:      led.OpenLots(symbol),
		currentShares: led.NetShares(symbol),
		price:         price,
		capital:       led.StartingAmount(),
		ableToExceed:  true,
		minToEnter:    DefaultMinToEnter,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Limit wraps a limit price for the order operations. A nil limit means
// fill at the current price unconditionally.
func Limit(price float64) *float64 { return &price }

// Amount places an order for a signed number of shares. With NoExceed, the
// share count is clamped toward zero to the remaining headroom under the
// starting amount. Orders resolving to |amount| ≤ 10 are dropped.
func (o *Order) Amount(amount int, limit *float64) Status {
	if st := o.gate(limit, sign(amount)); st != Placed {
		return st
	}
	return o.place(amount)
}

// Value places an order worth the given cash value, floor-divided by price
// for buys and ceil-divided for sells. Zero value is rejected outright.
func (o *Order) Value(value float64, limit *float64) Status {
	if st := o.gate(limit, signF(value)); st != Placed {
		return st
	}
	return o.placeValue(value)
}

// Percent places an order worth percent × basis capital.
func (o *Order) Percent(percent float64, limit *float64) Status {
	if st := o.gate(limit, signF(percent)); st != Placed {
		return st
	}
	return o.placeValue(percent * o.capital)
}

// TargetAmount orders whatever is needed so the symbol's net position equals
// target: a same-side increase places the delta, a same-side decrease walks
// open lots in ledger order closing fully then partially, a sign flip closes
// everything and re-enters, and a target equal to the current position is a
// no-op.
func (o *Order) TargetAmount(target int, limit *float64) Status {
	if st := o.gate(limit, sign(target-o.currentShares)); st != Placed {
		return st
	}
	return o.placeTarget(target)
}

// TargetValue converts a target cash value to a target share count
// (floor toward zero for non-negative targets, ceil for negative) and
// delegates to TargetAmount.
func (o *Order) TargetValue(targetValue float64, limit *float64) Status {
	var target int
	if targetValue >= 0 {
		target = int(math.Floor(targetValue / o.price))
	} else {
		target = int(math.Ceil(targetValue / o.price))
	}
	return o.TargetAmount(target, limit)
}

// TargetPercent targets percent × basis capital.
func (o *Order) TargetPercent(targetPercent float64, limit *float64) Status {
	return o.TargetValue(targetPercent*o.capital, limit)
}

// gate resolves limit-price gating once per instance. With no limit the
// order proceeds at the current price. If the market already moved
// favorably past the limit (a long intent with the price below it, a short
// intent with the price above it) the order fills at the current price without
// substitution. Otherwise the limit must fall strictly inside today's
// low/high range, in which case it becomes the execution price and the
// latch is set; outside the range the order waits.
func (o *Order) gate(limit *float64, direction int) Status {
	if limit == nil || o.limitPassed {
		return Placed
	}
	if direction > 0 && o.price < *limit {
		return Placed
	}
	if direction < 0 && o.price > *limit {
		return Placed
	}

	c, err := o.book.Candle(o.symbol)
	if err != nil {
		o.log.Error("order: no candle for limit check",
			zap.String("symbol", o.symbol),
			zap.Time("date", o.book.Date()),
			zap.Error(err))
		return Rejected
	}
	if c.Low < *limit && *limit < c.High {
		o.price = *limit
		o.limitPassed = true
		return Placed
	}
	return LimitNotHit
}

func (o *Order) place(amount int) Status {
	value := float64(amount) * o.price
	space := o.led.StartingAmount() - o.led.ValueInvested()

	if !o.ableToExceed && math.Abs(value) > space {
		if amount > 0 {
			amount = int(math.Floor(space / o.price))
		} else {
			amount = int(math.Ceil(-space / o.price))
		}
	}
	if amount >= -minAmount && amount <= minAmount {
		return Rejected
	}

	if _, ok := o.led.OpenLot(o.symbol, amount, o.price, o.book.Date(), o.openReason); !ok {
		return Rejected
	}
	return Placed
}

func (o *Order) placeValue(value float64) Status {
	var amount int
	switch {
	case value > 0:
		amount = int(math.Floor(value / o.price))
	case value < 0:
		amount = int(math.Ceil(value / o.price))
	default:
		return Rejected
	}
	return o.place(amount)
}

func (o *Order) placeTarget(target int) Status {
	cur := o.currentShares
	date := o.book.Date()

	switch {
	case (target > cur && cur >= 0) || (target < cur && cur <= 0):
		// Same-side increase, or opening from flat.
		delta := target - cur
		if abs(delta) < o.minToEnter {
			return Rejected
		}
		return o.place(delta)

	case (cur > target && target >= 0) || (cur < target && target <= 0):
		// Same-side decrease, down to and including flat.
		amountToClose := cur - target
		for _, h := range o.openLots {
			lot, ok := o.led.Lot(h)
			if !ok || !lot.IsOpen() {
				continue
			}
			if abs(lot.Amount) <= abs(amountToClose) {
				closed := lot.Amount
				if o.led.CloseLotFully(h, o.symbol, o.price, date, o.closeReason) {
					amountToClose -= closed
				}
				if amountToClose == 0 {
					break
				}
				continue
			}
			o.led.CloseLotPartially(h, amountToClose, o.price, date, o.closeReason)
			amountToClose = 0
			break
		}
		return Placed

	case (cur > 0 && target < 0) || (cur < 0 && target > 0):
		// Sign flip: flatten, then re-enter for the full target.
		for _, h := range o.openLots {
			o.led.CloseLotFully(h, o.symbol, o.price, date, o.closeReason)
		}
		return o.place(target)
	}

	return Rejected
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func signF(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
