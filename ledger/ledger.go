// Package ledger owns all mutation of trade state during a simulation run:
// the ordered log of trade lots, cash, invested value, the open-position set,
// and the daily wealth series. One simulation run owns exactly one Ledger;
// each optimisation combination gets a fresh instance.
package ledger

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// PriceLookup resolves the current mark price for a symbol. market.Book
// satisfies it.
type PriceLookup interface {
	Price(symbol string) (float64, error)
}

// Ledger tracks every trade lot and the aggregate account state derived from
// them. All methods are single-goroutine; the simulation is strictly
// sequential by construction.
type Ledger struct {
	startingAmount float64
	cash           float64
	valueInvested  float64
	optimising     bool
	log            *zap.Logger

	lots    []Lot
	byID    map[Handle]int
	nextID  Handle
	net     map[string]int
	openSet map[string]struct{}

	// positions is sparse: an entry is written only when a symbol's net
	// share count changes on a day.
	positions map[time.Time]map[string]int

	wealthTrack []float64
	dateTrack   []time.Time

	trades int
	wins   int
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithLogger sets the diagnostic logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithOptimising turns on sweep mode: MarkToMarket drops closed lots after
// folding them into the trade/win counters, bounding memory over long
// multi-combination sweeps.
func WithOptimising(on bool) Option {
	return func(l *Ledger) { l.optimising = on }
}

// New creates a fresh ledger with the given starting cash.
func New(startingAmount float64, opts ...Option) *Ledger {
	l := &Ledger{
		startingAmount: startingAmount,
		cash:           startingAmount,
		log:            zap.NewNop(),
		byID:           make(map[Handle]int),
		net:            make(map[string]int),
		openSet:        make(map[string]struct{}),
		positions:      make(map[time.Time]map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) StartingAmount() float64 { return l.startingAmount }
func (l *Ledger) Cash() float64           { return l.cash }
func (l *Ledger) ValueInvested() float64  { return l.valueInvested }
func (l *Ledger) Optimising() bool        { return l.optimising }

// TradeCount and WinCount are running close counters. They stay valid in
// optimising mode after the per-trade detail is purged.
func (l *Ledger) TradeCount() int { return l.trades }
func (l *Ledger) WinCount() int   { return l.wins }

// Lot resolves a handle. The second return is false for purged or unknown
// handles.
func (l *Ledger) Lot(h Handle) (*Lot, bool) {
	i, ok := l.byID[h]
	if !ok {
		return nil, false
	}
	return &l.lots[i], true
}

// Lots returns the full trade log in creation order, open and closed.
func (l *Ledger) Lots() []Lot { return l.lots }

// OpenLots returns the handles of the symbol's open lots in ledger order.
func (l *Ledger) OpenLots(symbol string) []Handle {
	var hs []Handle
	for i := range l.lots {
		if l.lots[i].Symbol == symbol && l.lots[i].IsOpen() {
			hs = append(hs, l.lots[i].ID)
		}
	}
	return hs
}

// NetShares returns the symbol's current net signed share count.
func (l *Ledger) NetShares(symbol string) int { return l.net[symbol] }

// OpenSymbols returns the set of symbols with at least one open lot.
func (l *Ledger) OpenSymbols() []string {
	out := make([]string, 0, len(l.openSet))
	for s := range l.openSet {
		out = append(out, s)
	}
	return out
}

// HasOpen reports whether the symbol has any open lot.
func (l *Ledger) HasOpen(symbol string) bool {
	_, ok := l.openSet[symbol]
	return ok
}

// PositionsByDate returns the sparse (date, symbol) → net shares table.
func (l *Ledger) PositionsByDate() map[time.Time]map[string]int { return l.positions }

// WealthTrack and DateTrack are the parallel daily mark-to-market series.
func (l *Ledger) WealthTrack() []float64  { return l.wealthTrack }
func (l *Ledger) DateTrack() []time.Time { return l.dateTrack }

// LatestWealth returns the last marked total equity, or the starting amount
// before the first mark. Used as the basis capital in compounding mode.
func (l *Ledger) LatestWealth() float64 {
	if len(l.wealthTrack) == 0 {
		return l.startingAmount
	}
	return l.wealthTrack[len(l.wealthTrack)-1]
}

// OpenLot appends a new open lot and adjusts cash, invested value, the open
// set, and the position tracker. A zero amount is never accepted.
func (l *Ledger) OpenLot(symbol string, amount int, price float64, date time.Time, reason string) (Handle, bool) {
	if amount == 0 {
		l.log.Error("ledger: rejected zero-amount lot",
			zap.String("symbol", symbol),
			zap.Time("date", date))
		return NoHandle, false
	}

	dir := Long
	if amount < 0 {
		dir = Short
	}
	value := float64(amount) * price

	h := l.nextID
	l.nextID++
	l.byID[h] = len(l.lots)
	l.lots = append(l.lots, Lot{
		ID:         h,
		Direction:  dir,
		Symbol:     symbol,
		OpenDate:   date,
		OpenPrice:  price,
		Amount:     amount,
		OpenValue:  value,
		OpenReason: reason,
	})

	l.cash -= math.Abs(value)
	l.valueInvested += math.Abs(value)
	l.openSet[symbol] = struct{}{}
	l.setPosition(date, symbol, l.net[symbol]+amount)

	return h, true
}

// CloseLotFully terminates an open lot at the given price. The symbol is a
// defensive cross-check against misaddressed handles: a mismatch is logged
// and skipped without touching state.
func (l *Ledger) CloseLotFully(h Handle, symbol string, price float64, date time.Time, reason string) bool {
	lot, ok := l.Lot(h)
	if !ok || !lot.IsOpen() {
		l.log.Error("ledger: close of unknown or already-closed lot",
			zap.Int("lot", int(h)),
			zap.String("symbol", symbol),
			zap.Time("date", date))
		return false
	}
	if lot.Symbol != symbol {
		l.log.Error("ledger: lot not closed, symbol mismatch",
			zap.Int("lot", int(h)),
			zap.String("lot_symbol", lot.Symbol),
			zap.String("caller_symbol", symbol),
			zap.Time("date", date))
		return false
	}

	closeValue := float64(lot.Amount) * price
	profit := closeValue - lot.OpenValue
	lot.Close = &CloseInfo{
		Date:   date,
		Price:  price,
		Value:  closeValue,
		Reason: reason,
		Profit: profit,
	}

	l.cash += profit + math.Abs(lot.OpenValue)
	l.valueInvested -= math.Abs(lot.OpenValue)
	l.countClose(profit)
	l.setPosition(date, lot.Symbol, l.net[lot.Symbol]-lot.Amount)
	l.settleOpenSet(lot.Symbol)

	return true
}

// CloseLotPartially closes part of an open lot. The addressed record is
// shrunk in place to become the closed portion; the leftover shares spawn a
// new open lot at the end of the log carrying the original open date, price,
// and reason. Invested value is not re-added for the remainder since it was
// never removed for it. Returns the remainder's handle.
func (l *Ledger) CloseLotPartially(h Handle, amountToClose int, price float64, date time.Time, reason string) (Handle, bool) {
	lot, ok := l.Lot(h)
	if !ok || !lot.IsOpen() {
		l.log.Error("ledger: partial close of unknown or already-closed lot",
			zap.Int("lot", int(h)),
			zap.Time("date", date))
		return NoHandle, false
	}
	if !sameSign(amountToClose, lot.Amount) || abs(amountToClose) >= abs(lot.Amount) {
		l.log.Error("ledger: invalid partial close amount",
			zap.Int("lot", int(h)),
			zap.String("symbol", lot.Symbol),
			zap.Int("lot_amount", lot.Amount),
			zap.Int("amount_to_close", amountToClose),
			zap.Time("date", date))
		return NoHandle, false
	}

	amountRemaining := lot.Amount - amountToClose
	closedOpenValue := lot.OpenPrice * float64(amountToClose)
	profit := float64(amountToClose)*price - closedOpenValue

	dir, sym := lot.Direction, lot.Symbol
	openDate, openPrice, openReason := lot.OpenDate, lot.OpenPrice, lot.OpenReason

	// Shrink the addressed record into the closed portion.
	lot.Amount = amountToClose
	lot.OpenValue = closedOpenValue
	lot.Close = &CloseInfo{
		Date:   date,
		Price:  price,
		Value:  float64(amountToClose) * price,
		Reason: reason,
		Profit: profit,
	}

	l.cash += profit + math.Abs(closedOpenValue)
	l.valueInvested -= math.Abs(closedOpenValue)
	l.countClose(profit)

	// Spawn the remainder as a fresh open lot.
	rh := l.nextID
	l.nextID++
	l.byID[rh] = len(l.lots)
	l.lots = append(l.lots, Lot{
		ID:         rh,
		Direction:  dir,
		Symbol:     sym,
		OpenDate:   openDate,
		OpenPrice:  openPrice,
		Amount:     amountRemaining,
		OpenValue:  openPrice * float64(amountRemaining),
		OpenReason: openReason,
	})

	l.setPosition(date, sym, l.net[sym]-amountToClose)

	return rh, true
}

// MarkToMarket computes total equity at the current prices and appends it to
// the wealth/date tracks. Long lots mark at amount × price; short lots mark
// at current value minus twice the open value, which inverts the unrealized
// move since the notional was already removed from cash.
func (l *Ledger) MarkToMarket(date time.Time, prices PriceLookup) (float64, error) {
	total := l.cash
	for i := range l.lots {
		lot := &l.lots[i]
		if !lot.IsOpen() {
			continue
		}
		px, err := prices.Price(lot.Symbol)
		if err != nil {
			return 0, fmt.Errorf("ledger: mark to market: %w", err)
		}
		current := float64(lot.Amount) * px
		if lot.Direction == Long {
			total += current
		} else {
			total += current - 2*lot.OpenValue
		}
	}

	l.wealthTrack = append(l.wealthTrack, total)
	l.dateTrack = append(l.dateTrack, date)

	if l.optimising {
		l.purgeClosed()
	}
	return total, nil
}

// purgeClosed drops closed lots from the log. Their profits were already
// folded into the counters when they closed, so sweep summaries stay valid.
func (l *Ledger) purgeClosed() {
	kept := l.lots[:0]
	for i := range l.lots {
		if l.lots[i].IsOpen() {
			kept = append(kept, l.lots[i])
		} else {
			delete(l.byID, l.lots[i].ID)
		}
	}
	l.lots = kept
	for i := range l.lots {
		l.byID[l.lots[i].ID] = i
	}
}

func (l *Ledger) countClose(profit float64) {
	l.trades++
	if profit > 0 {
		l.wins++
	}
}

func (l *Ledger) setPosition(date time.Time, symbol string, netShares int) {
	l.net[symbol] = netShares
	day, ok := l.positions[date]
	if !ok {
		day = make(map[string]int)
		l.positions[date] = day
	}
	day[symbol] = netShares
}

// settleOpenSet drops the symbol from the open set once its last lot closes.
func (l *Ledger) settleOpenSet(symbol string) {
	for i := range l.lots {
		if l.lots[i].Symbol == symbol && l.lots[i].IsOpen() {
			return
		}
	}
	delete(l.openSet, symbol)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sameSign(a, b int) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
