// Package backtest drives a simulation forward one trading day at a time:
// set the price context, fire the strategy hooks, mark the ledger to market,
// repeat, then force-close whatever is still open.
package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quantworks/backtester/ledger"
	"github.com/quantworks/backtester/market"
	"github.com/quantworks/backtester/order"
)

// Params is the typed key-value store a strategy reads its tunable values
// from. The optimisation sweep swaps one in per combination; a single run
// may leave it nil.
type Params map[string]float64

// Value returns the named parameter, or def when absent.
func (p Params) Value(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Context is the per-day view handed to every strategy hook.
type Context struct {
	Ledger *ledger.Ledger
	Book   *market.Book
	Data   *market.Dataset
	Date   time.Time
	Params Params
	Log    *zap.Logger
}

// Strategy receives the day's hooks. EveryDayOpen and EveryDayClose fire on
// every trading day; TradeOpen and TradeClose fire only on rebalance days.
// BeforeStart runs once, before the first day.
type Strategy interface {
	Name() string
	BeforeStart(ctx *Context)
	EveryDayOpen(ctx *Context)
	TradeOpen(ctx *Context)
	TradeClose(ctx *Context)
	EveryDayClose(ctx *Context)
}

// Config holds the run parameters that are not strategy tunables.
type Config struct {
	StartingCash float64
	Rebalance    market.Rebalance
	// MaxLookback trims this many leading days off the date axis so
	// indicators have history before the first tradeable day.
	MaxLookback int
	// Optimising turns on the ledger's closed-lot purge.
	Optimising bool
	Logger     *zap.Logger
}

// Result summarises one completed run.
type Result struct {
	StartingCash float64
	FinalWealth  float64
	TotalProfit  float64
	// RealisedRate is profit as a percent of starting cash per year, at
	// 252 trading days to the year.
	RealisedRate float64
	Trades       int
	Wins         int
	WealthTrack  []float64
	DateTrack    []time.Time
	Snapshot     ledger.Snapshot
}

// Runner owns one simulation run.
type Runner struct {
	Data     *market.Dataset
	Strategy Strategy
	Config   Config
	Params   Params
}

// Run executes the day loop. Configuration problems abort before the first
// day; after that the run always completes.
func (r *Runner) Run() (Result, error) {
	if r.Data == nil {
		return Result{}, fmt.Errorf("backtest: Data is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if err := r.Data.Validate(); err != nil {
		return Result{}, err
	}
	if r.Config.StartingCash <= 0 {
		return Result{}, fmt.Errorf("backtest: starting cash must be positive, got %v", r.Config.StartingCash)
	}

	all := r.Data.Dates()
	if r.Config.MaxLookback < 0 || r.Config.MaxLookback >= len(all) {
		return Result{}, fmt.Errorf("backtest: max lookback %d leaves no tradeable days (have %d)",
			r.Config.MaxLookback, len(all))
	}
	dates := all[r.Config.MaxLookback:]

	scheduled := make(map[time.Time]bool)
	for _, d := range market.Schedule(dates, r.Config.Rebalance) {
		scheduled[d] = true
	}

	log := r.Config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	led := ledger.New(r.Config.StartingCash,
		ledger.WithLogger(log),
		ledger.WithOptimising(r.Config.Optimising))
	book := market.NewBook(r.Data)

	ctx := &Context{
		Ledger: led,
		Book:   book,
		Data:   r.Data,
		Params: r.Params,
		Log:    log,
	}

	r.Strategy.BeforeStart(ctx)

	for _, d := range dates {
		book.SetDay(d)
		ctx.Date = d

		book.SetPhase(market.PhaseOpen)
		r.Strategy.EveryDayOpen(ctx)

		if scheduled[d] {
			book.SetPhase(market.PhaseOpen)
			r.Strategy.TradeOpen(ctx)
			book.SetPhase(market.PhaseClose)
			r.Strategy.TradeClose(ctx)
		}

		book.SetPhase(market.PhaseClose)
		r.Strategy.EveryDayClose(ctx)

		if _, err := led.MarkToMarket(d, book); err != nil {
			return Result{}, err
		}
	}

	// Everything still open exits at the final close.
	last := dates[len(dates)-1]
	book.SetDay(last)
	book.SetPhase(market.PhaseClose)
	for _, sym := range led.OpenSymbols() {
		ord, err := order.New(led, book, sym,
			order.CloseReason("End of backtest"),
			order.WithLogger(log))
		if err != nil {
			log.Error("backtest: cannot close out position",
				zap.String("symbol", sym),
				zap.Time("date", last),
				zap.Error(err))
			continue
		}
		ord.TargetAmount(0, nil)
	}

	return r.result(led), nil
}

func (r *Runner) result(led *ledger.Ledger) Result {
	snap := led.Snapshot()
	res := Result{
		StartingCash: r.Config.StartingCash,
		FinalWealth:  led.LatestWealth(),
		Trades:       snap.Trades,
		Wins:         snap.Wins,
		WealthTrack:  snap.WealthTrack,
		DateTrack:    snap.DateTrack,
		Snapshot:     snap,
	}
	res.TotalProfit = res.FinalWealth - res.StartingCash
	if n := len(res.WealthTrack); n > 0 {
		years := float64(n) / 252.0
		res.RealisedRate = (100 * res.TotalProfit / res.StartingCash) / years
	}
	return res
}
