package strategies

import (
	"math"

	"go.uber.org/zap"

	"github.com/quantworks/backtester/backtest"
	"github.com/quantworks/backtester/indicators"
	"github.com/quantworks/backtester/order"
)

func init() {
	Register("rsi-reversion", func(symbols []string) backtest.Strategy {
		return NewRSIReversion(symbols)
	})
}

// RSIReversion buys a fixed percent of capital when a symbol's RSI drops
// below the entry level, exits when it recovers above the exit level, and
// guards every open position with an intraday stop-loss.
//
// Tunables (via Params): rsi_len (14), entry_below (30), exit_above (55),
// percent (0.1), stop_loss (0.1). The account-level keys compound,
// able_to_exceed, and min_to_enter are also honoured so the run
// configuration can set them without new plumbing.
type RSIReversion struct {
	Base
	Symbols []string
}

func NewRSIReversion(symbols []string) *RSIReversion {
	return &RSIReversion{Symbols: append([]string(nil), symbols...)}
}

func (s *RSIReversion) Name() string { return "rsi-reversion" }

func (s *RSIReversion) TradeClose(ctx *backtest.Context) {
	rsiLen := int(ctx.Params.Value("rsi_len", 14))
	entryBelow := ctx.Params.Value("entry_below", 30)
	exitAbove := ctx.Params.Value("exit_above", 55)
	percent := ctx.Params.Value("percent", 0.1)

	for _, sym := range s.Symbols {
		rsi, ok := s.lastRSI(ctx, sym, rsiLen)
		if !ok {
			continue
		}

		opts := append(s.accountOptions(ctx),
			order.OpenReason("RSI entry"),
			order.CloseReason("RSI exit"),
			order.WithLogger(ctx.Log))
		ord, err := order.New(ctx.Ledger, ctx.Book, sym, opts...)
		if err != nil {
			continue
		}

		switch {
		case rsi < entryBelow && !ctx.Ledger.HasOpen(sym):
			ord.Percent(percent, nil)
		case rsi > exitAbove && ctx.Ledger.HasOpen(sym):
			ord.TargetAmount(0, nil)
		}
	}
}

func (s *RSIReversion) EveryDayClose(ctx *backtest.Context) {
	stop := ctx.Params.Value("stop_loss", 0.1)
	for _, sym := range s.Symbols {
		if !ctx.Ledger.HasOpen(sym) {
			continue
		}
		opts := append(s.accountOptions(ctx),
			order.CloseReason("stop-loss"),
			order.WithLogger(ctx.Log))
		ord, err := order.New(ctx.Ledger, ctx.Book, sym, opts...)
		if err != nil {
			continue
		}
		if ord.CheckStopLoss(order.StopCheck{Fraction: stop, Timing: order.Intraday, CloseIfHit: true}) {
			ctx.Log.Debug("stop-loss hit",
				zap.String("symbol", sym),
				zap.Time("date", ctx.Date))
		}
	}
}

func (s *RSIReversion) accountOptions(ctx *backtest.Context) []order.Option {
	var opts []order.Option
	if ctx.Params.Value("compound", 0) != 0 {
		opts = append(opts, order.Compound())
	}
	if ctx.Params.Value("able_to_exceed", 1) == 0 {
		opts = append(opts, order.NoExceed())
	}
	if n := int(ctx.Params.Value("min_to_enter", order.DefaultMinToEnter)); n != order.DefaultMinToEnter {
		opts = append(opts, order.MinToEnter(n))
	}
	return opts
}

func (s *RSIReversion) lastRSI(ctx *backtest.Context, symbol string, n int) (float64, bool) {
	closes, err := ctx.Data.Closes.ColThrough(symbol, ctx.Date)
	if err != nil {
		return 0, false
	}
	vals, err := indicators.RSI(closes, n)
	if err != nil {
		return 0, false
	}
	last := vals[len(vals)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}
