// Package strategies holds the built-in trading strategies and a small
// registry so the CLI can pick one by name.
package strategies

import (
	"fmt"
	"sort"

	"github.com/quantworks/backtester/backtest"
)

// Factory builds a fresh strategy instance for the given symbols. The sweep
// calls it once per combination so runs never share state.
type Factory func(symbols []string) backtest.Strategy

var registry = make(map[string]Factory)

func Register(name string, f Factory) {
	registry[name] = f
}

// Get returns the named strategy factory.
func Get(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("strategies: unknown strategy %q (have %v)", name, Names())
	}
	return f, nil
}

// Names lists the registered strategies.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Base is a no-op implementation of every hook; embed it and override the
// hooks the strategy actually uses.
type Base struct{}

func (Base) BeforeStart(*backtest.Context)   {}
func (Base) EveryDayOpen(*backtest.Context)  {}
func (Base) TradeOpen(*backtest.Context)     {}
func (Base) TradeClose(*backtest.Context)    {}
func (Base) EveryDayClose(*backtest.Context) {}
