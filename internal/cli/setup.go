package cli

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantworks/backtester/backtest"
	"github.com/quantworks/backtester/config"
	"github.com/quantworks/backtester/journal"
	"github.com/quantworks/backtester/market"
	"github.com/quantworks/backtester/strategies"
)

// setup is everything a command needs before it can run a simulation.
type setup struct {
	cfg     *config.Config
	data    *market.Dataset
	factory strategies.Factory
	log     *zap.Logger
}

func newSetup(ro *rootOptions) (*setup, error) {
	log, err := ro.logger()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromFile(ro.configPath)
	if err != nil {
		return nil, err
	}

	data, err := market.LoadCSVDir(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	for _, f := range []*market.Frame{data.Opens, data.Highs, data.Lows, data.Closes, data.Volumes} {
		if f != nil {
			f.ForwardFill()
		}
	}

	start, end, err := dateRange(cfg)
	if err != nil {
		return nil, err
	}
	if !start.IsZero() || !end.IsZero() {
		data, err = data.Between(start, end)
		if err != nil {
			return nil, err
		}
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	factory, err := strategies.Get(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}

	log.Info("data loaded",
		zap.String("dir", cfg.Data.Dir),
		zap.Int("days", len(data.Dates())),
		zap.Int("symbols", len(data.Symbols())),
		zap.String("strategy", cfg.Strategy.Name))

	return &setup{cfg: cfg, data: data, factory: factory, log: log}, nil
}

func dateRange(cfg *config.Config) (start, end time.Time, err error) {
	if cfg.Data.Start != "" {
		start, err = time.Parse("2006-01-02", cfg.Data.Start)
		if err != nil {
			return
		}
	}
	if cfg.Data.End != "" {
		end, err = time.Parse("2006-01-02", cfg.Data.End)
	}
	return
}

// params merges the strategy tunables with the account-level settings so a
// strategy can honour compound, able_to_exceed, and min_to_enter without
// extra plumbing. Explicit strategy params win.
func (s *setup) params() backtest.Params {
	p := backtest.Params{
		"compound":       0,
		"able_to_exceed": 1,
		"min_to_enter":   float64(s.cfg.Account.MinToEnter),
	}
	if s.cfg.Account.Compound {
		p["compound"] = 1
	}
	if !s.cfg.Account.AbleToExceed {
		p["able_to_exceed"] = 0
	}
	for name, v := range s.cfg.Strategy.Params {
		p[name] = v
	}
	return p
}

func (s *setup) runConfig(optimising bool) backtest.Config {
	return backtest.Config{
		StartingCash: s.cfg.Account.StartingCash,
		Rebalance:    s.cfg.Rebalance(),
		MaxLookback:  s.cfg.Data.MaxLookback,
		Optimising:   optimising,
		Logger:       s.log,
	}
}

func (s *setup) journal() (journal.Journal, error) {
	jc := s.cfg.Journal
	switch strings.ToLower(jc.Type) {
	case "csv":
		return journal.NewCSV(jc.LotsFile, jc.WealthFile, jc.ReportFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "none", "":
		return journal.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}
