package market

import (
	"fmt"
	"time"
)

// Phase selects which price is "current" for strategy hooks: the day's open
// during the open hooks, the day's close during the close hooks.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseClose
)

// Book is the per-day price context handed to strategies and the order
// engine. It is a read-only view over a Dataset; the day advancer moves it
// forward one day at a time and flips the phase around the hook points.
type Book struct {
	ds    *Dataset
	date  time.Time
	phase Phase
}

func NewBook(ds *Dataset) *Book {
	return &Book{ds: ds, phase: PhaseClose}
}

// SetDay points the book at a trading day.
func (b *Book) SetDay(date time.Time) { b.date = date }

// SetPhase flips the current price between the day's open and close.
func (b *Book) SetPhase(p Phase) { b.phase = p }

// Date returns the day the book currently points at.
func (b *Book) Date() time.Time { return b.date }

// Price returns the current price for a symbol: the day's open in PhaseOpen,
// the day's close in PhaseClose.
func (b *Book) Price(symbol string) (float64, error) {
	f := b.ds.Closes
	if b.phase == PhaseOpen {
		f = b.ds.Opens
	}
	v, ok := f.At(b.date, symbol)
	if !ok {
		return 0, fmt.Errorf("market: no price for %q on %s", symbol, b.date.Format("2006-01-02"))
	}
	return v, nil
}

// Candle returns the full OHLCV bar for a symbol on the current day.
func (b *Book) Candle(symbol string) (Candle, error) {
	c := Candle{Time: b.date}
	var ok bool
	if c.Open, ok = b.ds.Opens.At(b.date, symbol); !ok {
		return c, fmt.Errorf("market: no open for %q on %s", symbol, b.date.Format("2006-01-02"))
	}
	if c.High, ok = b.ds.Highs.At(b.date, symbol); !ok {
		return c, fmt.Errorf("market: no high for %q on %s", symbol, b.date.Format("2006-01-02"))
	}
	if c.Low, ok = b.ds.Lows.At(b.date, symbol); !ok {
		return c, fmt.Errorf("market: no low for %q on %s", symbol, b.date.Format("2006-01-02"))
	}
	if c.Close, ok = b.ds.Closes.At(b.date, symbol); !ok {
		return c, fmt.Errorf("market: no close for %q on %s", symbol, b.date.Format("2006-01-02"))
	}
	if b.ds.Volumes != nil {
		c.Volume, _ = b.ds.Volumes.At(b.date, symbol)
	}
	return c, nil
}

// Dataset exposes the underlying frames for indicator lookbacks.
func (b *Book) Dataset() *Dataset { return b.ds }
