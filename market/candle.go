package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data for one
// symbol on one trading day.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	time.Time
}
