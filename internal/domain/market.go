package domain

import "time"

// MarketSnapshot is the latest ticker state for one tracked base asset.
// At most one snapshot exists per asset; it is replaced wholesale on refresh.
type MarketSnapshot struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Volume24h     float64 `json:"volume_24h"`
	High24h       float64 `json:"high_24h"`
	Low24h        float64 `json:"low_24h"`
}

// Candle is one OHLCV sample at a fixed interval.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// ScreeningResult is one symbol's price/volume anomaly evaluation.
// Each screening pass recomputes it from scratch; results are never merged.
type ScreeningResult struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	DistanceFromHigh float64 `json:"distance_from_high"`
	DistanceFromLow  float64 `json:"distance_from_low"`
	VolumeIncrease   float64 `json:"volume_increase"`
	PricePosition    int     `json:"price_position"`
}
