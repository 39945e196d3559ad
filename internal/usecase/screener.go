package usecase

import (
	"context"
	"log/slog"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
)

const (
	screenInterval = "3m"
	screenLookback = 10

	// volumeSpikeThreshold is reported context only; the inclusion rule
	// gates on price distance, never on volume (observed policy).
	volumeSpikeThreshold = 2.0
)

// Screener evaluates the symbol universe for proximity to local extremes and
// volume spikes, one full pass per call.
type Screener struct {
	market ports.MarketData
	log    *slog.Logger
}

// NewScreener wires the market client into the screener.
func NewScreener(market ports.MarketData, log *slog.Logger) *Screener {
	return &Screener{market: market, log: log}
}

// Screen runs one pass over the given symbols. Per-symbol failures and empty
// candle sets skip that symbol only; the pass never aborts.
func (s *Screener) Screen(ctx context.Context, symbols []string) []domain.ScreeningResult {
	results := make([]domain.ScreeningResult, 0, len(symbols))

	for _, symbol := range symbols {
		candles, err := s.market.Candles(ctx, symbol, screenInterval, screenLookback)
		if err != nil {
			s.debug("candle fetch failed", "symbol", symbol, "error", err)
			continue
		}
		if len(candles) == 0 {
			s.debug("no candles for symbol", "symbol", symbol)
			continue
		}

		result, ok := analyze(symbol, candles)
		if !ok {
			continue
		}
		results = append(results, result)
	}

	return results
}

// analyze computes one symbol's screening result from its candle window,
// most-recent first. The reported flag applies the inclusion rule: the price
// must be within one full range of either extreme (boundary inclusive).
func analyze(symbol string, candles []domain.Candle) (domain.ScreeningResult, bool) {
	current := candles[0].Close

	high := candles[0].High
	low := candles[0].Low
	for _, c := range candles[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	if high == 0 || low == 0 {
		return domain.ScreeningResult{}, false
	}

	distanceFromHigh := (high - current) / high * 100
	distanceFromLow := (current - low) / low * 100

	if distanceFromHigh > 100 && distanceFromLow > 100 {
		return domain.ScreeningResult{}, false
	}

	position := 1
	if distanceFromLow <= 100 {
		position = -1
	}

	return domain.ScreeningResult{
		Symbol:           symbol,
		Price:            current,
		High:             high,
		Low:              low,
		DistanceFromHigh: distanceFromHigh,
		DistanceFromLow:  distanceFromLow,
		VolumeIncrease:   volumeIncrease(candles),
		PricePosition:    position,
	}, true
}

// volumeIncrease is the ratio of the newest candle's volume to the average of
// all older candles; with fewer than two candles there is no history and the
// ratio is 0.
func volumeIncrease(candles []domain.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}

	var sum float64
	for _, c := range candles[1:] {
		sum += c.Volume
	}
	avg := sum / float64(len(candles)-1)
	if avg == 0 {
		return 0
	}
	return candles[0].Volume / avg
}

func (s *Screener) debug(msg string, args ...any) {
	if s.log != nil {
		s.log.Debug(msg, args...)
	}
}
