package market

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"marketpulse/internal/assets"
	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	defaultTTL     = 3 * time.Minute
	defaultSpacing = 30 * time.Second
	tickersPath    = "/market/tickers"
	klinesPathTmpl = "/market/klines/%s/%s"
)

// Config configures the market client.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string

	// Pairs is the allow-list of trading pairs retained from upstream
	// responses; defaults to the tracked-asset universe.
	Pairs []string

	// CacheTTL and MinInterval exist so tests can shrink the windows.
	CacheTTL    time.Duration
	MinInterval time.Duration

	HTTPClient *http.Client
}

// Client fetches ticker snapshots and candle series from the upstream
// exchange, enforcing a minimum spacing between ticker requests and caching
// snapshots for a fixed TTL. It degrades to the last good cache on failure.
type Client struct {
	cfg     Config
	limiter *rate.Limiter
	log     *slog.Logger

	// pairBase maps a normalized upstream pair to its base asset symbol.
	pairBase map[string]string

	mu       sync.Mutex
	cache    map[string]domain.MarketSnapshot
	cachedAt time.Time
}

var _ ports.MarketData = (*Client)(nil)

// NewClient wires the upstream API client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultTTL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultSpacing
	}
	if len(cfg.Pairs) == 0 {
		cfg.Pairs = assets.Pairs()
	}

	pairBase := make(map[string]string, len(cfg.Pairs))
	for _, pair := range cfg.Pairs {
		base, _, _ := strings.Cut(pair, "-")
		pairBase[normalizeSymbol(pair)] = strings.ToUpper(base)
	}

	return &Client{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		log:      log,
		pairBase: pairBase,
	}
}

// Tickers returns the snapshot mapping keyed by base asset. Within the cache
// TTL the cached mapping is returned unconditionally; outside it, the call
// suspends until the rate limiter allows an outbound request. Failures fall
// back to the last good cache, never an error.
func (c *Client) Tickers(ctx context.Context) map[string]domain.MarketSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil && time.Since(c.cachedAt) < c.cfg.CacheTTL {
		return c.cache
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return c.cachedOrEmpty()
	}

	snapshots, err := c.fetchTickers(ctx)
	if err != nil {
		if c.log != nil {
			c.log.Warn("ticker fetch failed, serving cache", "error", err)
		}
		return c.cachedOrEmpty()
	}

	c.cache = snapshots
	c.cachedAt = time.Now()
	return c.cache
}

// Candles returns up to limit OHLCV samples for the symbol, most-recent
// first. Malformed rows are skipped; transport errors are returned.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	if limit <= 0 {
		limit = 10
	}

	path := fmt.Sprintf(klinesPathTmpl, symbol, interval)
	var res struct {
		Candles [][]string `json:"candles"`
	}
	if err := c.get(ctx, path, fmt.Sprintf("limit=%d", limit), &res); err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}

	candles := make([]domain.Candle, 0, len(res.Candles))
	for _, row := range res.Candles {
		candle, ok := parseCandle(row)
		if !ok {
			continue
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func (c *Client) cachedOrEmpty() map[string]domain.MarketSnapshot {
	if c.cache != nil {
		return c.cache
	}
	return map[string]domain.MarketSnapshot{}
}

func (c *Client) fetchTickers(ctx context.Context) (map[string]domain.MarketSnapshot, error) {
	var res struct {
		Tickers []struct {
			Symbol        string `json:"symbol"`
			Price         string `json:"price"`
			ChangePercent string `json:"change_percent"`
			Volume        string `json:"volume"`
			High          string `json:"high"`
			Low           string `json:"low"`
		} `json:"tickers"`
	}
	if err := c.get(ctx, tickersPath, "", &res); err != nil {
		return nil, err
	}

	snapshots := make(map[string]domain.MarketSnapshot)
	for _, item := range res.Tickers {
		base, ok := c.pairBase[normalizeSymbol(item.Symbol)]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(item.Price, 64)
		if err != nil {
			continue
		}
		snapshots[base] = domain.MarketSnapshot{
			Symbol:        base,
			Price:         price,
			ChangePercent: num(item.ChangePercent),
			Volume24h:     num(item.Volume),
			High24h:       num(item.High),
			Low24h:        num(item.Low),
		}
	}
	return snapshots, nil
}

func (c *Client) get(ctx context.Context, path, query string, target any) error {
	reqURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	if query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.signRequest(req, path)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %s", resp.Status)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// signRequest signs with HMAC-SHA256 over "{timestamp}{method}{path}". An
// empty secret yields an empty-secret signature; upstream rejects it but the
// client never treats missing credentials as a local fatal error.
func (c *Client) signRequest(req *http.Request, path string) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	prehash := timestamp + req.Method + path

	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(prehash))
	signature := hex.EncodeToString(mac.Sum(nil))

	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("X-API-TIMESTAMP", timestamp)
	req.Header.Set("X-API-SIGN", signature)
}

// normalizeSymbol case-folds and strips pair separators so upstream symbol
// spellings like "BTC-USDT", "btc_usdt" and "BTCUSDT" all compare equal.
func normalizeSymbol(symbol string) string {
	lowered := strings.ToLower(symbol)
	return strings.NewReplacer("-", "", "_", "", "/", "").Replace(lowered)
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseCandle(row []string) (domain.Candle, bool) {
	if len(row) < 6 {
		return domain.Candle{}, false
	}
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Candle{}, false
	}
	closePrice, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return domain.Candle{}, false
	}
	return domain.Candle{
		Timestamp: time.UnixMilli(ts),
		Open:      num(row[1]),
		High:      num(row[2]),
		Low:       num(row[3]),
		Close:     closePrice,
		Volume:    num(row[5]),
	}, true
}
