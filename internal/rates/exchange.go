package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/buyee-landed-cost/internal/observability"
)

// DefaultExchangeURL serves the JPY base rates used for USD conversion.
const DefaultExchangeURL = "https://api.exchangerate-api.com/v4/latest/JPY"

// FallbackJPYToUSD keeps the pipeline running when the rate API is down.
const FallbackJPYToUSD = 0.0067

const exchangeCacheKey = "rates:jpy_usd"

// ExchangeClient fetches the JPY->USD rate, optionally caching it in Redis so
// bursts of calculations do not hammer the upstream API.
type ExchangeClient struct {
	url      string
	client   *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewExchangeClient builds a client against DefaultExchangeURL. rdb may be
// nil, in which case every Rate call hits the API.
func NewExchangeClient(rdb *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *ExchangeClient {
	return &ExchangeClient{
		url:      DefaultExchangeURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "exchange"),
	}
}

// WithURL overrides the upstream endpoint, for tests.
func (e *ExchangeClient) WithURL(url string) *ExchangeClient {
	e.url = url
	return e
}

// Rate returns the current JPY->USD rate. It never fails: any error along the
// way is logged and the fixed fallback rate is returned instead, so a dead
// rate API degrades accuracy rather than availability.
func (e *ExchangeClient) Rate(ctx context.Context) float64 {
	if e.redis != nil {
		if cached, err := e.redis.Get(ctx, exchangeCacheKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil && rate > 0 {
				return rate
			}
		}
	}

	rate, err := e.fetch(ctx)
	if err != nil {
		e.logger.Warn("exchange rate fetch failed, using fallback",
			"error", err, "fallback", FallbackJPYToUSD)
		observability.ExchangeFallbackTotal.Inc()
		return FallbackJPYToUSD
	}

	if e.redis != nil {
		if err := e.redis.Set(ctx, exchangeCacheKey, strconv.FormatFloat(rate, 'f', -1, 64), e.cacheTTL).Err(); err != nil {
			e.logger.Warn("failed to cache exchange rate", "error", err)
		}
	}
	return rate
}

func (e *ExchangeClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding rates: %w", err)
	}

	rate, ok := body.Rates["USD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no USD rate in response")
	}
	return rate, nil
}
