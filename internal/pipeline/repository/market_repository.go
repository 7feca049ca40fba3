package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang-crypto-sentinel/internal/pipeline/config"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/utils"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// MarketRepository supplies market snapshots to the correlator.
type MarketRepository interface {
	Snapshot(ctx context.Context, symbol string) (dto.MarketSnapshot, error)
}

type coinProfile struct {
	geckoID string
	price   float64
	supply  float64
	volume  float64
}

var coinProfiles = map[string]coinProfile{
	"BTC":   {geckoID: "bitcoin", price: 45000, supply: 19_600_000, volume: 25e9},
	"ETH":   {geckoID: "ethereum", price: 2500, supply: 120_000_000, volume: 12e9},
	"SOL":   {geckoID: "solana", price: 100, supply: 440_000_000, volume: 2e9},
	"ADA":   {geckoID: "cardano", price: 0.5, supply: 35_000_000_000, volume: 4e8},
	"DOT":   {geckoID: "polkadot", price: 7, supply: 1_300_000_000, volume: 2e8},
	"XRP":   {geckoID: "ripple", price: 0.6, supply: 54_000_000_000, volume: 1.5e9},
	"DOGE":  {geckoID: "dogecoin", price: 0.08, supply: 142_000_000_000, volume: 5e8},
	"AVAX":  {geckoID: "avalanche-2", price: 35, supply: 370_000_000, volume: 5e8},
	"MATIC": {geckoID: "matic-network", price: 0.8, supply: 9_300_000_000, volume: 3e8},
	"LINK":  {geckoID: "chainlink", price: 15, supply: 560_000_000, volume: 4e8},
	"BNB":   {geckoID: "binancecoin", price: 300, supply: 150_000_000, volume: 1e9},
	"LTC":   {geckoID: "litecoin", price: 70, supply: 74_000_000, volume: 4e8},
}

var unknownCoin = coinProfile{price: 1, supply: 1_000_000_000, volume: 1e7}

const maxSimulatedMove = 25.0

type simulatedMarketRepository struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64
	now    func() time.Time
}

// NewSimulatedMarketRepository returns a random-walk market. The same seed
// produces the same sequence of snapshots for the same call order.
func NewSimulatedMarketRepository(seed int64) MarketRepository {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &simulatedMarketRepository{
		rng:    rand.New(rand.NewSource(seed)),
		prices: map[string]float64{},
		now:    time.Now,
	}
}

func (r *simulatedMarketRepository) Snapshot(ctx context.Context, symbol string) (dto.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return dto.MarketSnapshot{}, err
	}
	symbol = strings.ToUpper(symbol)
	profile, ok := coinProfiles[symbol]
	if !ok {
		profile = unknownCoin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	price, ok := r.prices[symbol]
	if !ok {
		price = profile.price
	}
	change := utils.Clamp(r.rng.NormFloat64()*4, -maxSimulatedMove, maxSimulatedMove)
	price *= 1 + change/100
	r.prices[symbol] = price

	return dto.MarketSnapshot{
		Symbol:        symbol,
		Price:         roundTo(price, 6),
		Volume24h:     math.Round(profile.volume * (0.5 + r.rng.Float64())),
		MarketCap:     math.Round(price * profile.supply),
		PercentChange: roundTo(change, 2),
		Timestamp:     r.now(),
	}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

type coinGeckoMarketRepository struct {
	cfg            config.Market
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
	now            func() time.Time
}

// NewCoinGeckoMarketRepository reads quotes from the CoinGecko simple price API.
func NewCoinGeckoMarketRepository(cfg config.Market, log *logger.Logger) MarketRepository {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = 30
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("x-cg-demo-api-key", cfg.APIKey)
	}

	return &coinGeckoMarketRepository{
		cfg:            cfg,
		log:            log,
		client:         client,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		now:            time.Now,
	}
}

type coinGeckoQuote struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

func (r *coinGeckoMarketRepository) Snapshot(ctx context.Context, symbol string) (dto.MarketSnapshot, error) {
	symbol = strings.ToUpper(symbol)
	profile, ok := coinProfiles[symbol]
	if !ok {
		return dto.MarketSnapshot{}, fmt.Errorf("no coingecko id for symbol %s", symbol)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", logger.ErrorField(err))
		return dto.MarketSnapshot{}, err
	}

	var quotes map[string]coinGeckoQuote
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 profile.geckoID,
			"vs_currencies":       "usd",
			"include_market_cap":  "true",
			"include_24hr_vol":    "true",
			"include_24hr_change": "true",
		}).
		SetResult(&quotes).
		Get("/simple/price")
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to CoinGecko API",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
		return dto.MarketSnapshot{}, err
	}
	if resp.IsError() {
		r.log.ErrorContext(ctx, "Received non-OK response from CoinGecko API",
			logger.StringField("symbol", symbol), logger.IntField("status_code", resp.StatusCode()))
		return dto.MarketSnapshot{}, fmt.Errorf("coingecko returned status %d", resp.StatusCode())
	}

	q, ok := quotes[profile.geckoID]
	if !ok {
		return dto.MarketSnapshot{}, fmt.Errorf("coingecko returned no quote for %s", symbol)
	}

	return dto.MarketSnapshot{
		Symbol:        symbol,
		Price:         q.USD,
		Volume24h:     q.USD24hVol,
		MarketCap:     q.USDMarketCap,
		PercentChange: q.USD24hChange,
		Timestamp:     r.now(),
	}, nil
}
