package analyzer

import (
	"regexp"
	"strings"
	"sync"
)

// Domain fragments score ±2 when a token contains them.
var (
	positiveFragments = []string{
		"moon", "bullish", "pump", "breakout", "rally", "hodl", "lambo",
		"adoption", "partnership", "accumulat", "upgrade", "surge", "soar",
	}
	negativeFragments = []string{
		"dump", "crash", "scam", "bearish", "fud", "hack", "exploit",
		"rekt", "ponzi", "liquidat", "plunge", "collapse", "delist",
	}
)

// General words score ±1 on an exact token match.
var (
	positiveWords = toSet(
		"good", "great", "strong", "gain", "gains", "profit", "up", "growth",
		"positive", "buy", "support", "win", "bull", "optimistic", "green",
		"high", "rise", "rising", "best", "excellent", "love", "recover",
	)
	negativeWords = toSet(
		"bad", "weak", "loss", "losses", "fear", "down", "drop", "sell",
		"risk", "negative", "lose", "red", "low", "fall", "falling", "worst",
		"terrible", "hate", "panic", "worried", "concern", "bear",
	)
)

type contextRule struct {
	all    []string
	adjust float64
}

var contextRules = []contextRule{
	{all: []string{"buy", "dip"}, adjust: 1},
	{all: []string{"sell", "crash"}, adjust: -1},
	{all: []string{"short", "squeeze"}, adjust: 1},
	{all: []string{"rug", "pull"}, adjust: -1},
}

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"regulation", []string{"sec", "regulation", "regulator", "ban", "law", "lawsuit", "compliance", "government"}},
	{"technology", []string{"upgrade", "protocol", "blockchain", "network", "layer", "fork", "mainnet", "scaling"}},
	{"market", []string{"price", "trading", "volume", "market", "support", "resistance", "chart", "rally"}},
	{"defi", []string{"defi", "yield", "staking", "liquidity", "dex", "lending", "tvl"}},
	{"adoption", []string{"adoption", "partnership", "institutional", "etf", "payment", "merchant"}},
	{"security", []string{"hack", "exploit", "scam", "phishing", "breach", "vulnerability"}},
}

var toneKeywords = []struct {
	tone     string
	keywords []string
}{
	{"fear", []string{"fear", "panic", "worried", "scared", "afraid", "uncertain", "fud"}},
	{"greed", []string{"moon", "lambo", "fomo", "rich", "100x", "pump"}},
	{"anger", []string{"scam", "angry", "furious", "fraud", "ponzi", "rekt"}},
	{"optimism", []string{"hope", "optimistic", "confident", "bullish", "strong", "growth"}},
}

var riskKeywords = []string{
	"hack", "scam", "exploit", "rug", "ban", "lawsuit", "sec", "ponzi",
	"liquidation", "delist", "insolvency", "volatility",
}

// knownEntity maps a ticker to its full name.
type knownEntity struct {
	symbol string
	name   string
}

var entityTable = []knownEntity{
	{"BTC", "Bitcoin"},
	{"ETH", "Ethereum"},
	{"SOL", "Solana"},
	{"ADA", "Cardano"},
	{"DOT", "Polkadot"},
	{"XRP", "Ripple"},
	{"DOGE", "Dogecoin"},
	{"AVAX", "Avalanche"},
	{"MATIC", "Polygon"},
	{"LINK", "Chainlink"},
	{"BNB", "Binance Coin"},
	{"LTC", "Litecoin"},
}

type entityMatcher struct {
	knownEntity
	symbolRe *regexp.Regexp
	nameRe   *regexp.Regexp
}

var entityMatchers = buildEntityMatchers()

func buildEntityMatchers() []entityMatcher {
	matchers := make([]entityMatcher, 0, len(entityTable))
	for _, e := range entityTable {
		matchers = append(matchers, newEntityMatcher(e))
	}
	return matchers
}

func newEntityMatcher(e knownEntity) entityMatcher {
	m := entityMatcher{
		knownEntity: e,
		symbolRe:    regexp.MustCompile(`\b` + regexp.QuoteMeta(e.symbol) + `\b`),
	}
	if e.name != "" {
		m.nameRe = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(e.name) + `\b`)
	}
	return m
}

// adhocMatchers caches matchers for tickers outside the entity table.
var adhocMatchers sync.Map

// matcherFor returns the matcher for a symbol; unknown symbols match on the
// ticker alone.
func matcherFor(symbol string) entityMatcher {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, m := range entityMatchers {
		if m.symbol == symbol {
			return m
		}
	}
	if m, ok := adhocMatchers.Load(symbol); ok {
		return m.(entityMatcher)
	}
	m, _ := adhocMatchers.LoadOrStore(symbol, newEntityMatcher(knownEntity{symbol: symbol}))
	return m.(entityMatcher)
}

// MentionsTicker reports whether text contains the ticker as a whole,
// case-sensitive word.
func MentionsTicker(text, symbol string) bool {
	if strings.TrimSpace(symbol) == "" {
		return false
	}
	return matcherFor(symbol).symbolRe.MatchString(text)
}

// FullName returns the full name for a known ticker, or "".
func FullName(symbol string) string {
	return matcherFor(symbol).name
}

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
