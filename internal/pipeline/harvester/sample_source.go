package harvester

import (
	"context"
	"time"

	"golang-crypto-sentinel/internal/pipeline/dto"
)

// SamplePost is one canned post served by a SampleSource.
type SamplePost struct {
	Content string
	URL     string
}

// DefaultSocialPosts is the synthetic social feed used when no live source
// is configured.
var DefaultSocialPosts = []SamplePost{
	{Content: "BTC is showing strong support at $45k. Bulls are accumulating ahead of the halving.", URL: "https://x.com/cryptotrader/status/1"},
	{Content: "Massive dump incoming? Whales moved 10,000 BTC to exchanges, traders fear a crash."},
	{Content: "SOL breakout confirmed, Solana price up 12% in 24h with record DEX volume.", URL: "https://x.com/solwatch/status/2"},
	{Content: "Another rug pull: a new DOGE clone token turned out to be a scam, holders rekt."},
	{Content: "gm"},
	{Content: "Cardano ADA holders stay optimistic as staking participation hits a new high."},
}

// DefaultNewsPosts is the synthetic news feed.
var DefaultNewsPosts = []SamplePost{
	{Content: "Ethereum network upgrade goes live, gas fees down 30% as DeFi activity surges across the market.", URL: "https://news.example.com/eth-upgrade"},
	{Content: "SEC lawsuit against a major exchange raises regulation concerns for XRP holders.", URL: "https://news.example.com/sec-xrp"},
	{Content: "Bitcoin ETF inflows hit $1.2B this week as institutional adoption of BTC accelerates.", URL: "https://news.example.com/btc-etf"},
	{Content: "Local bakery wins award for best sourdough."},
}

// SampleSource serves a fixed list of posts. It is the stand-in for live
// social and news providers.
type SampleSource struct {
	info  dto.DataSource
	posts []SamplePost
	now   func() time.Time
}

func NewSampleSource(id, name, url string, posts []SamplePost) *SampleSource {
	return &SampleSource{
		info:  dto.DataSource{ID: id, Name: name, URL: url, Type: dto.SourceTypeSample},
		posts: posts,
		now:   time.Now,
	}
}

func (s *SampleSource) Info() dto.DataSource {
	return s.info
}

// Fetch returns every post, newest first, one minute apart.
func (s *SampleSource) Fetch(ctx context.Context, _ string) ([]dto.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]dto.RawItem, 0, len(s.posts))
	for i, p := range s.posts {
		items = append(items, dto.RawItem{
			Content:   p.Content,
			URL:       p.URL,
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return items, nil
}
