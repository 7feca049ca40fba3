package harvester

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	id    string
	items []dto.RawItem
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Info() dto.DataSource {
	return dto.DataSource{ID: f.id, Name: f.id, Type: dto.SourceTypeSample}
}

func (f *fakeSource) Fetch(_ context.Context, _ string) ([]dto.RawItem, error) {
	f.calls.Add(1)
	return f.items, f.err
}

func newTestHarvester(opts Options, sources ...Source) *Harvester {
	log := logger.NewNop()
	h := New(log, analyzer.NewScorer(log), opts)
	for _, s := range sources {
		h.Register(s, true)
	}
	return h
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name    string
		content string
		url     string
		symbol  string
		want    float64
	}{
		{"scenario text", "BTC is showing strong support at $45k", "", "BTC", 0.2 + 0.5 + 0.1},
		{"symbol and name", "SOL and Solana", "", "SOL", 0.5 + 0.4},
		{"percent and url", "up 12% today", "https://x", "", 0.2},
		{"nothing", "gm", "", "BTC", 0},
		{"lowercase ticker is not the symbol", "btc and solbtc", "", "BTC", 0},
		{"clamped", "Bitcoin BTC crypto blockchain market price exchange trading token up 5% to $60k", "https://x", "BTC", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Relevance(tt.content, tt.url, tt.symbol), 1e-9)
		})
	}
}

func TestRelevance_LengthBonus(t *testing.T) {
	short := "crypto"
	long := "crypto news that is long enough to cross the fifty char mark"
	assert.InDelta(t, 0.2, Relevance(short, "", ""), 1e-9)
	assert.InDelta(t, 0.3, Relevance(long, "", ""), 1e-9)
}

func TestHarvest_ScenarioItemRetained(t *testing.T) {
	src := NewSampleSource("sample-social", "Sample social", "", DefaultSocialPosts)
	h := newTestHarvester(Options{}, src)

	items, err := h.Harvest(context.Background(), "BTC")
	require.NoError(t, err)
	require.NotEmpty(t, items)

	var found bool
	for _, it := range items {
		assert.Greater(t, it.Relevance, 0.3)
		assert.LessOrEqual(t, it.Relevance, 1.0)
		if it.Content == DefaultSocialPosts[0].Content {
			found = true
			assert.Contains(t, it.Symbols, "BTC")
			assert.Equal(t, "sample-social", it.SourceID)
		}
		assert.NotEqual(t, "gm", it.Content)
	}
	assert.True(t, found, "scenario post should be retained")

	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Relevance, items[i].Relevance)
	}
}

func TestHarvest_FailingSourceIsSkipped(t *testing.T) {
	good := &fakeSource{id: "good", items: []dto.RawItem{{Content: "BTC price breakout above $50k, crypto market cheers"}}}
	bad := &fakeSource{id: "bad", err: errors.New("connection refused")}
	h := newTestHarvester(Options{}, good, bad)

	items, err := h.Harvest(context.Background(), "BTC")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "good", items[0].SourceID)
	assert.Equal(t, map[string]bool{"good": true}, h.SourceHealth())
	assert.Equal(t, []string{"bad"}, h.DegradedSources())
}

func TestHarvest_RecoveredSourceRejoinsHealthMap(t *testing.T) {
	flaky := &fakeSource{id: "flaky", err: errors.New("503")}
	good := &fakeSource{id: "good", items: []dto.RawItem{{Content: "BTC price breakout above $50k, crypto market cheers"}}}
	h := newTestHarvester(Options{}, good, flaky)

	_, err := h.Harvest(context.Background(), "BTC")
	require.NoError(t, err)
	assert.NotContains(t, h.SourceHealth(), "flaky")

	flaky.err = nil
	flaky.items = []dto.RawItem{{Content: "ETH crypto market rally"}}
	_, err = h.Harvest(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"good": true, "flaky": true}, h.SourceHealth())
	assert.Empty(t, h.DegradedSources())
}

func TestHarvest_AllSourcesFail(t *testing.T) {
	h := newTestHarvester(Options{},
		&fakeSource{id: "a", err: errors.New("timeout")},
		&fakeSource{id: "b"},
	)
	_, err := h.Harvest(context.Background(), "BTC")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourceData)
}

func TestHarvest_NoActiveSources(t *testing.T) {
	src := &fakeSource{id: "a", items: []dto.RawItem{{Content: "crypto"}}}
	h := newTestHarvester(Options{}, src)
	require.NoError(t, h.SetActive("a", false))

	_, err := h.Harvest(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSourceData)
	assert.Equal(t, int32(0), src.calls.Load())
	assert.ErrorIs(t, h.SetActive("missing", true), ErrUnknownSource)
}

func TestHarvest_AllItemsBelowFloor(t *testing.T) {
	h := newTestHarvester(Options{}, &fakeSource{id: "a", items: []dto.RawItem{{Content: "gm"}, {Content: "   "}}})
	items, err := h.Harvest(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHarvest_CachesSourceResults(t *testing.T) {
	src := &fakeSource{id: "a", items: []dto.RawItem{{Content: "ETH staking yields climb, crypto market steady", Timestamp: time.Now()}}}
	h := newTestHarvester(Options{CacheTTL: time.Minute}, src)

	for i := 0; i < 3; i++ {
		_, err := h.Harvest(context.Background(), "ETH")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	_, err := h.Harvest(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestSources(t *testing.T) {
	h := newTestHarvester(Options{}, &fakeSource{id: "a"}, &fakeSource{id: "b"})
	require.NoError(t, h.SetActive("b", false))

	sources := h.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, "a", sources[0].ID)
	assert.True(t, sources[0].Active)
	assert.False(t, sources[1].Active)
}
