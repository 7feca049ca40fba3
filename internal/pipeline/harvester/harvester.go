package harvester

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/utils"

	"github.com/patrickmn/go-cache"
)

var (
	// ErrNoSourceData means every active source failed or returned nothing.
	ErrNoSourceData  = errors.New("no data available from any source")
	ErrUnknownSource = errors.New("unknown source")
)

const DefaultRelevanceFloor = 0.3

// Options tunes a Harvester.
type Options struct {
	RelevanceFloor float64
	CacheTTL       time.Duration
	MaxConcurrent  int
}

type registeredSource struct {
	source Source
	active bool
}

// Harvester collects candidate texts from its registered sources and ranks
// them by relevance.
type Harvester struct {
	logger  *logger.Logger
	scorer  *analyzer.Scorer
	opts    Options
	cache   *cache.Cache
	now     func() time.Time
	mu      sync.RWMutex
	sources  []*registeredSource
	health   map[string]bool
	degraded map[string]struct{}
}

func New(log *logger.Logger, scorer *analyzer.Scorer, opts Options) *Harvester {
	if opts.RelevanceFloor <= 0 {
		opts.RelevanceFloor = DefaultRelevanceFloor
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	h := &Harvester{
		logger: log,
		scorer: scorer,
		opts:   opts,
		now:      time.Now,
		health:   map[string]bool{},
		degraded: map[string]struct{}{},
	}
	if opts.CacheTTL > 0 {
		h.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return h
}

// Register adds a source. Registering an existing id replaces it.
func (h *Harvester) Register(src Source, active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := src.Info().ID
	for _, rs := range h.sources {
		if rs.source.Info().ID == id {
			rs.source, rs.active = src, active
			return
		}
	}
	h.sources = append(h.sources, &registeredSource{source: src, active: active})
}

// SetActive toggles a registered source.
func (h *Harvester) SetActive(id string, active bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rs := range h.sources {
		if rs.source.Info().ID == id {
			rs.active = active
			if !active {
				delete(h.health, id)
				delete(h.degraded, id)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSource, id)
}

// Sources lists every registered source in registration order.
func (h *Harvester) Sources() []dto.DataSource {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]dto.DataSource, 0, len(h.sources))
	for _, rs := range h.sources {
		info := rs.source.Info()
		info.Active = rs.active
		out = append(out, info)
	}
	return out
}

// SourceHealth lists the active sources whose latest fetch succeeded. A
// source that failed, or was never fetched, is absent.
func (h *Harvester) SourceHealth() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]bool, len(h.health))
	for id, ok := range h.health {
		out[id] = ok
	}
	return out
}

func (h *Harvester) activeSources() []Source {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Source
	for _, rs := range h.sources {
		if rs.active {
			out = append(out, rs.source)
		}
	}
	return out
}

type fetchResult struct {
	items []dto.RawItem
	err   error
}

// Harvest fetches all active sources concurrently and returns the items
// scoring above the relevance floor, most relevant first. A failing source is
// skipped; the call fails only when no source produced any data.
func (h *Harvester) Harvest(ctx context.Context, symbol string) ([]dto.HarvestedItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	sources := h.activeSources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no active sources", ErrNoSourceData)
	}

	results := make([]fetchResult, len(sources))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, h.opts.MaxConcurrent)
	for i, src := range sources {
		i, src := i, src
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			items, err := h.fetchSource(ctx, src, symbol)
			results[i] = fetchResult{items: items, err: err}
		})
	}
	wg.Wait()

	var (
		harvested  []dto.HarvestedItem
		sourceErrs []error
		rawCount   int
		seen       = map[string]struct{}{}
	)
	for i, src := range sources {
		id := src.Info().ID
		res := results[i]
		h.setHealth(id, res.err == nil)
		if res.err != nil {
			h.logger.WarnContext(ctx, "Source fetch failed, skipping", logger.StringField("source_id", id), logger.ErrorField(res.err))
			sourceErrs = append(sourceErrs, fmt.Errorf("%s: %w", id, res.err))
			continue
		}
		rawCount += len(res.items)
		for _, raw := range res.items {
			item, ok := h.buildItem(ctx, id, raw, symbol)
			if !ok {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			harvested = append(harvested, item)
		}
	}

	if rawCount == 0 {
		if len(sourceErrs) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoSourceData, errors.Join(sourceErrs...))
		}
		return nil, ErrNoSourceData
	}

	sort.SliceStable(harvested, func(i, j int) bool {
		return harvested[i].Relevance > harvested[j].Relevance
	})

	h.logger.InfoContext(ctx, "Harvest completed",
		logger.StringField("symbol", symbol),
		logger.IntField("sources", len(sources)),
		logger.IntField("failed_sources", len(sourceErrs)),
		logger.IntField("raw_items", rawCount),
		logger.IntField("retained_items", len(harvested)),
	)
	return harvested, nil
}

// DegradedSources returns the ids of sources whose latest fetch failed.
func (h *Harvester) DegradedSources() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.degraded))
	for id := range h.degraded {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (h *Harvester) setHealth(id string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ok {
		h.health[id] = true
		delete(h.degraded, id)
		return
	}
	delete(h.health, id)
	h.degraded[id] = struct{}{}
}

func (h *Harvester) fetchSource(ctx context.Context, src Source, symbol string) (items []dto.RawItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()

	key := src.Info().ID + "|" + symbol
	if h.cache != nil {
		if cached, ok := h.cache.Get(key); ok {
			return cached.([]dto.RawItem), nil
		}
	}
	items, err = src.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.SetDefault(key, items)
	}
	return items, nil
}

func (h *Harvester) buildItem(ctx context.Context, sourceID string, raw dto.RawItem, symbol string) (dto.HarvestedItem, bool) {
	content := utils.SafeText(raw.Content)
	if content == "" {
		h.logger.DebugContext(ctx, "Skipping empty item", logger.StringField("source_id", sourceID))
		return dto.HarvestedItem{}, false
	}

	relevance := Relevance(content, raw.URL, symbol)
	if relevance <= h.opts.RelevanceFloor {
		return dto.HarvestedItem{}, false
	}

	ts := raw.Timestamp
	if ts.IsZero() {
		ts = h.now()
	}

	symbols := []string{}
	for _, e := range h.scorer.ExtractEntities(content) {
		symbols = append(symbols, e.Symbol)
	}

	hash := md5.Sum([]byte(sourceID + "|" + content))
	return dto.HarvestedItem{
		ID:        hex.EncodeToString(hash[:]),
		SourceID:  sourceID,
		Content:   content,
		URL:       raw.URL,
		Timestamp: ts,
		Relevance: relevance,
		Symbols:   symbols,
	}, true
}
