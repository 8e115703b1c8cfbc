package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
	"github.com/khanglvm/city-hub/internal/storage"
)

// ItemFinder loads items from storage.
type ItemFinder interface {
	FindItems(ctx context.Context, filter storage.ItemFilter, order storage.Order, limit int) ([]storage.Item, error)
}

// EventRecorder receives search events. learning.Tracker satisfies it.
type EventRecorder interface {
	Track(event learning.Event)
}

// Catalog is the user-facing search over indexed items.
type Catalog struct {
	index    *Indexer
	items    ItemFinder
	recorder EventRecorder
	now      func() time.Time
}

// NewCatalog creates a catalog search. recorder may be nil.
func NewCatalog(index *Indexer, items ItemFinder, recorder EventRecorder) *Catalog {
	return &Catalog{index: index, items: items, recorder: recorder, now: time.Now}
}

// Search returns active items matching text in relevance order. When userID
// is set the query is recorded as a search event, even with no results.
func (c *Catalog) Search(ctx context.Context, userID, text string, limit int) ([]storage.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []storage.Item{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	if userID != "" && c.recorder != nil {
		c.recorder.Track(learning.NewSearchEvent(userID, text))
	}

	start := time.Now()
	// Over-fetch: some hits may be inactive or expired by now
	hits, err := c.index.Search(text, limit*2)
	metrics.RecordDataCall("search_index", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []storage.Item{}, nil
	}

	items, err := c.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}

	logging.Ctx(ctx).Debug().
		Str("query", text).
		Int("hits", len(hits)).
		Int("results", len(items)).
		Msg("catalog search")
	return items, nil
}

// hydrate loads active items for hits, preserving hit order.
func (c *Catalog) hydrate(ctx context.Context, hits []Hit) ([]storage.Item, error) {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	found, err := c.items.FindItems(ctx, storage.ItemFilter{
		Status:   storage.StatusActive,
		ActiveAt: c.now(),
		IDIn:     ids,
	}, storage.OrderNewest, len(ids))
	if err != nil {
		return nil, fmt.Errorf("hydrate search hits: %w", err)
	}

	byID := make(map[string]storage.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}

	items := make([]storage.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// Reindex indexes every stored item and returns how many were indexed.
func (c *Catalog) Reindex(ctx context.Context) (int, error) {
	items, err := c.items.FindItems(ctx, storage.ItemFilter{}, storage.OrderOldest, 0)
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}
	if err := c.index.IndexItems(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Index returns the underlying index.
func (c *Catalog) Index() *Indexer {
	return c.index
}
