/*
Package recommend composes personalised item lists and merchandising
showcases from the catalog and the user event log.

Both composers are presentation enhancements: they never return errors.
Any failure, timeout or open circuit breaker yields an empty result, which
is logged and counted.
*/
package recommend

import (
	"context"
	"time"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/rs/zerolog"
)

// EventReader reads a user's recent events, newest first.
type EventReader interface {
	QueryEvents(ctx context.Context, q storage.EventQuery) ([]storage.UserEvent, error)
}

// ItemFinder queries the catalog.
type ItemFinder interface {
	FindItems(ctx context.Context, filter storage.ItemFilter, order storage.Order, limit int) ([]storage.Item, error)
}

// Composition outcomes recorded in metrics.
const (
	OutcomePersonalized = "personalized"
	OutcomeFallback     = "fallback"
	OutcomeAnonymous    = "anonymous"
	OutcomeError        = "error"
)

// Options tunes the Composer. Zero values select defaults.
type Options struct {
	TargetCount      int
	SpecializedLimit int
	EventLimit       int
	Window           time.Duration
	Context          learning.ContextOptions
	CallTimeout      time.Duration

	// Seed fixes the shuffle; zero seeds from the clock.
	Seed int64

	// Now overrides the clock (tests).
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.TargetCount <= 0 {
		o.TargetCount = 10
	}
	if o.SpecializedLimit < o.TargetCount {
		o.SpecializedLimit = o.TargetCount + o.TargetCount/2
	}
	if o.EventLimit <= 0 {
		o.EventLimit = 100
	}
	if o.Window <= 0 {
		o.Window = 30 * 24 * time.Hour
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Composer builds the personalised recommendation list.
// It is safe for concurrent use.
type Composer struct {
	events   EventReader
	items    ItemFinder
	opts     Options
	guard    *Guard
	shuffler *learning.Shuffler
	logger   zerolog.Logger
}

// NewComposer creates a composer over the event log and catalog.
func NewComposer(events EventReader, items ItemFinder, opts Options) *Composer {
	opts.applyDefaults()
	return &Composer{
		events:   events,
		items:    items,
		opts:     opts,
		guard:    NewGuard("recommend-data", opts.CallTimeout),
		shuffler: learning.NewShuffler(opts.Seed),
		logger:   logging.With().Str("component", "recommend").Logger(),
	}
}

// Recommend returns up to TargetCount distinct items in random order.
// An empty userID skips personalisation. It never fails: errors yield an
// empty list.
func (c *Composer) Recommend(ctx context.Context, userID string) []storage.Item {
	start := time.Now()

	items, outcome, err := c.compose(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("recommendation failed, returning empty list")
		metrics.RecordComposition("recommend", OutcomeError, 0)
		return []storage.Item{}
	}

	metrics.RecordComposition("recommend", outcome, len(items))
	c.logger.Debug().
		Str("user_id", userID).
		Str("outcome", outcome).
		Int("count", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations composed")
	return items
}

// Context reads the user's event window and summarises it.
// Without an event reader the context is empty.
func (c *Composer) Context(ctx context.Context, userID string) (learning.RecommendationContext, error) {
	if c.events == nil {
		return learning.RecommendationContext{}, nil
	}
	q := storage.EventQuery{
		UserID: userID,
		Since:  c.opts.Now().Add(-c.opts.Window),
		Limit:  c.opts.EventLimit,
	}
	events, err := guardedCall(ctx, c.guard, "query_events", func(ctx context.Context) ([]storage.UserEvent, error) {
		return c.events.QueryEvents(ctx, q)
	})
	if err != nil {
		return learning.RecommendationContext{}, err
	}
	return learning.BuildContext(events, c.opts.Context), nil
}

func (c *Composer) compose(ctx context.Context, userID string) ([]storage.Item, string, error) {
	if c.items == nil {
		return []storage.Item{}, OutcomeFallback, nil
	}

	now := c.opts.Now()
	target := c.opts.TargetCount
	outcome := OutcomeAnonymous

	var selected []storage.Item
	if userID != "" {
		outcome = OutcomeFallback

		rc, err := c.Context(ctx, userID)
		if err != nil {
			return nil, OutcomeError, err
		}

		if !rc.Empty() {
			filter := storage.ItemFilter{
				Status:       storage.StatusActive,
				ActiveAt:     now,
				OwnerNot:     userID,
				CategoryIn:   rc.TopCategories,
				TextContains: rc.TopSearchTerms,
			}
			selected, err = c.find(ctx, "find_specialized", filter, c.opts.SpecializedLimit)
			if err != nil {
				return nil, OutcomeError, err
			}
			if len(selected) > 0 {
				outcome = OutcomePersonalized
			}
		}
	}

	selected = dedupe(selected)
	if len(selected) < target {
		filter := storage.ItemFilter{
			Status:   storage.StatusActive,
			ActiveAt: now,
			OwnerNot: userID,
			IDNotIn:  itemIDs(selected),
		}
		fill, err := c.find(ctx, "find_fallback", filter, target-len(selected))
		if err != nil {
			return nil, OutcomeError, err
		}
		selected = dedupe(append(selected, fill...))
	}

	if len(selected) > target {
		selected = selected[:target]
	}
	return learning.ShuffleSlice(c.shuffler, selected), outcome, nil
}

func (c *Composer) find(ctx context.Context, op string, filter storage.ItemFilter, limit int) ([]storage.Item, error) {
	return guardedCall(ctx, c.guard, op, func(ctx context.Context) ([]storage.Item, error) {
		return c.items.FindItems(ctx, filter, storage.OrderNewest, limit)
	})
}

// dedupe keeps the first occurrence of each id.
func dedupe(items []storage.Item) []storage.Item {
	seen := make(map[string]bool, len(items))
	out := make([]storage.Item, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

func itemIDs(items []storage.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
