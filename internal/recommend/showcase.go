package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/khanglvm/city-hub/internal/tags"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Category is a candidate showcase section.
type Category struct {
	// Name is the catalog category, e.g. "market_vehicles".
	Name string

	// Title overrides the humanised category name.
	Title string

	// TypeKey is the item attribute used to specialise the section.
	// Empty means the section is never specialised.
	TypeKey string
}

// ShowcaseOptions tunes the Showcase. Zero values select defaults.
type ShowcaseOptions struct {
	Categories      []Category
	TargetSections  int
	SampleSize      int
	ItemsPerSection int
	Concurrency     int
	CallTimeout     time.Duration
	Seed            int64
	Now             func() time.Time
}

func (o *ShowcaseOptions) applyDefaults() {
	if o.TargetSections <= 0 {
		o.TargetSections = 5
	}
	if o.SampleSize <= 0 {
		o.SampleSize = 20
	}
	if o.ItemsPerSection <= 0 {
		o.ItemsPerSection = 7
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Section is one merchandising row. Items is never empty.
type Section struct {
	Category string         `json:"category"`
	Title    string         `json:"title"`
	SubType  string         `json:"sub_type,omitempty"`
	Items    []storage.Item `json:"items"`
}

// Showcase builds merchandising sections from randomly chosen categories.
type Showcase struct {
	items    ItemFinder
	opts     ShowcaseOptions
	guard    *Guard
	shuffler *learning.Shuffler
	logger   zerolog.Logger
}

// NewShowcase creates a showcase composer over the catalog.
func NewShowcase(items ItemFinder, opts ShowcaseOptions) *Showcase {
	opts.applyDefaults()
	return &Showcase{
		items:    items,
		opts:     opts,
		guard:    NewGuard("showcase-data", opts.CallTimeout),
		shuffler: learning.NewShuffler(opts.Seed),
		logger:   logging.With().Str("component", "showcase").Logger(),
	}
}

// Compose returns up to TargetSections non-empty sections. Categories are
// tried in random order; a failing or empty category is skipped.
func (s *Showcase) Compose(ctx context.Context) []Section {
	sections := []Section{}
	if s.items == nil {
		metrics.RecordComposition("showcase", OutcomeFallback, 0)
		return sections
	}

	candidates := learning.ShuffleSlice(s.shuffler, s.opts.Categories)
	now := s.opts.Now()

	for start := 0; start < len(candidates) && len(sections) < s.opts.TargetSections; start += s.opts.Concurrency {
		if ctx.Err() != nil {
			break
		}

		end := min(start+s.opts.Concurrency, len(candidates))
		wave := candidates[start:end]
		results := make([]*Section, len(wave))

		var g errgroup.Group
		for i, cat := range wave {
			g.Go(func() error {
				sec, err := s.buildSection(ctx, cat, now)
				if err != nil {
					logging.Ctx(ctx).Warn().Err(err).Str("category", cat.Name).Msg("showcase category skipped")
					return nil
				}
				results[i] = sec
				return nil
			})
		}
		_ = g.Wait()

		for _, sec := range results {
			if sec == nil {
				continue
			}
			sections = append(sections, *sec)
			if len(sections) == s.opts.TargetSections {
				break
			}
		}
	}

	outcome := OutcomePersonalized
	if len(sections) == 0 {
		outcome = OutcomeFallback
	}
	metrics.RecordComposition("showcase", outcome, len(sections))
	s.logger.Debug().Int("sections", len(sections)).Msg("showcase composed")
	return sections
}

// buildSection returns nil without error when the category has nothing to show.
func (s *Showcase) buildSection(ctx context.Context, cat Category, now time.Time) (*Section, error) {
	base := storage.ItemFilter{
		Status:     storage.StatusActive,
		CategoryIn: []string{cat.Name},
		ActiveAt:   now,
	}

	sample, err := s.find(ctx, "showcase_sample", base, s.opts.SampleSize)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, nil
	}

	subType := ""
	if values := distinctAttribute(sample, cat.TypeKey); len(values) > 0 {
		subType = values[s.shuffler.Intn(len(values))]
	}

	final := base
	if subType != "" {
		final.AttributeEquals = map[string]string{cat.TypeKey: subType}
	}
	items, err := s.find(ctx, "showcase_items", final, s.opts.ItemsPerSection)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &Section{
		Category: cat.Name,
		Title:    sectionTitle(cat, subType),
		SubType:  subType,
		Items:    items,
	}, nil
}

func (s *Showcase) find(ctx context.Context, op string, filter storage.ItemFilter, limit int) ([]storage.Item, error) {
	return guardedCall(ctx, s.guard, op, func(ctx context.Context) ([]storage.Item, error) {
		return s.items.FindItems(ctx, filter, storage.OrderNewest, limit)
	})
}

// distinctAttribute returns the sorted distinct non-empty values of key.
func distinctAttribute(items []storage.Item, key string) []string {
	if key == "" {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, it := range items {
		v := it.Attributes[key]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func sectionTitle(cat Category, subType string) string {
	title := cat.Title
	if title == "" {
		title = tags.Label(cat.Name)
	}
	if subType == "" {
		return title
	}
	return fmt.Sprintf("%s: %s", title, tags.Label(subType))
}
