/*
Package cli implements the city-hub commands.

Every command loads the configuration (a missing file means defaults), then
opens only the components it needs through an app:

	storage   SQLite catalog and event log (storage.dbPath)
	tracker   background event writer over the event log
	catalog   bleve full-text index (storage.indexPath, in-memory when empty)
	profiles  client-local interest profile (storage.profileBackend)
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/assistant"
	"github.com/khanglvm/city-hub/internal/config"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/localstore"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/profile"
	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/khanglvm/city-hub/internal/search"
	"github.com/khanglvm/city-hub/internal/storage"
)

// configPath is set by the root --config flag. Empty means ~/.city-hub.json.
var configPath string

// loadConfig reads the configuration and applies its logging section.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	return cfg, nil
}

// app holds the components opened for one command run.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	tracker *learning.Tracker

	index   *search.Indexer
	backend localstore.Backend
}

// openApp loads the configuration and opens the catalog database.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store := storage.NewStorage(cfg.Storage.DBPath)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &app{
		cfg:     cfg,
		store:   store,
		tracker: learning.NewTracker(store),
	}, nil
}

// Close flushes pending events and releases everything opened.
func (a *app) Close() {
	a.tracker.Stop()
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close search index")
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close profile backend")
		}
	}
	if err := a.store.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close storage")
	}
}

// composer builds the recommendation composer from config.
func (a *app) composer() *recommend.Composer {
	rc := a.cfg.Recommend
	return recommend.NewComposer(a.store, a.store, recommend.Options{
		TargetCount:      rc.TargetCount,
		SpecializedLimit: rc.SpecializedLimit,
		EventLimit:       rc.EventLimit,
		Window:           rc.Window(),
		Context: learning.ContextOptions{
			Weights:        rc.EventWeights,
			TopCategories:  rc.TopCategories,
			TopSearchTerms: rc.TopSearchTerms,
			MinTermLength:  rc.MinTermLength,
		},
		CallTimeout: rc.CallTimeout(),
		Seed:        rc.Seed,
	})
}

// showcase builds the showcase composer from config.
func (a *app) showcase() *recommend.Showcase {
	sc := a.cfg.Showcase
	categories := make([]recommend.Category, 0, len(sc.Categories))
	for _, c := range sc.Categories {
		categories = append(categories, recommend.Category{
			Name:    c.Category,
			Title:   c.Title,
			TypeKey: c.TypeKey,
		})
	}

	return recommend.NewShowcase(a.store, recommend.ShowcaseOptions{
		Categories:      categories,
		TargetSections:  sc.TargetSections,
		SampleSize:      sc.SampleSize,
		ItemsPerSection: sc.ItemsPerSection,
		Concurrency:     sc.Concurrency,
		CallTimeout:     a.cfg.Recommend.CallTimeout(),
		Seed:            a.cfg.Recommend.Seed,
	})
}

// catalog opens the search index. An in-memory or empty index is filled
// from storage first.
func (a *app) catalog(ctx context.Context) (*search.Catalog, error) {
	if a.index == nil {
		index, err := search.NewIndexerWithPath(a.cfg.Storage.IndexPath)
		if err != nil {
			return nil, err
		}
		a.index = index
	}

	cat := search.NewCatalog(a.index, a.store, a.tracker)

	count, err := a.index.Count()
	if err != nil {
		return nil, err
	}
	if a.index.Path() == "" || count == 0 {
		n, err := cat.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build search index: %w", err)
		}
		logging.Debug().Int("items", n).Msg("search index built")
	}
	return cat, nil
}

// profiles opens the interest profile store on the configured backend.
func (a *app) profiles() (*profile.Store, error) {
	if a.backend == nil {
		backend, err := localstore.Open(a.cfg.Storage.ProfileBackend, a.cfg.Storage.ProfileDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open profile backend: %w", err)
		}
		a.backend = backend
	}

	return profile.NewStore(a.backend, profile.StoreOptions{
		Key:        a.cfg.Storage.ProfileKey,
		DecayRate:  a.cfg.Profile.DecayRate,
		EvictBelow: a.cfg.Profile.EvictBelow,

		Archetypes:         a.cfg.Profile.Archetypes,
		ArchetypeThreshold: a.cfg.Profile.ArchetypeThreshold,
	}), nil
}

// interestTracker wraps the profile store. A non-empty userID mirrors
// tracked actions into the event log.
func (a *app) interestTracker(userID string) (*profile.Tracker, error) {
	store, err := a.profiles()
	if err != nil {
		return nil, err
	}

	opts := profile.TrackerOptions{MaxViewedPlaces: a.cfg.Profile.MaxViewedPlaces}
	if userID != "" {
		opts.Sink = a.tracker
		opts.UserID = userID
	}
	return profile.NewTracker(store, opts), nil
}

// presenter builds the assistant over the profile store.
func (a *app) presenter() (*assistant.Presenter, error) {
	store, err := a.profiles()
	if err != nil {
		return nil, err
	}
	return assistant.NewPresenter(store, assistant.Options{
		InterestThreshold: a.cfg.Assistant.InterestThreshold,
		TriggerDelay:      a.cfg.Assistant.TriggerDelay(),
	}), nil
}

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printItems renders items one per line with their category and status.
func printItems(w io.Writer, items []storage.Item) {
	for i, it := range items {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, it.Title)
		fmt.Fprintf(w, "      %s · %s · %s\n", it.ID, it.Category, it.Status)
	}
}
