package profile

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
)

const (
	// DefaultKey is the storage key profiles live under.
	DefaultKey = "city-hub:profile"

	// DefaultDecayRate is the fraction of score lost per whole day.
	DefaultDecayRate = 0.05

	// DefaultEvictBelow is the score under which a tag is dropped.
	DefaultEvictBelow = 0.1

	day = 24 * time.Hour
)

// Backend is the client-local byte store a Store persists into. Read
// returns nil, nil for an absent key.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// StoreOptions configures a Store. Zero values select defaults.
type StoreOptions struct {
	Key        string
	DecayRate  float64
	EvictBelow float64

	// Archetypes maps persona labels to the tags feeding them;
	// ArchetypeThreshold is the summed score a persona must exceed.
	Archetypes         map[string][]string
	ArchetypeThreshold float64

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Store loads and saves the profile under a single key, applying decay on
// every load. Store never returns errors from Load or Save: an unusable
// backend degrades to an empty profile and dropped writes.
type Store struct {
	backend    Backend
	key        string
	decayRate  float64
	evictBelow float64
	archetypes map[string][]string
	threshold  float64
	now        func() time.Time
}

// NewStore creates a store over backend. A nil backend is allowed.
func NewStore(backend Backend, opts StoreOptions) *Store {
	s := &Store{
		backend:    backend,
		key:        opts.Key,
		decayRate:  opts.DecayRate,
		evictBelow: opts.EvictBelow,
		archetypes: opts.Archetypes,
		threshold:  opts.ArchetypeThreshold,
		now:        opts.Now,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.decayRate <= 0 || s.decayRate >= 1 {
		s.decayRate = DefaultDecayRate
	}
	if s.evictBelow <= 0 {
		s.evictBelow = DefaultEvictBelow
	}
	if s.archetypes == nil {
		s.archetypes = DefaultArchetypes()
	}
	if s.threshold <= 0 {
		s.threshold = DefaultArchetypeThreshold
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored profile with decay applied, or an empty profile
// when nothing usable is stored.
func (s *Store) Load(ctx context.Context) *Profile {
	if s.backend == nil {
		return New()
	}

	data, err := s.backend.Read(s.key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", s.key).Msg("profile read failed, using empty profile")
		return New()
	}
	if len(data) == 0 {
		return New()
	}

	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", s.key).Msg("profile unreadable, using empty profile")
		return New()
	}
	p.normalize()

	if evicted := s.decay(p, s.now()); evicted > 0 {
		metrics.InterestEvictions.Add(float64(evicted))
		logging.Ctx(ctx).Debug().Int("evicted", evicted).Msg("interest tags decayed out")
	}
	s.deriveArchetypes(p)
	return p
}

// Save stamps the profile and writes it. Failures are logged and dropped.
func (s *Store) Save(ctx context.Context, p *Profile) {
	if p == nil || s.backend == nil {
		return
	}
	p.normalize()
	p.LastActionTimestamp = s.now()

	data, err := json.Marshal(p)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("profile encode failed")
		return
	}
	if err := s.backend.Write(s.key, data); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", s.key).Msg("profile write failed")
	}
}

// Clear removes the stored profile.
func (s *Store) Clear(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	if d, ok := s.backend.(interface{ Delete(key string) error }); ok {
		return d.Delete(s.key)
	}
	data, err := json.Marshal(New())
	if err != nil {
		return err
	}
	return s.backend.Write(s.key, data)
}

// decay applies whole-day compounding decay to every tag and evicts tags
// that fall below the floor. It returns the number of evicted tags.
func (s *Store) decay(p *Profile, now time.Time) int {
	evicted := 0
	for tag, rec := range p.Interests {
		base := rec.DecayedAt
		if base.IsZero() {
			base = rec.LastVisited
		}
		if base.IsZero() {
			base = now
		}

		if days := int(now.Sub(base) / day); days >= 1 {
			rec.Score *= math.Pow(1-s.decayRate, float64(days))
			base = base.Add(time.Duration(days) * day)
		}
		rec.DecayedAt = base
		if rec.Score < 0 {
			rec.Score = 0
		}

		if rec.Score < s.evictBelow {
			delete(p.Interests, tag)
			evicted++
			continue
		}
		p.Interests[tag] = rec
	}
	return evicted
}

// deriveArchetypes recomputes p.Archetypes from its current scores.
func (s *Store) deriveArchetypes(p *Profile) {
	p.Archetypes = DeriveArchetypes(p.Interests, s.archetypes, s.threshold)
}
