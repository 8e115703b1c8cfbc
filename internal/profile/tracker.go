package profile

import (
	"context"
	"math"
	"sync"

	"github.com/khanglvm/city-hub/internal/learning"
)

const (
	// DefaultMaxViewedPlaces bounds the viewed-places ring buffer.
	DefaultMaxViewedPlaces = 20

	// placeViewWeight is the interest added for a viewed place's category.
	placeViewWeight = 2.0

	// Progress below or at minProgress is not yet engagement; at or above
	// finishedProgress the content counts as read.
	minProgress      = 0.1
	finishedProgress = 0.9
)

// EventSink receives mirrored events for the server-side event log.
type EventSink interface {
	Append(userID, eventType string, payload learning.Payload)
}

// TrackerOptions configures a Tracker. Zero values select defaults.
type TrackerOptions struct {
	MaxViewedPlaces int

	// Sink and UserID enable mirroring of tracked actions to the event log.
	Sink   EventSink
	UserID string
}

// Tracker converts user actions into profile mutations. Each operation is
// a load-modify-save cycle serialised by the tracker.
type Tracker struct {
	store     *Store
	maxViewed int
	sink      EventSink
	userID    string
	mu        sync.Mutex
}

// NewTracker creates a tracker over store.
func NewTracker(store *Store, opts TrackerOptions) *Tracker {
	t := &Tracker{
		store:     store,
		maxViewed: opts.MaxViewedPlaces,
		sink:      opts.Sink,
		userID:    opts.UserID,
	}
	if t.maxViewed <= 0 {
		t.maxViewed = DefaultMaxViewedPlaces
	}
	return t
}

// Store returns the underlying store.
func (t *Tracker) Store() *Store {
	return t.store
}

// Profile returns the current decayed profile.
func (t *Tracker) Profile(ctx context.Context) *Profile {
	return t.store.Load(ctx)
}

// TrackInterest adds weight (1 when not positive) to tag and recomputes
// archetypes. A mirrored event carries the strongest event type whose
// server-side weight the interest weight reaches, see mirrorType.
func (t *Tracker) TrackInterest(ctx context.Context, tag string, weight float64) {
	if tag == "" {
		return
	}

	t.mu.Lock()
	p := t.store.Load(ctx)
	t.addInterest(p, tag, weight)
	t.store.Save(ctx, p)
	t.mu.Unlock()

	t.mirror(mirrorType(weight), learning.Payload{Category: tag})
}

// TrackPlaceView moves id to the front of the viewed-places list and, when
// categoryTag is set, adds interest in it.
func (t *Tracker) TrackPlaceView(ctx context.Context, id, categoryTag string) {
	if id == "" {
		return
	}

	t.mu.Lock()
	p := t.store.Load(ctx)

	viewed := make([]string, 0, t.maxViewed)
	viewed = append(viewed, id)
	for _, existing := range p.ViewedPlaceIDs {
		if existing != id && len(viewed) < t.maxViewed {
			viewed = append(viewed, existing)
		}
	}
	p.ViewedPlaceIDs = viewed

	if categoryTag != "" {
		t.addInterest(p, categoryTag, placeViewWeight)
	}
	t.store.Save(ctx, p)
	t.mu.Unlock()

	t.mirror(learning.EventView, learning.Payload{Category: categoryTag, EntityID: id})
}

// TrackContentProgress records reading progress in [0,1]. Entries strictly
// between 0.1 and 0.9 are kept; reaching 0.9 removes the entry; lower
// progress is ignored.
func (t *Tracker) TrackContentProgress(ctx context.Context, id, title string, progress float64) {
	if id == "" || math.IsNaN(progress) || progress <= minProgress {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.store.Load(ctx)
	if progress >= finishedProgress {
		if _, ok := p.UnfinishedContent[id]; !ok {
			return
		}
		delete(p.UnfinishedContent, id)
	} else {
		p.UnfinishedContent[id] = UnfinishedContent{
			Progress:  progress,
			Title:     title,
			Timestamp: t.store.now(),
		}
	}
	t.store.Save(ctx, p)
}

// TrackVisit counts a site visit.
func (t *Tracker) TrackVisit(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.store.Load(ctx)
	p.VisitCount++
	t.store.Save(ctx, p)
}

// SaveState records the user's current location for later resumption.
func (t *Tracker) SaveState(ctx context.Context, state NavigationState) {
	if state.Path == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if state.Timestamp.IsZero() {
		state.Timestamp = t.store.now()
	}
	p := t.store.Load(ctx)
	p.LastState = &state
	t.store.Save(ctx, p)
}

// TopInterest returns the highest decayed interest.
func (t *Tracker) TopInterest(ctx context.Context) (tag string, score float64, ok bool) {
	return t.store.Load(ctx).TopInterest()
}

func (t *Tracker) addInterest(p *Profile, tag string, weight float64) {
	if weight <= 0 || math.IsNaN(weight) {
		weight = 1
	}
	now := t.store.now()

	rec := p.Interests[tag]
	rec.Score += weight
	rec.Hits++
	rec.LastVisited = now
	rec.DecayedAt = now
	p.Interests[tag] = rec

	t.store.deriveArchetypes(p)
}

func (t *Tracker) mirror(eventType string, payload learning.Payload) {
	if t.sink == nil || t.userID == "" {
		return
	}
	t.sink.Append(t.userID, eventType, payload)
}

// mirrorType maps an interest weight onto the event log's weight table:
// 5 or more reads as a favorite, 2 or more as a view, anything else as a
// plain interest.
func mirrorType(weight float64) string {
	weights := learning.DefaultWeights()
	switch {
	case weight >= weights[learning.EventFavorite]:
		return learning.EventFavorite
	case weight >= weights[learning.EventView]:
		return learning.EventView
	default:
		return learning.EventInterest
	}
}
