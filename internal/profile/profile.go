/*
Package profile implements the client-local interest profile.

A Profile is a small JSON document kept under one fixed key in a local
Backend. It records per-tag interest scores that decay lazily on every read,
a bounded list of recently viewed places, partially read content, the last
navigation state and derived persona archetypes.

Store handles persistence and decay; Tracker turns user actions into
profile mutations.
*/
package profile

import (
	"sort"
	"time"
)

// SchemaVersion is the current profile document version.
const SchemaVersion = 1

// InterestRecord is the score kept for one tag.
type InterestRecord struct {
	Score       float64   `json:"score"`
	LastVisited time.Time `json:"lastVisited"`
	Hits        int       `json:"hits"`

	// DecayedAt is the instant decay has been applied up to. Decay moves it
	// forward in whole days, so repeated reads within a day are stable.
	DecayedAt time.Time `json:"decayedAt,omitempty"`
}

// UnfinishedContent is a partially consumed article.
type UnfinishedContent struct {
	Progress  float64   `json:"progress"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// NavigationState is where the user last was, for resuming a session.
type NavigationState struct {
	Path           string            `json:"path"`
	Category       string            `json:"category,omitempty"`
	Filters        map[string]string `json:"filters,omitempty"`
	ScrollPosition float64           `json:"scrollPosition"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Profile is the persisted interest document.
type Profile struct {
	Version             int                          `json:"version"`
	Interests           map[string]InterestRecord    `json:"interests"`
	ViewedPlaceIDs      []string                     `json:"viewedPlaceIds"`
	UnfinishedContent   map[string]UnfinishedContent `json:"unfinishedContent"`
	LastState           *NavigationState             `json:"lastState,omitempty"`
	VisitCount          int                          `json:"visitCount"`
	Archetypes          []string                     `json:"archetypes"`
	LastActionTimestamp time.Time                    `json:"lastActionTimestamp,omitempty"`
}

// New returns an empty profile.
func New() *Profile {
	p := &Profile{}
	p.normalize()
	return p
}

// normalize fills schema defaults for fields missing from older documents.
func (p *Profile) normalize() {
	if p.Version == 0 {
		p.Version = SchemaVersion
	}
	if p.Interests == nil {
		p.Interests = make(map[string]InterestRecord)
	}
	if p.ViewedPlaceIDs == nil {
		p.ViewedPlaceIDs = []string{}
	}
	if p.UnfinishedContent == nil {
		p.UnfinishedContent = make(map[string]UnfinishedContent)
	}
	if p.Archetypes == nil {
		p.Archetypes = []string{}
	}
	if p.VisitCount < 0 {
		p.VisitCount = 0
	}
}

// TopInterest returns the highest-scoring tag. Equal scores resolve to the
// lexicographically smallest tag.
func (p *Profile) TopInterest() (tag string, score float64, ok bool) {
	for t, rec := range p.Interests {
		if !ok || rec.Score > score || (rec.Score == score && t < tag) {
			tag, score, ok = t, rec.Score, true
		}
	}
	return tag, score, ok
}

// RankedInterests returns tags by descending score, ties by tag.
func (p *Profile) RankedInterests() []string {
	tags := make([]string, 0, len(p.Interests))
	for t := range p.Interests {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		si, sj := p.Interests[tags[i]].Score, p.Interests[tags[j]].Score
		if si != sj {
			return si > sj
		}
		return tags[i] < tags[j]
	})
	return tags
}

// LatestUnfinished returns the most recently touched unfinished content.
func (p *Profile) LatestUnfinished() (id string, c UnfinishedContent, ok bool) {
	for cid, entry := range p.UnfinishedContent {
		if !ok || entry.Timestamp.After(c.Timestamp) || (entry.Timestamp.Equal(c.Timestamp) && cid < id) {
			id, c, ok = cid, entry, true
		}
	}
	return id, c, ok
}

// Engaged reports whether the user has any history at all.
func (p *Profile) Engaged() bool {
	return len(p.ViewedPlaceIDs) > 0 || len(p.Interests) > 0
}
