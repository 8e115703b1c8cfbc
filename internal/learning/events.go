/*
Package learning implements server-side event tracking and interest scoring.

This package provides background, fire-and-forget recording of user events
(views, contacts, favorites, searches) into the event log, the weighted
category scoring that turns a user's recent events into a recommendation
context, and the uniform shuffle used to randomise result order.
*/
package learning

import (
	"time"

	"github.com/khanglvm/city-hub/internal/storage"
)

// Event types understood by the scorer. Any other type is accepted and
// weighted as DefaultWeight.
const (
	EventView     = "view"
	EventContact  = "contact"
	EventFavorite = "favorite"
	EventSearch   = "search"
	EventShare    = "share"

	// EventInterest is a mirrored profile interest with no stronger signal.
	EventInterest = "interest"
)

// MetaQuery is the metadata key holding a search event's raw query.
const MetaQuery = "query"

// DefaultWeight applies to event types missing from the weight table.
const DefaultWeight = 1.0

// Event represents a user action destined for the event log.
type Event struct {
	// UserID identifies the acting user. Events without one are not logged.
	UserID string

	// Type is the event type, e.g. EventView.
	Type string

	// Category is the tag of the entity acted on, if any.
	Category string

	// EntityID is the id of the entity acted on, if any.
	EntityID string

	// Metadata carries type-specific values (MetaQuery for searches).
	Metadata map[string]string

	// Timestamp is when the action happened.
	Timestamp time.Time
}

// Payload is the optional part of an event passed to Tracker.Append.
type Payload struct {
	Category string
	EntityID string
	Metadata map[string]string
}

// NewEvent creates an event stamped with the current time.
func NewEvent(userID, eventType string, payload Payload) Event {
	return Event{
		UserID:    userID,
		Type:      eventType,
		Category:  payload.Category,
		EntityID:  payload.EntityID,
		Metadata:  payload.Metadata,
		Timestamp: time.Now(),
	}
}

// NewSearchEvent creates a search event carrying the raw query.
func NewSearchEvent(userID, query string) Event {
	return NewEvent(userID, EventSearch, Payload{Metadata: map[string]string{MetaQuery: query}})
}

// ToStorage converts learning event to storage model.
func (e Event) ToStorage() storage.UserEvent {
	return storage.UserEvent{
		UserID:    e.UserID,
		EventType: e.Type,
		Category:  e.Category,
		EntityID:  e.EntityID,
		Metadata:  e.Metadata,
		CreatedAt: e.Timestamp,
	}
}

// DefaultWeights returns the stock per-type category weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		EventContact:  5,
		EventFavorite: 5,
		EventView:     2,
	}
}

// Weight returns the weight of eventType, or DefaultWeight when absent.
func Weight(weights map[string]float64, eventType string) float64 {
	if w, ok := weights[eventType]; ok {
		return w
	}
	return DefaultWeight
}
