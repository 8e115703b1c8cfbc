/*
Package storage provides data models for the catalog and the user event log.

Items are marketplace listings and directory places; user events are the
server-side record of views, contacts, favorites and searches that the
recommendation composer scores.
*/
package storage

import "time"

// Item statuses.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusArchived = "archived"
)

// Item is a catalog entry: a place, a marketplace listing or a news post.
type Item struct {
	ID          string `json:"id" validate:"required"`
	OwnerID     string `json:"owner_id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`

	// Category is the tag this item is browsed under, e.g. "restaurants"
	// or "market_vehicles".
	Category string `json:"category" validate:"required"`

	// Attributes holds free-form properties such as vehicle_type.
	Attributes map[string]string `json:"attributes,omitempty"`

	Status    string     `json:"status" validate:"omitempty,oneof=active pending archived"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the item is listed and unexpired at t.
func (i Item) Active(t time.Time) bool {
	if i.Status != StatusActive {
		return false
	}
	return i.ExpiresAt == nil || i.ExpiresAt.After(t)
}

// UserEvent is one row of the server-side event log.
type UserEvent struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`

	// Category is set when the event concerns a categorised entity.
	Category string `json:"category,omitempty"`
	EntityID string `json:"entity_id,omitempty"`

	// Metadata carries event-specific values; search events store the raw
	// query under "query".
	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EventQuery selects events for one user, newest first.
type EventQuery struct {
	UserID string
	Since  time.Time

	// Types restricts event types; empty means all.
	Types []string

	// Limit caps the row count; zero means no limit.
	Limit int
}

// ItemFilter narrows FindItems. Zero-valued fields do not filter.
//
// CategoryIn and TextContains together form a single OR-ed interest clause
// (category in the set, or title/description containing any term). All other
// fields are AND-ed.
type ItemFilter struct {
	Status       string
	CategoryIn   []string
	TextContains []string

	// IDIn restricts to the given ids. A non-nil empty slice matches nothing.
	IDIn    []string
	IDNotIn []string

	OwnerNot        string
	AttributeEquals map[string]string

	// ActiveAt excludes items that expired at or before this instant.
	ActiveAt time.Time
}

// Order is the sort order for FindItems.
type Order int

const (
	// OrderNewest sorts by creation time descending.
	OrderNewest Order = iota
	// OrderOldest sorts by creation time ascending.
	OrderOldest
)

// Stats summarises storage contents.
type Stats struct {
	Items       int `json:"items"`
	ActiveItems int `json:"active_items"`
	Events      int `json:"events"`
	Users       int `json:"users"`
}
