package learning

import (
	"context"
	"sync"
	"time"

	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/metrics"
	"github.com/khanglvm/city-hub/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond

	// flushTimeout bounds a single batch write.
	flushTimeout = 5 * time.Second
)

// Tracker writes user events to the event log in the background with
// non-blocking enqueues.
type Tracker struct {
	storage    storage.Storage
	eventQueue chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker creates a new event tracker with background processing.
func NewTracker(s storage.Storage) *Tracker {
	t := &Tracker{
		storage:    s,
		eventQueue: make(chan Event, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    true,
	}

	if s == nil {
		t.enabled = false
	} else if err := t.storage.Init(); err != nil {
		logging.Warn().Err(err).Msg("event log initialization failed, tracking disabled")
		t.enabled = false
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track records a user event (non-blocking).
// Events without a user id are ignored. If the queue is full, the event is
// dropped and a warning is logged.
func (t *Tracker) Track(event Event) {
	if !t.isEnabled() || event.UserID == "" || event.Type == "" {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case t.eventQueue <- event:
	default:
		metrics.EventsDropped.WithLabelValues("queue_full").Inc()
		logging.Warn().
			Str("user_id", event.UserID).
			Str("event_type", event.Type).
			Msg("event queue full, dropping event")
	}
}

// Append is the fire-and-forget form of Track.
func (t *Tracker) Append(userID, eventType string, payload Payload) {
	t.Track(NewEvent(userID, eventType, payload))
}

// Stop gracefully shuts down the tracker, flushing remaining events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = t.storage != nil
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tracker) isEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled && t.storage != nil
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is queued, then exit
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = make([]Event, 0, batchFlushSize)
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to storage in one transaction.
func (t *Tracker) flush(events []Event) {
	if len(events) == 0 || t.storage == nil {
		return
	}

	rows := make([]storage.UserEvent, len(events))
	for i, event := range events {
		rows[i] = event.ToStorage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := t.storage.AppendEvents(ctx, rows); err != nil {
		metrics.EventsDropped.WithLabelValues("write_error").Add(float64(len(rows)))
		logging.Warn().Err(err).Int("count", len(rows)).Msg("failed to record events")
		return
	}
	metrics.EventsTracked.Add(float64(len(rows)))
}

// GetEventQueueSize returns the current number of events in the queue.
// Useful for monitoring queue health.
func (t *Tracker) GetEventQueueSize() int {
	return len(t.eventQueue)
}
