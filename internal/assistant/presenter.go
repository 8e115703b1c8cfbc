/*
Package assistant picks the single proactive suggestion shown by the city
assistant bubble.

Rules are evaluated against the decayed interest profile, first match wins:

 1. unfinished content: offer to resume the most recently read article
 2. strong interest: point at the browse view of the top interest
 3. any engagement: a generic welcome-back greeting
 4. otherwise: no message

The presenter re-evaluates on every navigation event it receives from a
NavigationBus. The floating trigger is independent of the message and only
waits out an initial delay.
*/
package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/profile"
	"github.com/khanglvm/city-hub/internal/tags"
	"github.com/rs/zerolog"
)

// Message kinds, in priority order.
const (
	KindResume   = "resume"
	KindInterest = "interest"
	KindGreeting = "greeting"
)

const (
	// DefaultInterestThreshold is the minimum top-interest score for an
	// interest message.
	DefaultInterestThreshold = 2.0

	// DefaultTriggerDelay hides the floating trigger after startup.
	DefaultTriggerDelay = 3 * time.Second
)

// State is the bubble visibility.
type State string

const (
	StateDormant State = "dormant"
	StateVisible State = "visible"
)

// Message is one suggestion.
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	Link string `json:"link"`

	// Tag is set for interest messages, ContentID for resume messages.
	Tag       string `json:"tag,omitempty"`
	ContentID string `json:"content_id,omitempty"`
}

// ProfileSource returns the current decayed profile.
type ProfileSource interface {
	Load(ctx context.Context) *profile.Profile
}

// Options tunes the Presenter.
type Options struct {
	InterestThreshold float64
	TriggerDelay      time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Presenter evaluates suggestion rules and tracks bubble state.
// It is safe for concurrent use.
type Presenter struct {
	source    ProfileSource
	threshold float64
	delay     time.Duration
	startedAt time.Time
	now       func() time.Time
	logger    zerolog.Logger

	mu      sync.Mutex
	state   State
	current *Message
}

// NewPresenter creates a dormant presenter. Zero options select the defaults.
func NewPresenter(source ProfileSource, opts Options) *Presenter {
	if opts.InterestThreshold <= 0 {
		opts.InterestThreshold = DefaultInterestThreshold
	}
	if opts.TriggerDelay <= 0 {
		opts.TriggerDelay = DefaultTriggerDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Presenter{
		source:    source,
		threshold: opts.InterestThreshold,
		delay:     opts.TriggerDelay,
		startedAt: opts.Now(),
		now:       opts.Now,
		logger:    logging.With().Str("component", "assistant").Logger(),
		state:     StateDormant,
	}
}

// Evaluate runs the rules against a fresh profile read. It does not change
// presenter state.
func (p *Presenter) Evaluate(ctx context.Context) (Message, bool) {
	if p.source == nil {
		return Message{}, false
	}
	return p.evaluate(p.source.Load(ctx))
}

func (p *Presenter) evaluate(prof *profile.Profile) (Message, bool) {
	if prof == nil {
		return Message{}, false
	}

	if id, content, ok := prof.LatestUnfinished(); ok {
		title := content.Title
		if title == "" {
			title = "your article"
		}
		return Message{
			Kind:      KindResume,
			Text:      fmt.Sprintf("You were %d%% through %q. Pick up where you left off?", int(content.Progress*100), title),
			Link:      "/news/" + id,
			ContentID: id,
		}, true
	}

	if tag, score, ok := prof.TopInterest(); ok && score >= p.threshold {
		return Message{
			Kind: KindInterest,
			Text: interestText(tag),
			Link: tags.BrowseLink(tag),
			Tag:  tag,
		}, true
	}

	if prof.Engaged() {
		return Message{
			Kind: KindGreeting,
			Text: "Welcome back! Here is what is new around the city.",
			Link: "/places?sort=newest",
		}, true
	}

	return Message{}, false
}

func interestText(tag string) string {
	label := tags.Label(tag)
	if tags.IsMarket(tag) {
		return fmt.Sprintf("New %s listings just landed in the marketplace. Take a look?", label)
	}
	return fmt.Sprintf("You seem to like %s. Want to see more?", label)
}

// OnNavigate re-evaluates the rules. A match makes the new message visible,
// no match returns the bubble to dormant.
func (p *Presenter) OnNavigate(ev NavigationEvent) {
	msg, ok := p.Evaluate(context.Background())

	p.mu.Lock()
	defer p.mu.Unlock()

	if !ok {
		p.current = nil
		p.state = StateDormant
	} else {
		p.current = &msg
		p.state = StateVisible
	}

	p.logger.Debug().
		Str("path", ev.Path).
		Str("state", string(p.state)).
		Str("kind", msg.Kind).
		Msg("assistant re-evaluated")
}

// Attach subscribes the presenter to bus and returns the unsubscribe func.
func (p *Presenter) Attach(bus *NavigationBus) func() {
	return bus.Subscribe(p.OnNavigate)
}

// Dismiss hides the bubble. The message is kept for Toggle.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateDormant
}

// Toggle flips visibility of the current message without re-evaluating.
// With no message the bubble stays dormant. It returns the new state.
func (p *Presenter) Toggle() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.current == nil:
		p.state = StateDormant
	case p.state == StateVisible:
		p.state = StateDormant
	default:
		p.state = StateVisible
	}
	return p.state
}

// State returns the bubble state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the last evaluated message, if any.
func (p *Presenter) Current() (Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Message{}, false
	}
	return *p.current, true
}

// TriggerReady reports whether the floating trigger is interactable at now.
func (p *Presenter) TriggerReady(now time.Time) bool {
	return !now.Before(p.startedAt.Add(p.delay))
}
