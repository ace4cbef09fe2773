package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/warband/internal/social"
)

// EventKind names a host notification or a campaign outcome.
type EventKind string

// Host events, published by whatever drives the campaign.
const (
	EventPartyCreated      EventKind = "party_created"
	EventSettlementEntered EventKind = "settlement_entered"
	EventSettlementLeft    EventKind = "settlement_left"
	EventPartySanitize     EventKind = "party_sanitize"
)

// Outcome events, published by the campaign.
const (
	EventCampaignStarted    EventKind = "campaign_started"
	EventCampaignEnded      EventKind = "campaign_ended"
	EventPartyConverted     EventKind = "party_converted"
	EventVolunteersSwapped  EventKind = "volunteers_swapped"
	EventVolunteersRestored EventKind = "volunteers_restored"
	EventRosterSanitized    EventKind = "roster_sanitized"
	EventSaved              EventKind = "saved"
	EventLoaded             EventKind = "loaded"
)

// Event is a notable occurrence in the campaign.
type Event struct {
	Kind        EventKind
	Party       *social.Party
	Settlement  *social.Settlement
	Count       int
	Description string
}

// Handler receives published events.
type Handler func(Event)

const maxRecent = 1000

// Bus dispatches events synchronously to subscribers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
	all      []Handler
	recent   []Event
}

// NewBus returns a bus without subscribers.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventKind][]Handler)}
}

// Subscribe registers h for one event kind.
func (b *Bus) Subscribe(kind EventKind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish records e and calls its subscribers. Handlers may publish.
// Publishing on a nil bus does nothing.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.recent = append(b.recent, e)
	if len(b.recent) > maxRecent {
		b.recent = b.recent[len(b.recent)-maxRecent:]
	}
	hs := make([]Handler, 0, len(b.handlers[e.Kind])+len(b.all))
	hs = append(hs, b.handlers[e.Kind]...)
	hs = append(hs, b.all...)
	b.mu.Unlock()

	slog.Debug("event", "kind", e.Kind, "count", e.Count, "description", e.Description)
	for _, h := range hs {
		h(e)
	}
}

// Recent returns up to the last n recorded events, oldest first.
func (b *Bus) Recent(n int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start := max(len(b.recent)-n, 0)
	out := make([]Event, len(b.recent)-start)
	copy(out, b.recent[start:])
	return out
}
