package utils

import (
	"sync"
	"time"
)

// Event is a change notification scoped to one unit. Consumers (the board
// websocket, the follow-up worker's listeners) refresh only what the event
// names instead of invalidating everything.
type Event struct {
	UnitID   uint      `json:"unit_id"`
	Entity   string    `json:"entity"` // lead, activity, enrollment, unit
	EntityID uint      `json:"entity_id"`
	Action   string    `json:"action"` // created, updated, deactivated, followup_due
	At       time.Time `json:"at"`
}

// EventHub fans events out to per-unit subscribers. Sends never block: a
// subscriber that cannot keep up drops events rather than stalling writers.
type EventHub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan Event]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[uint]map[chan Event]struct{}),
	}
}

// Subscribe returns a channel of events for the unit and a cancel func that
// removes the subscription and closes the channel.
func (h *EventHub) Subscribe(unitID uint) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.subs[unitID] == nil {
		h.subs[unitID] = make(map[chan Event]struct{})
	}
	h.subs[unitID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[unitID]; ok {
			if _, still := set[ch]; still {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, unitID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its unit.
func (h *EventHub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[evt.UnitID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
