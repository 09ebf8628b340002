package utils

import (
	"testing"
	"time"
)

func TestEventHubDeliversToUnitSubscribers(t *testing.T) {
	hub := NewEventHub()

	ch, cancel := hub.Subscribe(1)
	defer cancel()
	otherCh, otherCancel := hub.Subscribe(2)
	defer otherCancel()

	hub.Publish(Event{UnitID: 1, Entity: "lead", EntityID: 42, Action: "created"})

	select {
	case evt := <-ch:
		if evt.EntityID != 42 || evt.Action != "created" {
			t.Errorf("got event %+v", evt)
		}
		if evt.At.IsZero() {
			t.Error("publish did not stamp the event time")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}

	select {
	case evt := <-otherCh:
		t.Fatalf("unit 2 subscriber received unit 1 event: %+v", evt)
	default:
	}
}

func TestEventHubCancelClosesChannel(t *testing.T) {
	hub := NewEventHub()

	ch, cancel := hub.Subscribe(1)
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel still open after cancel")
	}

	// Cancel twice and publish after cancel: both must be harmless.
	cancel()
	hub.Publish(Event{UnitID: 1, Entity: "lead", EntityID: 1, Action: "updated"})
}

func TestEventHubPublishNeverBlocks(t *testing.T) {
	hub := NewEventHub()

	_, cancel := hub.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Far more events than the subscriber buffer holds; nobody reads.
		for i := 0; i < 100; i++ {
			hub.Publish(Event{UnitID: 1, Entity: "activity", EntityID: uint(i), Action: "created"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestEventHubMultipleSubscribers(t *testing.T) {
	hub := NewEventHub()

	first, cancelFirst := hub.Subscribe(1)
	second, cancelSecond := hub.Subscribe(1)
	defer cancelFirst()
	defer cancelSecond()

	hub.Publish(Event{UnitID: 1, Entity: "unit", EntityID: 1, Action: "updated"})

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber missed the event", name)
		}
	}
}
