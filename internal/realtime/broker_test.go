package realtime

import (
	"testing"
	"time"
)

func TestPublishFanOut(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(Event{Type: TypePostCreated, Bot: "market", Slot: "morning", Status: "success"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != TypePostCreated || evt.Bot != "market" {
				t.Fatalf("unexpected event: %+v", evt)
			}
			if evt.ID == 0 {
				t.Fatal("expected event id to be assigned")
			}
			if evt.At.IsZero() {
				t.Fatal("expected event timestamp to be set")
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch, cancel := b.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic.
	b.Publish(Event{Type: TypeSlotStarted, Slot: "evening"})
}

func TestEventIDsMonotonic(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		b.Publish(Event{Type: TypeSlotFinished})
	}

	var last int64
	for i := 0; i < 3; i++ {
		evt := <-ch
		if evt.ID <= last {
			t.Fatalf("expected increasing ids, got %d after %d", evt.ID, last)
		}
		last = evt.ID
	}
}
