package core

import "testing"

func TestSubscribeIdempotent(t *testing.T) {
	tr := NewSubscriberTracker()
	tr.Subscribe("m1", "c1")
	tr.Subscribe("m1", "c1")
	tr.Subscribe("m1", "c2")
	if got := len(tr.Subscribers("m1")); got != 2 {
		t.Fatalf("subscribers = %d, want 2", got)
	}
}

func TestUnsubscribeDropsEmptySet(t *testing.T) {
	tr := NewSubscriberTracker().(*subscriberTracker)
	tr.Subscribe("m1", "c1")
	tr.Unsubscribe("m1", "c1")

	if got := len(tr.Subscribers("m1")); got != 0 {
		t.Fatalf("subscribers = %d, want 0", got)
	}
	tr.mu.RLock()
	_, stillThere := tr.rooms["m1"]
	tr.mu.RUnlock()
	if stillThere {
		t.Error("empty subscriber set was not dropped")
	}
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	tr := NewSubscriberTracker()
	tr.Unsubscribe("nowhere", "c1") // must not panic
	tr.Subscribe("m1", "c1")
	tr.Unsubscribe("m1", "ghost")
	if got := len(tr.Subscribers("m1")); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}
}

func TestSubscribersAreScopedPerMeeting(t *testing.T) {
	tr := NewSubscriberTracker()
	tr.Subscribe("m1", "c1")
	tr.Subscribe("m2", "c2")
	for _, id := range tr.Subscribers("m1") {
		if id == "c2" {
			t.Error("subscriber leaked across meetings")
		}
	}
}
