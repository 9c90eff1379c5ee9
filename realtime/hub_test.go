package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)

	ev := core.NewSessionStarted("bob", "s1", core.Counters{Streak: 4})
	h.Broadcast(context.Background(), ev)

	received := <-ch
	if received.Player != "bob" || received.Type != core.EventSessionStarted {
		t.Fatalf("unexpected event: %+v", received)
	}

	h.Unsubscribe(id)
	_, ok := <-ch
	if ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Subscribers())
	}
}

func TestHubPlayerFilter(t *testing.T) {
	h := NewHub()
	_, alice := h.SubscribePlayer(4, "alice")
	_, all := h.Subscribe(4)

	h.Broadcast(context.Background(), core.NewSessionEnded("bob", "s1"))
	h.Broadcast(context.Background(), core.NewSessionEnded("alice", "s2"))

	if got := len(alice); got != 1 {
		t.Fatalf("filtered subscriber got %d events", got)
	}
	if ev := <-alice; ev.Player != "alice" {
		t.Fatalf("unexpected player %s", ev.Player)
	}
	if got := len(all); got != 2 {
		t.Fatalf("unfiltered subscriber got %d events", got)
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe(1)
	h.Broadcast(context.Background(), core.NewSettingsChanged("a"))
	h.Broadcast(context.Background(), core.NewSettingsChanged("a"))
	if len(ch) != 1 {
		t.Fatalf("expected buffered event only, got %d", len(ch))
	}
}

func TestMarshalJSON(t *testing.T) {
	ev := core.NewEvaluationUpdated(core.EventMilestoneActive, "alice", "s1", 49, core.Evaluation{
		NextTask: 50, Milestone: true, MilestoneLabel: "50th", NextMaster: core.MasterKonar, NextTaskPoints: 270,
	})
	b := MarshalJSON(ev)
	var out core.Event
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Master != core.MasterKonar || out.Label != "50th" || out.TaskPoints != 270 {
		t.Fatalf("unexpected event: %+v", out)
	}
}
