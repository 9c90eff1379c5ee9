package boost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	mem "github.com/TheInsomnolent/slayer-boosting/adapters/memory"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
	"github.com/TheInsomnolent/slayer-boosting/integrations/webhook"
	"github.com/TheInsomnolent/slayer-boosting/realtime"
)

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	_, ch := hub.Subscribe(8)
	svc := New(
		WithRealtime(hub),
		WithStorage(mem.New()),
		WithDispatchMode(engine.DispatchSync),
	)

	snap, err := svc.StartSession(context.Background(), "alice", core.Counters{Streak: 9})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if snap.Evaluation.NextMaster != core.MasterDuradel {
		t.Fatalf("unexpected master %s", snap.Evaluation.NextMaster)
	}

	// realtime bridge should receive every event
	ev := <-ch
	if ev.Player != "alice" || ev.Type != core.EventSessionStarted {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := len(ch); got != 2 {
		t.Fatalf("expected evaluation and milestone events, got %d", got)
	}
}

func TestInMemoryFallback(t *testing.T) {
	svc := New()
	defer svc.Close()

	s := core.DefaultSettings()
	s.DefaultMaster = core.MasterKonar
	if _, err := svc.UpdateSettings(context.Background(), "bob", s); err != nil {
		t.Fatalf("fallback update settings: %v", err)
	}
	got, err := svc.Settings(context.Background(), "bob")
	if err != nil {
		t.Fatalf("fallback settings: %v", err)
	}
	if got.DefaultMaster != core.MasterKonar {
		t.Fatalf("expected konar, got %s", got.DefaultMaster)
	}
}

func TestWithDefaults(t *testing.T) {
	s := core.DefaultSettings()
	s.DefaultMaster = core.MasterNieve
	svc := New(WithDispatchMode(engine.DispatchSync), WithDefaults(s))
	snap, err := svc.StartSession(context.Background(), "carol", core.Counters{Streak: 1})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if snap.Evaluation.NextMaster != core.MasterNieve {
		t.Fatalf("expected nieve default, got %s", snap.Evaluation.NextMaster)
	}
}

func TestWithWebhookForwardsMilestones(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	svc := New(WithDispatchMode(engine.DispatchAsync), WithWebhook(webhook.New([]string{srv.URL})))
	if _, err := svc.StartSession(context.Background(), "dave", core.Counters{Streak: 49}); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := svc.UpdateCounters(context.Background(), "dave", core.Counters{Streak: 50}); err != nil {
		t.Fatalf("update counters: %v", err)
	}
	svc.Close()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected exactly one milestone post, got %d", got)
	}
}
