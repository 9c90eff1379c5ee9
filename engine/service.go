package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// BoostService wires storage, the event bus and per-player trackers into one API.
type BoostService struct {
	storage  Storage
	bus      *EventBus
	log      *slog.Logger
	defaults core.Settings

	mu       sync.Mutex // guards trackers, which holds players in session
	trackers map[core.PlayerID]*Tracker
}

// NewBoostService builds the service. defaults are used for players without
// stored settings. A nil logger falls back to slog.Default().
func NewBoostService(storage Storage, bus *EventBus, logger *slog.Logger, defaults core.Settings) *BoostService {
	if storage == nil || bus == nil {
		panic("NewBoostService requires non-nil storage and bus")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoostService{
		storage:  storage,
		bus:      bus,
		log:      logger,
		defaults: defaults,
		trackers: make(map[core.PlayerID]*Tracker),
	}
}

// Subscribe convenience method.
func (s *BoostService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *BoostService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

func (s *BoostService) Close() { s.bus.Close() }

// tracker returns the cached tracker of a player in session, or a detached
// one built from stored settings that is never cached.
func (s *BoostService) tracker(ctx context.Context, player core.PlayerID) (*Tracker, error) {
	id, err := core.NormalizePlayerID(player)
	if err != nil {
		return nil, err
	}
	if t := s.cached(id); t != nil {
		return t, nil
	}
	settings, err := s.loadSettings(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewTracker(id, settings), nil
}

func (s *BoostService) cached(id core.PlayerID) *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackers[id]
}

func (s *BoostService) loadSettings(ctx context.Context, player core.PlayerID) (core.Settings, error) {
	settings, err := s.storage.LoadSettings(ctx, player)
	if errors.Is(err, core.ErrNoSettings) {
		return s.defaults, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings for %s: %w", player, err)
	}
	return settings, nil
}

// StartSession reads the login counters and evaluates the next task.
func (s *BoostService) StartSession(ctx context.Context, player core.PlayerID, c core.Counters) (Snapshot, error) {
	if err := c.Validate(); err != nil {
		return Snapshot{}, err
	}
	t, err := s.tracker(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	id := t.Snapshot().Player
	s.mu.Lock()
	if cur, ok := s.trackers[id]; ok {
		t = cur
	} else {
		s.trackers[id] = t
	}
	prev, next := t.Start(c)
	s.mu.Unlock()
	s.log.Info("session started",
		"player", next.Player,
		"session_id", next.SessionID,
		"streak", c.Streak,
		"points", c.Points,
		"task_remaining", c.TaskRemaining)
	s.bus.Publish(ctx, core.NewSessionStarted(next.Player, next.SessionID, c))
	s.publishEvaluation(ctx, prev, next)
	return next, nil
}

// EndSession clears the player's state back to "unavailable" and drops the
// cached tracker; settings stay in storage.
func (s *BoostService) EndSession(ctx context.Context, player core.PlayerID) (Snapshot, error) {
	id, err := core.NormalizePlayerID(player)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	t, ok := s.trackers[id]
	var prev, next Snapshot
	if ok {
		delete(s.trackers, id)
		prev, next = t.End()
	}
	s.mu.Unlock()
	if !ok {
		t, err := s.tracker(ctx, id)
		if err != nil {
			return Snapshot{}, err
		}
		return t.Snapshot(), nil
	}
	if prev.Active {
		s.log.Info("session ended", "player", next.Player, "session_id", prev.SessionID)
		s.bus.Publish(ctx, core.NewSessionEnded(next.Player, prev.SessionID))
	}
	return next, nil
}

// UpdateCounters applies changed live counters. Outside a session it is a no-op.
func (s *BoostService) UpdateCounters(ctx context.Context, player core.PlayerID, c core.Counters) (Snapshot, error) {
	if err := c.Validate(); err != nil {
		return Snapshot{}, err
	}
	t, err := s.tracker(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	prev, next := t.UpdateCounters(c)
	if !next.Active || prev.Counters == next.Counters {
		return next, nil
	}
	if prev.Counters.Streak != c.Streak {
		s.log.Debug("slayer streak changed", "player", next.Player, "from", prev.Counters.Streak, "to", c.Streak)
	}
	if prev.Counters.Points != c.Points {
		s.log.Debug("slayer points changed", "player", next.Player, "from", prev.Counters.Points, "to", c.Points)
	}
	if prev.Counters.TaskRemaining != c.TaskRemaining {
		s.log.Debug("slayer task count changed", "player", next.Player, "from", prev.Counters.TaskRemaining, "to", c.TaskRemaining)
	}
	s.bus.Publish(ctx, core.NewCountersChanged(next.Player, next.SessionID, c))
	s.publishEvaluation(ctx, prev, next)
	return next, nil
}

// Snapshot returns the latest computed state.
func (s *BoostService) Snapshot(ctx context.Context, player core.PlayerID) (Snapshot, error) {
	t, err := s.tracker(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Snapshot(), nil
}

// Settings returns the player's effective settings.
func (s *BoostService) Settings(ctx context.Context, player core.PlayerID) (core.Settings, error) {
	t, err := s.tracker(ctx, player)
	if err != nil {
		return core.Settings{}, err
	}
	return t.Settings(), nil
}

// UpdateSettings validates, persists and applies new settings.
func (s *BoostService) UpdateSettings(ctx context.Context, player core.PlayerID, settings core.Settings) (Snapshot, error) {
	if err := settings.Validate(); err != nil {
		return Snapshot{}, err
	}
	t, err := s.tracker(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	id := t.Snapshot().Player
	if err := s.storage.SaveSettings(ctx, id, settings); err != nil {
		return Snapshot{}, fmt.Errorf("save settings for %s: %w", id, err)
	}
	prev, next := t.ApplySettings(settings)
	s.log.Debug("settings changed", "player", id, "default_master", settings.DefaultMaster, "rules", len(settings.ActiveRules()))
	s.bus.Publish(ctx, core.NewSettingsChanged(id))
	s.publishEvaluation(ctx, prev, next)
	return next, nil
}

// Highlight resolves an observed NPC against the current target master.
func (s *BoostService) Highlight(ctx context.Context, player core.PlayerID, npcName string) (core.HighlightDecision, error) {
	t, err := s.tracker(ctx, player)
	if err != nil {
		return core.HighlightDecision{}, err
	}
	d := t.Observe(npcName)
	if d.Master != core.MasterNone {
		snap := t.Snapshot()
		s.bus.Publish(ctx, core.NewNPCObserved(snap.Player, snap.SessionID, d))
	}
	return d, nil
}

// Players lists players with stored settings.
func (s *BoostService) Players(ctx context.Context) ([]core.PlayerID, error) {
	return s.storage.ListPlayers(ctx)
}

// Ping checks that storage answers.
func (s *BoostService) Ping(ctx context.Context) error {
	_, err := s.storage.LoadSettings(ctx, "healthcheck_probe")
	if err != nil && !errors.Is(err, core.ErrNoSettings) {
		return err
	}
	return nil
}

func (s *BoostService) publishEvaluation(ctx context.Context, prev, next Snapshot) {
	if !next.Active {
		return
	}
	ev := next.Evaluation
	s.bus.Publish(ctx, core.NewEvaluationUpdated(core.EventEvaluationUpdated, next.Player, next.SessionID, next.Counters.Streak, ev))
	if !ev.Milestone {
		return
	}
	pe := prev.Evaluation
	if prev.Active && pe.Milestone && pe.MilestoneTask == ev.MilestoneTask && pe.MilestoneMaster == ev.MilestoneMaster {
		return
	}
	s.log.Debug("milestone active",
		"player", next.Player,
		"next_task", ev.NextTask,
		"master", ev.MilestoneMaster.DisplayName(),
		"points", ev.MilestonePoints)
	s.bus.Publish(ctx, core.NewEvaluationUpdated(core.EventMilestoneActive, next.Player, next.SessionID, next.Counters.Streak, ev))
}
