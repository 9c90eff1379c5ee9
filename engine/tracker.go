package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Snapshot is the read-only view of a player's evaluation state.
// Before a session starts and after it ends, Active is false and every
// derived field is zero; NextMaster is core.MasterNone.
type Snapshot struct {
	Player        core.PlayerID   `json:"player"`
	SessionID     string          `json:"session_id,omitempty"`
	Active        bool            `json:"active"`
	Counters      core.Counters   `json:"counters"`
	Evaluation    core.Evaluation `json:"evaluation"`
	DefaultMaster core.Master     `json:"default_master"`
	Updated       time.Time       `json:"updated"`
}

// ExpectedPoints returns the next task's points, or false when no master is known yet.
func (s Snapshot) ExpectedPoints() (int, bool) {
	if !s.Active || s.Evaluation.NextMaster == core.MasterNone {
		return 0, false
	}
	return s.Evaluation.NextTaskPoints, true
}

// Target is the master that should be highlighted as correct.
func (s Snapshot) Target() core.Master {
	return s.Evaluation.Target(s.DefaultMaster)
}

// Tracker owns the evaluation state of one player. Every trigger rebuilds the
// snapshot from scratch under the lock; readers only ever get copies.
type Tracker struct {
	mu       sync.Mutex
	player   core.PlayerID
	settings core.Settings
	session  string
	active   bool
	counters core.Counters
	snap     Snapshot
	now      func() time.Time
}

func NewTracker(player core.PlayerID, settings core.Settings) *Tracker {
	t := &Tracker{player: player, settings: settings, now: func() time.Time { return time.Now().UTC() }}
	t.recomputeLocked()
	return t
}

// Start begins a session with the counters read at login.
func (t *Tracker) Start(c core.Counters) (prev, next Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev = t.snap
	t.session = uuid.NewString()
	t.active = true
	t.counters = c
	t.recomputeLocked()
	return prev, t.snap
}

// End resets all state; a later Start behaves exactly like a first one.
func (t *Tracker) End() (prev, next Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev = t.snap
	t.session = ""
	t.active = false
	t.counters = core.Counters{}
	t.recomputeLocked()
	return prev, t.snap
}

// UpdateCounters records new live counters. It is ignored outside a session.
func (t *Tracker) UpdateCounters(c core.Counters) (prev, next Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev = t.snap
	if !t.active {
		return prev, prev
	}
	t.counters = c
	t.recomputeLocked()
	return prev, t.snap
}

// ApplySettings swaps the configuration and recomputes.
func (t *Tracker) ApplySettings(s core.Settings) (prev, next Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev = t.snap
	t.settings = s
	t.recomputeLocked()
	return prev, t.snap
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Tracker) Settings() core.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// Observe decides how an NPC seen in the world should be highlighted.
func (t *Tracker) Observe(npcName string) core.HighlightDecision {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.Highlight(npcName, t.snap.Target(), t.settings.HighlightOptions())
}

func (t *Tracker) recomputeLocked() {
	snap := Snapshot{
		Player:        t.player,
		DefaultMaster: t.settings.DefaultMaster,
		Updated:       t.now(),
	}
	if t.active {
		snap.SessionID = t.session
		snap.Active = true
		snap.Counters = t.counters
		snap.Evaluation = core.Evaluate(t.counters.Streak, t.settings.ActiveRules(), t.settings.Diaries, t.settings.DefaultMaster)
	}
	t.snap = snap
}
