package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventSessionEnded      EventType = "session_ended"
	EventCountersChanged   EventType = "counters_changed"
	EventEvaluationUpdated EventType = "evaluation_updated"
	EventMilestoneActive   EventType = "milestone_active"
	EventSettingsChanged   EventType = "settings_changed"
	EventNPCObserved       EventType = "npc_observed"
)

// AllEventTypes lists every event type, e.g. for bridging to realtime sinks.
func AllEventTypes() []EventType {
	return []EventType{
		EventSessionStarted, EventSessionEnded, EventCountersChanged,
		EventEvaluationUpdated, EventMilestoneActive, EventSettingsChanged, EventNPCObserved,
	}
}

// Event represents an immutable domain event.
type Event struct {
	Type       EventType      `json:"type"`
	Time       time.Time      `json:"time"`
	Player     PlayerID       `json:"player"`
	SessionID  string         `json:"session_id,omitempty"`
	Streak     int            `json:"streak,omitempty"`
	Points     int            `json:"points,omitempty"`
	NextTask   int            `json:"next_task,omitempty"`
	Master     Master         `json:"master,omitempty"`
	TaskPoints int            `json:"task_points,omitempty"`
	Label      string         `json:"label,omitempty"`
	NPC        string         `json:"npc,omitempty"`
	Highlight  HighlightKind  `json:"highlight,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func newEvent(typ EventType, player PlayerID, session string) Event {
	return Event{Type: typ, Time: time.Now().UTC(), Player: player, SessionID: session}
}

func NewSessionStarted(player PlayerID, session string, c Counters) Event {
	ev := newEvent(EventSessionStarted, player, session)
	ev.Streak = c.Streak
	ev.Points = c.Points
	return ev
}

func NewSessionEnded(player PlayerID, session string) Event {
	return newEvent(EventSessionEnded, player, session)
}

func NewCountersChanged(player PlayerID, session string, c Counters) Event {
	ev := newEvent(EventCountersChanged, player, session)
	ev.Streak = c.Streak
	ev.Points = c.Points
	ev.Metadata = map[string]any{"task_remaining": c.TaskRemaining}
	return ev
}

// NewEvaluationUpdated carries the next-task decision. typ is either
// EventEvaluationUpdated or EventMilestoneActive.
func NewEvaluationUpdated(typ EventType, player PlayerID, session string, streak int, e Evaluation) Event {
	ev := newEvent(typ, player, session)
	ev.Streak = streak
	ev.NextTask = e.NextTask
	ev.Master = e.NextMaster
	ev.TaskPoints = e.NextTaskPoints
	if e.Milestone {
		ev.Label = e.MilestoneLabel
	}
	return ev
}

func NewSettingsChanged(player PlayerID) Event {
	return newEvent(EventSettingsChanged, player, "")
}

func NewNPCObserved(player PlayerID, session string, d HighlightDecision) Event {
	ev := newEvent(EventNPCObserved, player, session)
	ev.NPC = d.NPC
	ev.Master = d.Master
	ev.Highlight = d.Kind
	return ev
}
