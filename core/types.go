package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPlayerID   = errors.New("empty player id")
	ErrUnknownMaster   = errors.New("unknown slayer master")
	ErrInvalidColor    = errors.New("invalid color")
	ErrNoSettings      = errors.New("no settings stored")
	ErrNegativeCounter = errors.New("counter cannot be negative")
)

// PlayerID identifies the account a session belongs to.
type PlayerID string

// NormalizePlayerID trims and lowercases player identifiers.
func NormalizePlayerID(id PlayerID) (PlayerID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", ErrEmptyPlayerID
	}
	return PlayerID(strings.ToLower(s)), nil
}

// Counters are the live values read from the game client.
// Points and TaskRemaining are display-only; only Streak feeds rule evaluation.
type Counters struct {
	Streak        int `json:"streak"`
	Points        int `json:"points"`
	TaskRemaining int `json:"task_remaining"`
}

// Validate rejects negative counters.
func (c Counters) Validate() error {
	switch {
	case c.Streak < 0:
		return fmt.Errorf("streak: %w", ErrNegativeCounter)
	case c.Points < 0:
		return fmt.Errorf("points: %w", ErrNegativeCounter)
	case c.TaskRemaining < 0:
		return fmt.Errorf("task_remaining: %w", ErrNegativeCounter)
	}
	return nil
}
