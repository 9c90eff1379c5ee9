package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// RuleSlots is the number of configurable boosting rules.
const RuleSlots = 5

// RGBA is an sRGB colour with alpha, encoded as "#RRGGBBAA".
type RGBA struct {
	R, G, B, A uint8
}

var (
	ColorGreen = RGBA{0, 255, 0, 255}
	ColorRed   = RGBA{255, 0, 0, 255}
)

// WithAlpha returns the same colour with a different alpha.
func (c RGBA) WithAlpha(a uint8) RGBA {
	c.A = a
	return c
}

func (c RGBA) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func (c RGBA) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts "#RRGGBB" (opaque) or "#RRGGBBAA".
func (c *RGBA) UnmarshalText(b []byte) error {
	parsed, err := ParseRGBA(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseRGBA parses a hex colour, with or without the leading '#'.
func ParseRGBA(s string) (RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c := RGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

// RuleSlot is one user-configured boosting rule.
type RuleSlot struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Interval int    `json:"interval" yaml:"interval"`
	Master   Master `json:"master" yaml:"master"`
}

// Settings is the user configuration consumed by evaluation and highlighting.
type Settings struct {
	DefaultMaster    Master              `json:"default_master" yaml:"default_master"`
	HighlightCorrect bool                `json:"highlight_correct" yaml:"highlight_correct"`
	HighlightWrong   bool                `json:"highlight_wrong" yaml:"highlight_wrong"`
	CorrectColor     RGBA                `json:"correct_color" yaml:"correct_color"`
	WrongColor       RGBA                `json:"wrong_color" yaml:"wrong_color"`
	Diaries          Diaries             `json:"diaries" yaml:"diaries"`
	Rules            [RuleSlots]RuleSlot `json:"rules" yaml:"rules"`
}

// DefaultSettings mirrors a fresh install: Turael by default,
// Duradel every 10th task and Konar every 50th.
func DefaultSettings() Settings {
	return Settings{
		DefaultMaster:    MasterTurael,
		HighlightCorrect: true,
		HighlightWrong:   true,
		CorrectColor:     ColorGreen,
		WrongColor:       ColorRed,
		Rules: [RuleSlots]RuleSlot{
			{Enabled: true, Interval: 10, Master: MasterDuradel},
			{Enabled: true, Interval: 50, Master: MasterKonar},
			{Enabled: false, Interval: 100, Master: MasterKonar},
			{Enabled: false, Interval: 250, Master: MasterKonar},
			{Enabled: false, Interval: 1000, Master: MasterKonar},
		},
	}
}

// ActiveRules returns the enabled rules in slot order.
func (s Settings) ActiveRules() []Rule {
	rules := make([]Rule, 0, RuleSlots)
	for _, slot := range s.Rules {
		if slot.Enabled {
			rules = append(rules, Rule{Interval: slot.Interval, Master: slot.Master})
		}
	}
	return rules
}

// HighlightOptions extracts the highlight toggles and colours.
func (s Settings) HighlightOptions() HighlightOptions {
	return HighlightOptions{
		Correct:      s.HighlightCorrect,
		Wrong:        s.HighlightWrong,
		CorrectColor: s.CorrectColor,
		WrongColor:   s.WrongColor,
	}
}

// Validate checks that every enum field holds a known master.
// Intervals are not checked; a non-positive interval simply never matches.
func (s Settings) Validate() error {
	var errs []error
	if !s.DefaultMaster.Valid() {
		errs = append(errs, fmt.Errorf("default_master: %w: %q", ErrUnknownMaster, string(s.DefaultMaster)))
	}
	for i, slot := range s.Rules {
		if !slot.Enabled && slot.Master == MasterNone {
			// unused slot, e.g. missing from a short JSON rules array
			continue
		}
		if !slot.Master.Valid() {
			errs = append(errs, fmt.Errorf("rules[%d].master: %w: %q", i+1, ErrUnknownMaster, string(slot.Master)))
		}
	}
	return errors.Join(errs...)
}
