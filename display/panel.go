// Package display turns a player snapshot into the status panel shown by overlay clients.
package display

import (
	"strconv"

	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

const Title = "Slayer Boosting"

var (
	TitleColor         = core.RGBA{R: 255, G: 152, B: 31, A: 255}
	MilestoneColor     = core.RGBA{R: 255, G: 255, B: 0, A: 255}
	CorrectMasterColor = core.RGBA{R: 0, G: 255, B: 128, A: 255}
	NormalColor        = core.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Line is one "label: value" row. Color applies to the value.
type Line struct {
	Left  string    `json:"left"`
	Right string    `json:"right"`
	Color core.RGBA `json:"color"`
}

type Panel struct {
	Title      string    `json:"title"`
	TitleColor core.RGBA `json:"title_color"`
	Lines      []Line    `json:"lines"`
}

// Build returns nil when there is nothing to show yet (no session).
func Build(snap engine.Snapshot) *Panel {
	if !snap.Active || snap.Evaluation.NextMaster == core.MasterNone {
		return nil
	}
	ev := snap.Evaluation

	nextTask := "#" + strconv.Itoa(ev.NextTask)
	taskColor, masterColor, ptsColor := NormalColor, NormalColor, NormalColor
	if ev.Milestone {
		nextTask += " (" + bonusText(ev.MilestoneLabel) + ")"
		taskColor, masterColor, ptsColor = MilestoneColor, CorrectMasterColor, MilestoneColor
	}

	pts := "N/A"
	if p, ok := snap.ExpectedPoints(); ok && p > 0 {
		pts = strconv.Itoa(p)
	}

	return &Panel{
		Title:      Title,
		TitleColor: TitleColor,
		Lines: []Line{
			{Left: "Next task:", Right: nextTask, Color: taskColor},
			{Left: "Next master:", Right: ev.NextMaster.DisplayName(), Color: masterColor},
			{Left: "Streak:", Right: strconv.Itoa(snap.Counters.Streak), Color: NormalColor},
			{Left: "Points:", Right: strconv.Itoa(snap.Counters.Points), Color: NormalColor},
			{Left: "Next task pts:", Right: pts, Color: ptsColor},
		},
	}
}

// custom intervals can land on tasks with no named tier
func bonusText(label string) string {
	if label == "" {
		return "milestone"
	}
	return label + " bonus!"
}
