package core

import (
	"cmp"
	"slices"
)

// Rule says "use Master for every Interval-th task". Rules with Interval <= 0 never match.
type Rule struct {
	Interval int    `json:"interval"`
	Master   Master `json:"master"`
}

// Matches reports whether task is a multiple of the rule's interval.
func (r Rule) Matches(task int) bool {
	return r.Interval > 0 && task%r.Interval == 0
}

// Evaluation is the derived milestone decision for the next task.
type Evaluation struct {
	NextTask        int    `json:"next_task"`
	Milestone       bool   `json:"milestone"`
	MilestoneMaster Master `json:"milestone_master,omitempty"`
	MilestoneTask   int    `json:"milestone_task,omitempty"`
	MilestonePoints int    `json:"milestone_points,omitempty"`
	MilestoneLabel  string `json:"milestone_label,omitempty"`
	NextMaster      Master `json:"next_master"`
	NextTaskPoints  int    `json:"next_task_points"`
}

// Evaluate decides which master to use for task streak+1.
//
// Rules are checked by interval, largest first, and the first one dividing the
// next task wins. Equal intervals keep their given order, so the earlier rule
// wins a tie. Without a winner the default master is used.
func Evaluate(streak int, rules []Rule, d Diaries, defaultMaster Master) Evaluation {
	next := streak + 1
	ev := Evaluation{NextTask: next}

	candidates := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Interval > 0 {
			candidates = append(candidates, r)
		}
	}
	slices.SortStableFunc(candidates, func(a, b Rule) int { return cmp.Compare(b.Interval, a.Interval) })

	for _, r := range candidates {
		if !r.Matches(next) {
			continue
		}
		ev.Milestone = true
		ev.MilestoneMaster = r.Master
		ev.MilestoneTask = next
		ev.MilestonePoints = PointsForTask(r.Master, next, d)
		ev.MilestoneLabel = MilestoneLabel(next)
		ev.NextMaster = ev.MilestoneMaster
		ev.NextTaskPoints = ev.MilestonePoints
		return ev
	}

	ev.NextMaster = defaultMaster
	ev.NextTaskPoints = PointsForTask(defaultMaster, next, d)
	return ev
}

// Target is the master the player should visit right now.
func (e Evaluation) Target(defaultMaster Master) Master {
	if e.Milestone {
		return e.MilestoneMaster
	}
	return defaultMaster
}
