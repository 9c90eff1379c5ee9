package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLargestIntervalWins(t *testing.T) {
	rules := []Rule{{10, MasterDuradel}, {100, MasterKonar}}
	ev := Evaluate(99, rules, Diaries{}, MasterTurael)

	require.True(t, ev.Milestone)
	assert.Equal(t, 100, ev.NextTask)
	assert.Equal(t, MasterKonar, ev.MilestoneMaster)
	assert.Equal(t, 100, ev.MilestoneTask)
	assert.Equal(t, 450, ev.MilestonePoints)
	assert.Equal(t, "100th", ev.MilestoneLabel)
	assert.Equal(t, ev.MilestoneMaster, ev.NextMaster)
	assert.Equal(t, ev.MilestonePoints, ev.NextTaskPoints)
}

func TestEvaluateNonOverlappingIntervals(t *testing.T) {
	rules := []Rule{{10, MasterDuradel}, {7, MasterNieve}}

	ev := Evaluate(20, rules, Diaries{}, MasterTurael)
	require.True(t, ev.Milestone)
	assert.Equal(t, MasterNieve, ev.MilestoneMaster)
	assert.Equal(t, 21, ev.MilestoneTask)
	// 21 is not a denomination, so Nieve pays base points and there is no label
	assert.Equal(t, 12, ev.MilestonePoints)
	assert.Empty(t, ev.MilestoneLabel)

	ev = Evaluate(9, rules, Diaries{}, MasterTurael)
	require.True(t, ev.Milestone)
	assert.Equal(t, MasterDuradel, ev.MilestoneMaster)
	assert.Equal(t, 75, ev.MilestonePoints)
}

func TestEvaluateDefaultFallback(t *testing.T) {
	d := Diaries{EliteWestern: true}
	for streak := 0; streak < 300; streak++ {
		ev := Evaluate(streak, nil, d, MasterNieve)
		if ev.Milestone {
			t.Fatalf("streak %d: unexpected milestone", streak)
		}
		if ev.MilestoneMaster != MasterNone || ev.MilestoneTask != 0 || ev.MilestonePoints != 0 {
			t.Fatalf("streak %d: milestone fields not cleared: %+v", streak, ev)
		}
		if ev.NextMaster != MasterNieve || ev.NextTaskPoints != PointsForTask(MasterNieve, streak+1, d) {
			t.Fatalf("streak %d: unexpected default evaluation %+v", streak, ev)
		}
	}
}

func TestEvaluateDisabledRulesFromSettings(t *testing.T) {
	s := DefaultSettings()
	for i := range s.Rules {
		s.Rules[i].Enabled = false
	}
	require.Empty(t, s.ActiveRules())

	ev := Evaluate(9, s.ActiveRules(), s.Diaries, s.DefaultMaster)
	assert.False(t, ev.Milestone)
	assert.Equal(t, MasterTurael, ev.NextMaster)
	assert.Equal(t, 0, ev.NextTaskPoints)
}

func TestEvaluateIgnoresDegenerateIntervals(t *testing.T) {
	rules := []Rule{{0, MasterKonar}, {-5, MasterKonar}, {3, MasterVannaka}}
	ev := Evaluate(2, rules, Diaries{}, MasterTurael)
	require.True(t, ev.Milestone)
	assert.Equal(t, MasterVannaka, ev.MilestoneMaster)

	ev = Evaluate(3, rules, Diaries{}, MasterTurael)
	assert.False(t, ev.Milestone)
	assert.Equal(t, MasterTurael, ev.NextMaster)
}

func TestEvaluateTieBreakFirstConfiguredWins(t *testing.T) {
	rules := []Rule{{5, MasterChaeldar}, {50, MasterKonar}, {50, MasterDuradel}, {5, MasterVannaka}}

	ev := Evaluate(49, rules, Diaries{}, MasterTurael)
	assert.Equal(t, MasterKonar, ev.MilestoneMaster)

	ev = Evaluate(4, rules, Diaries{}, MasterTurael)
	assert.Equal(t, MasterChaeldar, ev.MilestoneMaster)

	// reversing the configured order flips the winner
	rev := []Rule{rules[3], rules[2], rules[1], rules[0]}
	assert.Equal(t, MasterDuradel, Evaluate(49, rev, Diaries{}, MasterTurael).MilestoneMaster)
	assert.Equal(t, MasterVannaka, Evaluate(4, rev, Diaries{}, MasterTurael).MilestoneMaster)
}

func TestEvaluateDoesNotReorderInput(t *testing.T) {
	rules := []Rule{{10, MasterDuradel}, {50, MasterKonar}}
	_ = Evaluate(49, rules, Diaries{}, MasterTurael)
	assert.Equal(t, []Rule{{10, MasterDuradel}, {50, MasterKonar}}, rules)
}

func TestEvaluateIdempotent(t *testing.T) {
	s := DefaultSettings()
	s.Diaries.EliteKourend = true
	a := Evaluate(49, s.ActiveRules(), s.Diaries, s.DefaultMaster)
	b := Evaluate(49, s.ActiveRules(), s.Diaries, s.DefaultMaster)
	assert.Equal(t, a, b)
	assert.Equal(t, 300, a.NextTaskPoints)
}

func TestEvaluateDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		streak int
		master Master
		points int
	}{
		{0, MasterTurael, 0},
		{8, MasterTurael, 0},
		{9, MasterDuradel, 75},
		{49, MasterKonar, 270},
		{99, MasterKonar, 450},
		{109, MasterDuradel, 75},
	}
	for _, tt := range tests {
		ev := Evaluate(tt.streak, s.ActiveRules(), s.Diaries, s.DefaultMaster)
		assert.Equal(t, tt.master, ev.NextMaster, "streak %d", tt.streak)
		assert.Equal(t, tt.points, ev.NextTaskPoints, "streak %d", tt.streak)
	}
}

func TestEvaluationTarget(t *testing.T) {
	ev := Evaluate(9, []Rule{{10, MasterKonar}}, Diaries{}, MasterTurael)
	assert.Equal(t, MasterKonar, ev.Target(MasterVannaka))
	ev = Evaluate(3, []Rule{{10, MasterKonar}}, Diaries{}, MasterTurael)
	assert.Equal(t, MasterVannaka, ev.Target(MasterVannaka))
}
