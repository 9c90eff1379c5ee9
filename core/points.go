package core

// Tier is the streak denomination a task number falls into.
type Tier int

const (
	TierBase Tier = iota
	Tier10th
	Tier50th
	Tier100th
	Tier250th
	Tier1000th
	tierCount
)

// tierOrder lists milestone tiers highest first; the first divisor that matches wins.
var tierOrder = []struct {
	tier    Tier
	divisor int
	label   string
}{
	{Tier1000th, 1000, "1,000th"},
	{Tier250th, 250, "250th"},
	{Tier100th, 100, "100th"},
	{Tier50th, 50, "50th"},
	{Tier10th, 10, "10th"},
}

// TierFor returns the tier for a task number. Non-positive task numbers are always TierBase.
func TierFor(task int) Tier {
	if task <= 0 {
		return TierBase
	}
	for _, t := range tierOrder {
		if task%t.divisor == 0 {
			return t.tier
		}
	}
	return TierBase
}

// Label returns "1,000th", "250th", ... or "" for TierBase.
func (t Tier) Label() string {
	for _, o := range tierOrder {
		if o.tier == t {
			return o.label
		}
	}
	return ""
}

// MilestoneLabel returns the denomination label for a task number, or "" when none applies.
func MilestoneLabel(task int) string { return TierFor(task).Label() }

// Diaries holds the achievement diaries that unlock master-specific point bonuses.
type Diaries struct {
	EliteWestern bool `json:"elite_western" yaml:"elite_western"`
	EliteKourend bool `json:"elite_kourend" yaml:"elite_kourend"`
}

// bonusPolicy adjusts a master's tier points when its diary is complete.
type bonusPolicy struct {
	unlocked func(Diaries) bool
	adjust   func(t Tier, points int) int
}

// kourendPoints replaces Konar's table with the Elite Kourend & Kebos values.
var kourendPoints = [tierCount]int{20, 100, 300, 500, 700, 1000}

var bonusPolicies = map[Master]bonusPolicy{
	MasterNieve: {
		unlocked: func(d Diaries) bool { return d.EliteWestern },
		// +25%, rounded half up
		adjust: func(_ Tier, points int) int { return (points*5 + 2) / 4 },
	},
	MasterKonar: {
		unlocked: func(d Diaries) bool { return d.EliteKourend },
		adjust:   func(t Tier, _ int) int { return kourendPoints[t] },
	},
}

// BasePointsForTask returns the catalog points a master awards for a task number.
func BasePointsForTask(m Master, task int) int {
	return m.Points(TierFor(task))
}

// PointsForTask returns the points a master awards for a task number,
// including any diary bonus the master has.
func PointsForTask(m Master, task int, d Diaries) int {
	t := TierFor(task)
	pts := m.Points(t)
	if p, ok := bonusPolicies[m]; ok && p.unlocked(d) {
		pts = p.adjust(t, pts)
	}
	return pts
}
