package rules

// Board and supply.
const (
	BasicGemsPerColor = 4
	PearlCount        = 2
	GoldCount         = 3
)

// Market slots per card level.
var MarketSlots = map[int]int{1: 5, 2: 4, 3: 3}

// Levels lists card levels in market order.
var Levels = []int{1, 2, 3}

// Player limits.
const (
	MaxReserved        = 3
	GemCap             = 10
	StandardPrivileges = 3
)

// Crown milestones that trigger a royal pick, each claimed once per player.
const (
	MilestoneThree = 3
	MilestoneSix   = 6
)

// Default win thresholds.
const (
	WinPoints      = 20
	WinCrowns      = 10
	WinSingleColor = 10
)

// Thresholds is the set of win thresholds in force for one player.
type Thresholds struct {
	Points      int
	Crowns      int
	SingleColor int
}

// DefaultThresholds returns the thresholds used when no buff overrides them.
func DefaultThresholds() Thresholds {
	return Thresholds{Points: WinPoints, Crowns: WinCrowns, SingleColor: WinSingleColor}
}

// Override returns t with every positive argument replacing its threshold.
func (t Thresholds) Override(points, crowns, singleColor int) Thresholds {
	if points > 0 {
		t.Points = points
	}
	if crowns > 0 {
		t.Crowns = crowns
	}
	if singleColor > 0 {
		t.SingleColor = singleColor
	}
	return t
}
