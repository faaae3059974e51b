// Package buffs holds buff templates, their declarative effect descriptors and the
// per-assignment state bag that travels inside the game state.
package buffs

import (
	"fmt"
	"strings"
)

// Category groups buffs for draft pool diversity.
type Category string

const (
	CategoryEconomy    Category = "economy"
	CategoryAggression Category = "aggression"
	CategoryControl    Category = "control"
	CategoryVictory    Category = "victory"
)

// Categories lists every category in a fixed order.
var Categories = []Category{CategoryEconomy, CategoryAggression, CategoryControl, CategoryVictory}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown buff category %q", s)
}

// ActiveKind names a UI-triggered, read-only effect.
type ActiveKind string

const (
	ActiveNone     ActiveKind = ""
	ActivePeekDeck ActiveKind = "peek_deck"
)

// Template is the immutable description of a buff.
type Template struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Level       int      `json:"level" yaml:"level"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Effect      Effect   `json:"effect" yaml:"effect"`
}

// Effect is the declarative descriptor split into its four effect classes.
type Effect struct {
	OnInit       InitEffect    `json:"onInit" yaml:"onInit"`
	Passive      PassiveEffect `json:"passive" yaml:"passive"`
	Active       ActiveEffect  `json:"active" yaml:"active"`
	WinCondition WinCondition  `json:"winCondition" yaml:"winCondition"`
}

// InitEffect is applied once to the owner when the match starts.
type InitEffect struct {
	Privileges int  `json:"privileges,omitempty" yaml:"privileges"`
	RandomGems int  `json:"randomGems,omitempty" yaml:"randomGems"`
	Crowns     int  `json:"crowns,omitempty" yaml:"crowns"`
	Points     int  `json:"points,omitempty" yaml:"points"`
	Pearls     int  `json:"pearls,omitempty" yaml:"pearls"`
	Gold       int  `json:"gold,omitempty" yaml:"gold"`
	Reserve    bool `json:"reserve,omitempty" yaml:"reserve"`

	// ChooseColor stores a caller-resolved basic color in the state bag.
	ChooseColor bool `json:"chooseColor,omitempty" yaml:"chooseColor"`
}

// PassiveEffect is consulted by the handlers it influences.
type PassiveEffect struct {
	DiscountAny        int  `json:"discountAny,omitempty" yaml:"discountAny"`
	ReservedDiscount   int  `json:"reservedDiscount,omitempty" yaml:"reservedDiscount"`
	LevelDiscount      int  `json:"levelDiscount,omitempty" yaml:"levelDiscount"`
	LevelDiscountMax   int  `json:"levelDiscountMax,omitempty" yaml:"levelDiscountMax"`
	ColorDiscount      int  `json:"colorDiscount,omitempty" yaml:"colorDiscount"`
	DoubleGoldLevel3   bool `json:"doubleGoldLevel3,omitempty" yaml:"doubleGoldLevel3"`
	GemCapBonus        int  `json:"gemCapBonus,omitempty" yaml:"gemCapBonus"`
	DoubleBonusGem     bool `json:"doubleBonusGem,omitempty" yaml:"doubleBonusGem"`
	CrownPearl         bool `json:"crownPearl,omitempty" yaml:"crownPearl"`
	StealImmune        bool `json:"stealImmune,omitempty" yaml:"stealImmune"`
	PrivilegeEvery     int  `json:"privilegeEvery,omitempty" yaml:"privilegeEvery"`
	ReserveStackPoints int  `json:"reserveStackPoints,omitempty" yaml:"reserveStackPoints"`
	Recycler           bool `json:"recycler,omitempty" yaml:"recycler"`
	DiscardReserved    bool `json:"discardReserved,omitempty" yaml:"discardReserved"`
	DoublePrivilege    bool `json:"doublePrivilege,omitempty" yaml:"doublePrivilege"`
	ReplenishReward    bool `json:"replenishReward,omitempty" yaml:"replenishReward"`
}

// ActiveEffect describes a read-only effect the owner may trigger.
type ActiveEffect struct {
	Kind  ActiveKind `json:"kind,omitempty" yaml:"kind"`
	Count int        `json:"count,omitempty" yaml:"count"`
}

// WinCondition overrides the default thresholds; zero keeps the default.
type WinCondition struct {
	Points      int `json:"points,omitempty" yaml:"points"`
	Crowns      int `json:"crowns,omitempty" yaml:"crowns"`
	SingleColor int `json:"singleColor,omitempty" yaml:"singleColor"`
}

// Assignment pairs a template copy with the mutable state bag owned by one player.
type Assignment struct {
	Buff  Template `json:"buff"`
	State State    `json:"state"`
}

// Assign creates an assignment with an empty state bag.
func Assign(t Template) *Assignment {
	return &Assignment{Buff: t, State: State{}}
}

// Clone returns a deep copy; nil stays nil.
func (a *Assignment) Clone() *Assignment {
	if a == nil {
		return nil
	}
	return &Assignment{Buff: a.Buff, State: a.State.Clone()}
}

// ID returns the assigned buff id or "" for no buff.
func (a *Assignment) ID() string {
	if a == nil {
		return ""
	}
	return a.Buff.ID
}

// Passive returns the passive descriptor, zero when unassigned.
func (a *Assignment) Passive() PassiveEffect {
	if a == nil {
		return PassiveEffect{}
	}
	return a.Buff.Effect.Passive
}

// Win returns the win-condition override, zero when unassigned.
func (a *Assignment) Win() WinCondition {
	if a == nil {
		return WinCondition{}
	}
	return a.Buff.Effect.WinCondition
}
