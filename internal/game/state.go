package game

import (
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/cost"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// Mode records how a match is being played.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeOnline Mode = "online"
	ModePvE    Mode = "pve"
)

// Milestones records which crown milestones a player has claimed.
type Milestones struct {
	Three bool `json:"three"`
	Six   bool `json:"six"`
}

// PlayerState is everything one seat owns.
type PlayerState struct {
	Inventory gems.Inventory `json:"inventory"`
	// ExtraAllocation is the part of Inventory created by buffs. It is spent first
	// and vanishes instead of returning to the bag.
	ExtraAllocation gems.Inventory    `json:"extraAllocation"`
	Tableau         []cards.Card      `json:"tableau"`
	Reserved        []cards.Card      `json:"reserved"`
	Royals          []cards.Card      `json:"royals"`
	Privileges      int               `json:"privileges"`
	ExtraPrivileges int               `json:"extraPrivileges"`
	ExtraPoints     int               `json:"extraPoints"`
	ExtraCrowns     int               `json:"extraCrowns"`
	Milestones      Milestones        `json:"milestones"`
	Buff            *buffs.Assignment `json:"buff,omitempty"`
	TurnsCompleted  int               `json:"turnsCompleted"`
}

func (p PlayerState) clone() PlayerState {
	out := p
	out.Tableau = cards.CloneAll(p.Tableau)
	out.Reserved = cards.CloneAll(p.Reserved)
	out.Royals = cards.CloneAll(p.Royals)
	out.Buff = p.Buff.Clone()
	return out
}

// Points is the prestige total: tableau, royals and buff-granted points.
func (p PlayerState) Points() int {
	total := p.ExtraPoints
	for _, c := range p.Tableau {
		total += c.Points
	}
	for _, c := range p.Royals {
		total += c.Points
	}
	return total
}

// Crowns is the crown total including buff-granted crowns.
func (p PlayerState) Crowns() int {
	total := p.ExtraCrowns
	for _, c := range p.Tableau {
		total += c.Crowns
	}
	for _, c := range p.Royals {
		total += c.Crowns
	}
	return total
}

// ColorPoints sums tableau points per bonus color.
func (p PlayerState) ColorPoints() gems.Inventory {
	var out gems.Inventory
	for _, c := range p.Tableau {
		if c.Bonus.IsBasic() {
			out.Add(c.Bonus, c.Points)
		}
	}
	return out
}

// Bonuses returns the per-color discount the tableau provides.
func (p PlayerState) Bonuses() gems.Inventory {
	return cost.Bonuses(p.Tableau)
}

// GemCap is the inventory limit, raised by buffs.
func (p PlayerState) GemCap() int {
	return rules.GemCap + p.Buff.Passive().GemCapBonus
}

// Thresholds returns the win thresholds in force for this player.
func (p PlayerState) Thresholds() rules.Thresholds {
	w := p.Buff.Win()
	return rules.DefaultThresholds().Override(w.Points, w.Crowns, w.SingleColor)
}

// PendingReserve is a reservation staged until its gold pickup lands.
type PendingReserve struct {
	CardID string `json:"cardId,omitempty"`
	Level  int    `json:"level,omitempty"`
}

// Pending holds the bookkeeping of a turn paused in an interrupt phase.
type Pending struct {
	BuyCardID string          `json:"buyCardId,omitempty"`
	Reserve   *PendingReserve `json:"reserve,omitempty"`

	// Abilities still to resolve after the current interrupt, and who moves next.
	Abilities   []cards.Ability `json:"abilities,omitempty"`
	AbilityCard string          `json:"abilityCard,omitempty"`
	AbilityNext Player          `json:"abilityNext"`
	BonusColor  gems.Color      `json:"bonusColor"`
	BonusCount  int             `json:"bonusCount,omitempty"`

	PrivilegeCount     int `json:"privilegeCount,omitempty"`
	PrivilegeTaken     int `json:"privilegeTaken,omitempty"`
	PrivilegeStandard  int `json:"privilegeStandard,omitempty"`
	PrivilegeExtraUsed int `json:"privilegeExtraUsed,omitempty"`

	RoyalResume        Player `json:"royalResume"`
	TurnEffectsApplied bool   `json:"turnEffectsApplied,omitempty"`
}

func newPending() Pending {
	return Pending{AbilityNext: NoPlayer, BonusColor: gems.NoColor, RoyalResume: NoPlayer}
}

func (p Pending) clone() Pending {
	out := p
	if p.Reserve != nil {
		r := *p.Reserve
		out.Reserve = &r
	}
	if p.Abilities != nil {
		out.Abilities = append([]cards.Ability(nil), p.Abilities...)
	}
	return out
}

// Draft tracks the buff draft that precedes a match.
type Draft struct {
	Level  int          `json:"level"`
	First  Player       `json:"first"`
	Picker Player       `json:"picker"`
	Pools  [2][]string  `json:"pools"`
	Picks  [2]string    `json:"picks"`
	Init   [2]InitRolls `json:"init"`
	Done   bool         `json:"done"`
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	for i := range d.Pools {
		out.Pools[i] = append([]string(nil), d.Pools[i]...)
	}
	for i := range d.Init {
		out.Init[i] = d.Init[i].clone()
	}
	return &out
}

// GameState is the aggregate root of a match. Handlers only ever see a private clone.
type GameState struct {
	MatchID    string          `json:"matchId"`
	Mode       Mode            `json:"mode"`
	Board      gems.Board      `json:"board"`
	Bag        []gems.Gem      `json:"bag"`
	GemSerial  int             `json:"gemSerial"`
	Players    [2]PlayerState  `json:"players"`
	Market     [3][]cards.Card `json:"market"`
	Decks      [3][]cards.Card `json:"decks"`
	RoyalCourt []cards.Card    `json:"royalCourt"`
	Turn       Player          `json:"turn"`
	Phase      rules.Phase     `json:"phase"`
	Winner     Player          `json:"winner"`
	ResumeTo   Player          `json:"resumeTo"`
	Pending    Pending         `json:"pending"`
	Draft      *Draft          `json:"draft,omitempty"`

	Toast    string   `json:"toast,omitempty"`
	Feedback []string `json:"feedback,omitempty"`
}

// Clone returns a deep copy sharing no mutable memory with s.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Bag = append([]gems.Gem(nil), s.Bag...)
	for i := range s.Players {
		out.Players[i] = s.Players[i].clone()
	}
	for i := range s.Market {
		out.Market[i] = cards.CloneAll(s.Market[i])
		out.Decks[i] = cards.CloneAll(s.Decks[i])
	}
	out.RoyalCourt = cards.CloneAll(s.RoyalCourt)
	out.Pending = s.Pending.clone()
	out.Draft = s.Draft.clone()
	if s.Feedback != nil {
		out.Feedback = append([]string(nil), s.Feedback...)
	}
	return &out
}

// Status reports the effective phase, GAME_OVER once a winner exists.
func (s *GameState) Status() rules.Phase {
	if s.Winner != NoPlayer {
		return rules.PhaseGameOver
	}
	return s.Phase
}

// Player returns a pointer to a seat's state.
func (s *GameState) Player(p Player) *PlayerState {
	return &s.Players[p]
}

// Current returns the state of the player whose turn it is.
func (s *GameState) Current() *PlayerState {
	return &s.Players[s.Turn]
}

// FreePrivileges is the number of standard tokens held by neither player.
func (s *GameState) FreePrivileges() int {
	return rules.StandardPrivileges - s.Players[P1].Privileges - s.Players[P2].Privileges
}

// MarketCard finds a card in the market, returning its level index and slot.
func (s *GameState) MarketCard(id string) (level, slot int, ok bool) {
	if id == "" {
		return 0, 0, false
	}
	for l := range s.Market {
		for i, c := range s.Market[l] {
			if c.ID == id {
				return l, i, true
			}
		}
	}
	return 0, 0, false
}

// GemTotal counts every gem unit on the board, in the bag and in both inventories.
func (s *GameState) GemTotal() int {
	return s.Board.Count() + len(s.Bag) + s.Players[P1].Inventory.Total() + s.Players[P2].Inventory.Total()
}

func (s *GameState) feedback(msg string) {
	s.Feedback = append(s.Feedback, msg)
}

func indexOfCard(list []cards.Card, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeCard(list []cards.Card, i int) []cards.Card {
	out := make([]cards.Card, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
