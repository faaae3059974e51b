package game

import (
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// abilityRule pairs a precondition with its effect. An effect returning true has
// opened an interrupt phase and suspended resolution.
type abilityRule struct {
	ability cards.Ability
	applies func(d *GameState, p Player, card cards.Card) bool
	apply   func(d *GameState, p Player, card cards.Card, next *Player) bool
}

// abilityRules is evaluated in order; the order is the ability priority.
var abilityRules = []abilityRule{
	{
		ability: cards.AbilityAgain,
		applies: func(*GameState, Player, cards.Card) bool { return true },
		apply: func(_ *GameState, p Player, _ cards.Card, next *Player) bool {
			*next = p
			return false
		},
	},
	{
		ability: cards.AbilitySteal,
		applies: func(d *GameState, p Player, _ cards.Card) bool {
			return canStealFrom(d, p.Opponent())
		},
		apply: func(d *GameState, _ Player, _ cards.Card, _ *Player) bool {
			d.Phase = rules.PhaseStealAction
			return true
		},
	},
	{
		ability: cards.AbilityBonusGem,
		applies: func(d *GameState, _ Player, card cards.Card) bool {
			return card.Bonus.IsBasic() && d.Board.CountColor(card.Bonus) > 0
		},
		apply: func(d *GameState, p Player, card cards.Card, _ *Player) bool {
			n := 1
			if d.Player(p).Buff.Passive().DoubleBonusGem {
				n = 2
			}
			d.Pending.BonusColor = card.Bonus
			d.Pending.BonusCount = min(n, d.Board.CountColor(card.Bonus))
			d.Phase = rules.PhaseBonusAction
			return true
		},
	},
	{
		ability: cards.AbilityScroll,
		applies: func(*GameState, Player, cards.Card) bool { return true },
		apply: func(d *GameState, p Player, _ cards.Card, _ *Player) bool {
			d.grantPrivilege(p)
			return false
		},
	},
}

// canStealFrom reports whether victim holds a stealable gem and is not immune.
func canStealFrom(d *GameState, victim Player) bool {
	ps := d.Player(victim)
	if ps.Buff.Passive().StealImmune {
		return false
	}
	for c := gems.Color(0); c < gems.NumColors; c++ {
		if c != gems.Gold && ps.Inventory.Get(c) > 0 {
			return true
		}
	}
	return false
}

// resolveCard starts ability resolution for a card p just acquired. A win ends the
// turn on the spot, before any interrupt can open.
func (r *Reducer) resolveCard(d *GameState, p Player, card cards.Card, next Player) {
	if r.declareWinner(d) {
		return
	}
	var queue []cards.Ability
	for _, rule := range abilityRules {
		if card.HasAbility(rule.ability) {
			queue = append(queue, rule.ability)
		}
	}
	d.Pending.AbilityCard = card.ID
	r.resumeAbilities(d, p, card, queue, next)
}

// resumeAbilities resolves queued abilities until one interrupts, then finalizes.
func (r *Reducer) resumeAbilities(d *GameState, p Player, card cards.Card, queue []cards.Ability, next Player) {
	for i, ability := range queue {
		rule := ruleFor(ability)
		if !rule.applies(d, p, card) {
			d.feedback(string(ability) + " skipped")
			continue
		}
		d.feedback(string(ability))
		if rule.apply(d, p, card, &next) {
			d.Pending.Abilities = append([]cards.Ability(nil), queue[i+1:]...)
			d.Pending.AbilityNext = next
			return
		}
	}
	d.Pending.Abilities = nil
	d.Pending.AbilityCard = ""
	d.Pending.BonusColor = gems.NoColor
	d.Pending.BonusCount = 0
	r.finalizeTurn(d, next)
}

// continueAbilities picks resolution back up after an interrupt completes.
func (r *Reducer) continueAbilities(d *GameState) {
	p := d.Turn
	card, _ := findOwnedCard(d.Player(p), d.Pending.AbilityCard)
	queue := d.Pending.Abilities
	next := d.Pending.AbilityNext
	if next == NoPlayer {
		next = p.Opponent()
	}
	d.Phase = rules.PhaseIdle
	d.Pending.Abilities = nil
	r.resumeAbilities(d, p, card, queue, next)
}

func ruleFor(a cards.Ability) abilityRule {
	for _, rule := range abilityRules {
		if rule.ability == a {
			return rule
		}
	}
	panic("unregistered ability " + string(a))
}

// findOwnedCard looks a card up in a player's tableau and royals.
func findOwnedCard(ps *PlayerState, id string) (cards.Card, bool) {
	if i := indexOfCard(ps.Tableau, id); i >= 0 {
		return ps.Tableau[i], true
	}
	if i := indexOfCard(ps.Royals, id); i >= 0 {
		return ps.Royals[i], true
	}
	return cards.Card{}, false
}
