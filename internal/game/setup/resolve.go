package setup

import (
	"encoding/json"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// Resolve fills the random parts of a that the sender left out, so the action can be
// broadcast with every choice already made. It runs on the authority only. Actions
// that need nothing, or whose payload does not decode, are returned unchanged.
func (g *Generator) Resolve(s *game.GameState, a game.Action) game.Action {
	if s == nil {
		return a
	}
	switch a.Type {
	case game.ActionSelectBuff:
		var p game.SelectBuffPayload
		if !decode(a, &p) || len(p.NextPool) > 0 {
			return a
		}
		if s.Phase != rules.PhaseDraft || s.Draft == nil || s.Draft.Picker != s.Draft.First {
			return a
		}
		p.NextPool = g.SecondPool(p.BuffID, s.Draft.Level)
		return encode(a, p)

	case game.ActionReplenish:
		p := game.ReplenishPayload{BonusColor: gems.NoColor, StealColor: gems.NoColor}
		if !decode(a, &p) {
			return a
		}
		if len(p.Order) == 0 {
			p.Order = g.ReplenishOrder(s)
		}
		if p.BonusColor == gems.NoColor {
			p.BonusColor = g.BagColor(s)
		}
		if p.StealColor == gems.NoColor {
			p.StealColor = g.stealColor(s)
		}
		return encode(a, p)

	case game.ActionDiscardReserved:
		p := game.DiscardReservedPayload{Color: gems.NoColor}
		if !decode(a, &p) || p.Color != gems.NoColor {
			return a
		}
		p.Color = g.BagColor(s)
		return encode(a, p)
	}
	return a
}

// stealColor picks a random basic color the opponent holds, or NoColor.
func (g *Generator) stealColor(s *game.GameState) gems.Color {
	inv := s.Player(s.Turn.Opponent()).Inventory
	var held []gems.Color
	for _, c := range gems.BasicColors {
		if inv.Get(c) > 0 {
			held = append(held, c)
		}
	}
	if len(held) == 0 {
		return gems.NoColor
	}
	return held[g.rng.Intn(len(held))]
}

func decode(a game.Action, dst any) bool {
	if len(a.Payload) == 0 {
		return true
	}
	return json.Unmarshal(a.Payload, dst) == nil
}

func encode(a game.Action, payload any) game.Action {
	out, err := game.NewAction(a.Type, payload)
	if err != nil {
		return a
	}
	return out
}
