package game

import (
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

func (r *Reducer) bootstrap(a Action) (*GameState, error) {
	switch a.Type {
	case ActionInit:
		var p InitPayload
		if err := a.decode(&p); err != nil {
			return nil, err
		}
		s, err := newState(p.Setup)
		if err != nil {
			return nil, err
		}
		for _, pl := range Players {
			id := p.Setup.Buffs[pl]
			if id == "" {
				continue
			}
			if err := r.assignBuff(s, pl, id, p.Setup.Init[pl]); err != nil {
				return nil, err
			}
		}
		return s, nil

	case ActionInitDraft:
		var p InitDraftPayload
		if err := a.decode(&p); err != nil {
			return nil, err
		}
		if len(p.Pool) == 0 {
			return nil, fmt.Errorf("draft pool is empty")
		}
		if p.Level < 0 || p.Level > 3 {
			return nil, fmt.Errorf("draft level %d out of range", p.Level)
		}
		for _, id := range p.Pool {
			tpl, ok := r.buffs.Get(id)
			if !ok {
				return nil, fmt.Errorf("unknown buff %s in draft pool", id)
			}
			if p.Level != 0 && tpl.Level != p.Level {
				return nil, fmt.Errorf("buff %s is not a level %d buff", id, p.Level)
			}
		}
		s, err := newState(p.Setup)
		if err != nil {
			return nil, err
		}
		first := s.Turn
		s.Phase = rules.PhaseDraft
		s.Draft = &Draft{
			Level:  p.Level,
			First:  first,
			Picker: first,
			Init:   [2]InitRolls{p.Setup.Init[P1].clone(), p.Setup.Init[P2].clone()},
		}
		s.Draft.Pools[first] = append([]string(nil), p.Pool...)
		return s, nil
	}
	return nil, fmt.Errorf("not a bootstrap action: %s", a.Type)
}

// newState merges caller setup into the fixed skeleton: board filled in spiral order,
// markets dealt from the top of each deck, second mover holding one privilege.
func newState(setup Setup) (*GameState, error) {
	if !setup.FirstPlayer.Valid() {
		return nil, fmt.Errorf("invalid first player %q", setup.FirstPlayer)
	}
	s := &GameState{
		MatchID:    setup.MatchID,
		Mode:       setup.Mode,
		Turn:       setup.FirstPlayer,
		Phase:      rules.PhaseIdle,
		Winner:     NoPlayer,
		ResumeTo:   NoPlayer,
		Pending:    newPending(),
		RoyalCourt: cards.CloneAll(setup.RoyalCourt),
	}
	if s.Mode == "" {
		s.Mode = ModeLocal
	}

	bag := append([]gems.Gem(nil), setup.Bag...)
	for _, cell := range gems.SpiralOrder() {
		if len(bag) == 0 {
			break
		}
		s.Board.Set(cell, bag[0])
		bag = bag[1:]
	}
	s.Bag = bag

	for i, level := range rules.Levels {
		deck := cards.CloneAll(setup.Decks[i])
		market := make([]cards.Card, rules.MarketSlots[level])
		for slot := range market {
			if len(deck) == 0 {
				break
			}
			market[slot] = deck[0]
			deck = deck[1:]
		}
		s.Market[i] = market
		s.Decks[i] = deck
	}

	s.Player(setup.FirstPlayer.Opponent()).Privileges = 1
	return s, nil
}

// assignBuff gives p a fresh assignment of buff id and applies its init effects.
func (r *Reducer) assignBuff(s *GameState, p Player, id string, rolls InitRolls) error {
	tpl, ok := r.buffs.Get(id)
	if !ok {
		return fmt.Errorf("unknown buff %s", id)
	}
	s.Player(p).Buff = buffs.Assign(tpl)
	applyInit(s, p, rolls)
	return nil
}

// applyInit runs a buff's one-time effects with caller-resolved randomness.
func applyInit(s *GameState, p Player, rolls InitRolls) {
	ps := s.Player(p)
	eff := ps.Buff.Buff.Effect.OnInit

	ps.ExtraPrivileges += eff.Privileges
	ps.ExtraCrowns += eff.Crowns
	ps.ExtraPoints += eff.Points
	for i := 0; i < eff.RandomGems && i < len(rolls.Gems); i++ {
		if rolls.Gems[i].IsBasic() {
			s.grantExtra(p, rolls.Gems[i], 1)
		}
	}
	s.grantExtra(p, gems.Pearl, eff.Pearls)
	s.grantExtra(p, gems.Gold, eff.Gold)

	if eff.ChooseColor && rolls.DiscountColor.IsBasic() {
		ps.Buff.State.Set(buffs.KeyDiscountColor, int(rolls.DiscountColor))
	}
	if eff.Reserve && len(s.Decks[0]) > 0 && len(ps.Reserved) < rules.MaxReserved {
		i := indexOfCard(s.Decks[0], rolls.ReserveCardID)
		if i < 0 {
			i = 0
		}
		ps.Reserved = append(ps.Reserved, s.Decks[0][i])
		s.Decks[0] = removeCard(s.Decks[0], i)
	}
}
