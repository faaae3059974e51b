package game

import (
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/cost"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
)

// cardSource says where a purchasable card currently sits.
type cardSource struct {
	card     cards.Card
	reserved bool
	level    int // market level index
	slot     int // market slot, or index into Reserved
}

func locateCard(d *GameState, p Player, id string) (cardSource, error) {
	if l, slot, ok := d.MarketCard(id); ok {
		return cardSource{card: d.Market[l][slot], level: l, slot: slot}, nil
	}
	if i := indexOfCard(d.Player(p).Reserved, id); i >= 0 {
		return cardSource{card: d.Player(p).Reserved[i], reserved: true, slot: i}, nil
	}
	return cardSource{}, rulef("card %s is not available", id)
}

// refillSlot replaces a departed market card with the top of its deck.
func refillSlot(d *GameState, level, slot int) {
	if len(d.Decks[level]) == 0 {
		d.Market[level][slot] = cards.Card{}
		return
	}
	d.Market[level][slot] = d.Decks[level][0]
	d.Decks[level] = d.Decks[level][1:]
}

func (src cardSource) remove(d *GameState, p Player) {
	if src.reserved {
		ps := d.Player(p)
		ps.Reserved = removeCard(ps.Reserved, src.slot)
		return
	}
	refillSlot(d, src.level, src.slot)
}

// tableauColors returns the basic colors present in a tableau, in color order.
func tableauColors(ps *PlayerState) []gems.Color {
	bonus := ps.Bonuses()
	var out []gems.Color
	for _, c := range gems.BasicColors {
		if bonus.Get(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (r *Reducer) initiateBuyJoker(d *GameState, a Action) error {
	var p CardPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	src, err := locateCard(d, d.Turn, p.CardID)
	if err != nil {
		return err
	}
	if !src.card.Joker {
		return rulef("card %s has no wild bonus", p.CardID)
	}
	ps := d.Current()
	colors := tableauColors(ps)
	if len(colors) == 0 {
		return rulef("a wild card needs a colored card in your tableau")
	}
	tx := cost.Calculate(src.card, ps.Inventory, ps.Tableau, ps.Buff, src.reserved)
	if !tx.Affordable {
		return rulef("cannot afford %s", p.CardID)
	}

	best := colors[0]
	points := ps.ColorPoints()
	for _, c := range colors[1:] {
		if points.Get(c) > points.Get(best) {
			best = c
		}
	}
	if wouldWinWith(ps, src.card, best) {
		return r.completePurchase(d, src, best)
	}
	d.Phase = rules.PhaseSelectCardColor
	d.Pending.BuyCardID = p.CardID
	return nil
}

// wouldWinWith reports whether buying card with bonus color c wins outright.
func wouldWinWith(ps *PlayerState, card cards.Card, c gems.Color) bool {
	trial := *ps
	card.Bonus = c
	trial.Tableau = append(append([]cards.Card(nil), ps.Tableau...), card)
	return hasWon(&trial)
}

func (r *Reducer) cancelBuyJoker(d *GameState, _ Action) error {
	if d.Phase == rules.PhaseSelectCardColor {
		d.Phase = rules.PhaseIdle
	}
	d.Pending.BuyCardID = ""
	return nil
}

func (r *Reducer) buyCard(d *GameState, a Action) error {
	p := BuyCardPayload{Color: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	switch d.Phase {
	case rules.PhaseIdle:
	case rules.PhaseSelectCardColor:
		if p.CardID != d.Pending.BuyCardID {
			return rulef("finish buying %s first", d.Pending.BuyCardID)
		}
	default:
		return rulef("not allowed during %s", d.Phase)
	}
	src, err := locateCard(d, d.Turn, p.CardID)
	if err != nil {
		return err
	}
	if src.card.Joker {
		ok := false
		for _, c := range tableauColors(d.Current()) {
			ok = ok || c == p.Color
		}
		if !ok {
			return rulef("choose a color already in your tableau")
		}
	}
	return r.completePurchase(d, src, p.Color)
}

// completePurchase settles payment, moves the card and resolves its abilities.
func (r *Reducer) completePurchase(d *GameState, src cardSource, color gems.Color) error {
	p := d.Turn
	ps := d.Player(p)
	card := src.card.Clone()
	tx := cost.Calculate(card, ps.Inventory, ps.Tableau, ps.Buff, src.reserved)
	if !tx.Affordable {
		return rulef("cannot afford %s", card.ID)
	}

	for _, c := range gems.AllColors {
		d.removeGems(p, c, tx.GemsPaid.Get(c))
	}
	if ps.Buff.Passive().Recycler {
		if c := cost.RefundColor(tx.GemsPaid); c != gems.NoColor && d.takeFromBag(p, c) {
			d.feedback("recycled a " + c.String() + " gem")
		}
	}

	src.remove(d, p)
	if card.Joker {
		card.Bonus = color
	}
	ps.Tableau = append(ps.Tableau, card)

	if card.Crowns > 0 && ps.Buff.Passive().CrownPearl && d.takeFromBag(p, gems.Pearl) {
		d.feedback("crown pearl")
	}

	d.Phase = rules.PhaseIdle
	d.Pending.BuyCardID = ""
	r.resolveCard(d, p, card, p.Opponent())
	return nil
}

func (r *Reducer) initiateReserve(d *GameState, a Action) error {
	var p CardPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := canReserve(d); err != nil {
		return err
	}
	if _, _, ok := d.MarketCard(p.CardID); !ok {
		return rulef("card %s is not in the market", p.CardID)
	}
	if d.Board.CountColor(gems.Gold) == 0 {
		return r.commitReserve(d, PendingReserve{CardID: p.CardID}, nil)
	}
	d.Phase = rules.PhaseReserveWaitingGem
	d.Pending.Reserve = &PendingReserve{CardID: p.CardID}
	return nil
}

func (r *Reducer) initiateReserveDeck(d *GameState, a Action) error {
	var p LevelPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := canReserve(d); err != nil {
		return err
	}
	if err := deckAvailable(d, p.Level); err != nil {
		return err
	}
	if d.Board.CountColor(gems.Gold) == 0 {
		return r.commitReserve(d, PendingReserve{Level: p.Level}, nil)
	}
	d.Phase = rules.PhaseReserveWaitingGem
	d.Pending.Reserve = &PendingReserve{Level: p.Level}
	return nil
}

func canReserve(d *GameState) error {
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	if len(d.Current().Reserved) >= rules.MaxReserved {
		return rulef("you already hold %d reserved cards", rules.MaxReserved)
	}
	return nil
}

func deckAvailable(d *GameState, level int) error {
	if level < 1 || level > len(d.Decks) {
		return rulef("no deck of level %d", level)
	}
	if len(d.Decks[level-1]) == 0 {
		return rulef("the level %d deck is empty", level)
	}
	return nil
}

func (r *Reducer) reserveCard(d *GameState, a Action) error {
	var p ReserveCardPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	target := PendingReserve{CardID: p.CardID}
	if err := checkReserveStep(d, target); err != nil {
		return err
	}
	if _, _, ok := d.MarketCard(p.CardID); !ok {
		return rulef("card %s is not in the market", p.CardID)
	}
	return r.commitReserve(d, target, p.Gold)
}

func (r *Reducer) reserveDeck(d *GameState, a Action) error {
	var p ReserveDeckPayload
	if err := a.decode(&p); err != nil {
		return err
	}
	target := PendingReserve{Level: p.Level}
	if err := checkReserveStep(d, target); err != nil {
		return err
	}
	if err := deckAvailable(d, p.Level); err != nil {
		return err
	}
	return r.commitReserve(d, target, p.Gold)
}

// checkReserveStep allows a one-step reserve from IDLE or the commit of a staged one.
func checkReserveStep(d *GameState, target PendingReserve) error {
	switch d.Phase {
	case rules.PhaseIdle:
		return canReserve(d)
	case rules.PhaseReserveWaitingGem:
		if d.Pending.Reserve == nil || *d.Pending.Reserve != target {
			return rulef("a different reservation is in progress")
		}
		return nil
	}
	return rulef("not allowed during %s", d.Phase)
}

// commitReserve takes the gold pickup, when gold is on the board, and moves the card.
func (r *Reducer) commitReserve(d *GameState, target PendingReserve, gold *gems.Coord) error {
	p := d.Turn
	if d.Board.CountColor(gems.Gold) > 0 {
		if gold == nil {
			return rulef("pick a gold gem to reserve")
		}
		if g := d.Board.At(*gold); g.IsZero() || g.Color != gems.Gold {
			return rulef("cell %d,%d holds no gold", gold.Row, gold.Col)
		}
		d.takeFromBoard(p, *gold)
	} else if gold != nil {
		return rulef("there is no gold on the board")
	}

	ps := d.Player(p)
	if target.CardID != "" {
		l, slot, _ := d.MarketCard(target.CardID)
		ps.Reserved = append(ps.Reserved, d.Market[l][slot])
		refillSlot(d, l, slot)
	} else {
		lvl := target.Level - 1
		ps.Reserved = append(ps.Reserved, d.Decks[lvl][0])
		d.Decks[lvl] = d.Decks[lvl][1:]
	}

	d.Phase = rules.PhaseIdle
	d.Pending.Reserve = nil
	r.finalizeTurn(d, p.Opponent())
	return nil
}

func (r *Reducer) cancelReserve(d *GameState, _ Action) error {
	if d.Phase == rules.PhaseReserveWaitingGem {
		d.Phase = rules.PhaseIdle
	}
	d.Pending.Reserve = nil
	return nil
}

func (r *Reducer) discardReserved(d *GameState, a Action) error {
	p := DiscardReservedPayload{Color: gems.NoColor}
	if err := a.decode(&p); err != nil {
		return err
	}
	if err := requirePhase(d, rules.PhaseIdle); err != nil {
		return err
	}
	ps := d.Current()
	if !ps.Buff.Passive().DiscardReserved {
		return rulef("discarding reserved cards needs the right buff")
	}
	// Stored one-based so an absent key means never used.
	if ps.Buff.State.Get(buffs.KeyLastDiscardTurn) == ps.TurnsCompleted+1 {
		return rulef("already discarded a reserved card this turn")
	}
	i := indexOfCard(ps.Reserved, p.CardID)
	if i < 0 {
		return rulef("card %s is not reserved", p.CardID)
	}
	card := ps.Reserved[i]
	ps.Reserved = removeCard(ps.Reserved, i)
	if card.Level >= 1 && card.Level <= len(d.Decks) {
		d.Decks[card.Level-1] = append(d.Decks[card.Level-1], card)
	}
	ps.Buff.State.Set(buffs.KeyLastDiscardTurn, ps.TurnsCompleted+1)

	if p.Color.IsBasic() && d.takeFromBag(d.Turn, p.Color) {
		d.feedback("traded for a " + p.Color.String() + " gem")
	} else {
		d.feedback("no gem to trade for")
	}
	return nil
}
