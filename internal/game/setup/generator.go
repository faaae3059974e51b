// Package setup is the caller-side source of randomness. Everything it produces is
// baked into action payloads so the reducer itself never draws a random number.
package setup

import (
	"fmt"
	"math/rand"

	"github.com/gemduel/gemduel-go/internal/game"
	"github.com/gemduel/gemduel-go/internal/game/buffs"
	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"github.com/google/uuid"
)

// Pool sizes for the two draft rounds.
const (
	FirstPoolSize  = 3
	SecondPoolSize = 4
	StartingRolls  = 3
)

// Generator resolves every random choice of a match from one seed.
// It is not safe for concurrent use.
type Generator struct {
	rng   *rand.Rand
	cards *cards.Registry
	buffs *buffs.Registry
}

// New returns a generator seeded with seed.
func New(seed int64, cardReg *cards.Registry, buffReg *buffs.Registry) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), cards: cardReg, buffs: buffReg}
}

// Options selects the fixed parts of a new match.
type Options struct {
	Mode        game.Mode
	FirstPlayer game.Player
	Buffs       [2]string
}

// Setup deals a new match: a shuffled bag, shuffled decks and the init rolls both
// players' buffs will consume.
func (g *Generator) Setup(opts Options) (game.Setup, error) {
	matchID, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return game.Setup{}, fmt.Errorf("match id: %w", err)
	}
	s := game.Setup{
		MatchID:     matchID.String(),
		Mode:        opts.Mode,
		FirstPlayer: opts.FirstPlayer,
		Bag:         g.bag(),
		Buffs:       opts.Buffs,
	}

	for i, level := range rules.Levels {
		deck, err := g.deck(g.cards.LevelTemplates(level))
		if err != nil {
			return game.Setup{}, err
		}
		s.Decks[i] = deck
	}
	royals, err := g.deck(g.cards.RoyalTemplates())
	if err != nil {
		return game.Setup{}, err
	}
	s.RoyalCourt = royals

	// Reserve rolls point past the market so an init reservation never empties a slot.
	level1 := s.Decks[0]
	for _, p := range game.Players {
		rolls := game.InitRolls{DiscountColor: g.BasicColor()}
		for i := 0; i < StartingRolls; i++ {
			rolls.Gems = append(rolls.Gems, g.BasicColor())
		}
		if slots := rules.MarketSlots[1]; len(level1) > slots {
			rolls.ReserveCardID = level1[slots+g.rng.Intn(len(level1)-slots)].ID
		}
		s.Init[p] = rolls
	}
	return s, nil
}

func (g *Generator) bag() []gems.Gem {
	counts := map[gems.Color]int{gems.Pearl: rules.PearlCount, gems.Gold: rules.GoldCount}
	for _, c := range gems.BasicColors {
		counts[c] = rules.BasicGemsPerColor
	}
	var bag []gems.Gem
	for _, c := range gems.AllColors {
		for i := 1; i <= counts[c]; i++ {
			bag = append(bag, gems.Gem{ID: fmt.Sprintf("%s-%d", c, i), Color: c})
		}
	}
	g.rng.Shuffle(len(bag), func(i, j int) { bag[i], bag[j] = bag[j], bag[i] })
	return bag
}

func (g *Generator) deck(templates []string) ([]cards.Card, error) {
	var deck []cards.Card
	for _, tpl := range templates {
		for n := 0; n < g.cards.Copies(tpl); n++ {
			id, err := uuid.NewRandomFromReader(g.rng)
			if err != nil {
				return nil, fmt.Errorf("card id: %w", err)
			}
			card, err := g.cards.Instantiate(tpl, id.String())
			if err != nil {
				return nil, err
			}
			deck = append(deck, card)
		}
	}
	g.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck, nil
}

// BasicColor draws a uniformly random basic color.
func (g *Generator) BasicColor() gems.Color {
	return gems.BasicColors[g.rng.Intn(len(gems.BasicColors))]
}

// BagColor draws the color of a random basic gem in the bag, or NoColor.
func (g *Generator) BagColor(s *game.GameState) gems.Color {
	var basic []gems.Color
	for _, gem := range s.Bag {
		if gem.Color.IsBasic() {
			basic = append(basic, gem.Color)
		}
	}
	if len(basic) == 0 {
		return gems.NoColor
	}
	return basic[g.rng.Intn(len(basic))]
}

// ReplenishOrder shuffles the bag into a draw order for REPLENISH.
func (g *Generator) ReplenishOrder(s *game.GameState) []string {
	ids := make([]string, len(s.Bag))
	for i, gem := range s.Bag {
		ids[i] = gem.ID
	}
	g.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// FirstPool draws one buff of the given power level from each of FirstPoolSize
// distinct categories.
func (g *Generator) FirstPool(level int) []string {
	reg := g.buffs.AtLevel(level)
	cats := append([]buffs.Category(nil), buffs.Categories...)
	g.rng.Shuffle(len(cats), func(i, j int) { cats[i], cats[j] = cats[j], cats[i] })

	var pool []string
	for _, c := range cats {
		ids := reg.ByCategory(c)
		if len(ids) == 0 {
			continue
		}
		pool = append(pool, ids[g.rng.Intn(len(ids))])
		if len(pool) == FirstPoolSize {
			break
		}
	}
	return pool
}

// SecondPool draws SecondPoolSize buffs of the given power level outside the first
// pick's category.
func (g *Generator) SecondPool(firstPick string, level int) []string {
	tpl, _ := g.buffs.Get(firstPick)
	ids := g.buffs.AtLevel(level).Except(tpl.Category)
	g.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > SecondPoolSize {
		ids = ids[:SecondPoolSize]
	}
	return ids
}
