package game

import (
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/gems"
)

// mintGem creates a gem returning to the bag. Ids are derived from a counter so both
// peers mint the same ids.
func (s *GameState) mintGem(c gems.Color) gems.Gem {
	s.GemSerial++
	return gems.Gem{ID: fmt.Sprintf("%s-r%d", c, s.GemSerial), Color: c}
}

// removeGems takes n units of c out of p's inventory, extra units first. Regular units
// go back to the bag; extra units vanish. It reports false and changes nothing when
// p holds fewer than n.
func (s *GameState) removeGems(p Player, c gems.Color, n int) bool {
	ps := s.Player(p)
	if n <= 0 {
		return true
	}
	if ps.Inventory.Get(c) < n {
		return false
	}
	extra := min(n, ps.ExtraAllocation.Get(c))
	ps.ExtraAllocation.Spend(c, extra)
	ps.Inventory.Spend(c, n)
	for i := 0; i < n-extra; i++ {
		s.Bag = append(s.Bag, s.mintGem(c))
	}
	return true
}

// transferGem moves one unit of c from one player to another. An extra unit stays
// extra for its new owner.
func (s *GameState) transferGem(from, to Player, c gems.Color) bool {
	src, dst := s.Player(from), s.Player(to)
	if !src.Inventory.Spend(c, 1) {
		return false
	}
	dst.Inventory.Add(c, 1)
	if src.ExtraAllocation.Spend(c, 1) {
		dst.ExtraAllocation.Add(c, 1)
	}
	return true
}

// takeFromBag moves the first bag gem of color c to p.
func (s *GameState) takeFromBag(p Player, c gems.Color) bool {
	for i, g := range s.Bag {
		if g.Color == c {
			s.Bag = append(s.Bag[:i:i], s.Bag[i+1:]...)
			s.Player(p).Inventory.Add(c, 1)
			return true
		}
	}
	return false
}

// takeFromBoard moves the gem at cell to p.
func (s *GameState) takeFromBoard(p Player, cell gems.Coord) gems.Gem {
	g := s.Board.Clear(cell)
	if !g.IsZero() {
		s.Player(p).Inventory.Add(g.Color, 1)
	}
	return g
}

// grantExtra creates buff-funded gems that never came from the supply.
func (s *GameState) grantExtra(p Player, c gems.Color, n int) {
	if n <= 0 || !c.Valid() {
		return
	}
	ps := s.Player(p)
	ps.Inventory.Add(c, n)
	ps.ExtraAllocation.Add(c, n)
}

// grantPrivilege gives p one standard token: a free one if any, otherwise one taken
// from the opponent. Nothing happens when p already holds all of them.
func (s *GameState) grantPrivilege(p Player) {
	if s.FreePrivileges() > 0 {
		s.Player(p).Privileges++
		return
	}
	opp := s.Player(p.Opponent())
	if opp.Privileges > 0 {
		opp.Privileges--
		s.Player(p).Privileges++
	}
}
