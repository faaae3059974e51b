package game

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
	"golang.org/x/crypto/blake2b"
)

// Checksum hashes the sync-relevant subset of a state. Board cells contribute their
// color only, so peers holding differently-minted gem ids still agree.
func Checksum(s *GameState) string {
	if s == nil {
		return ""
	}
	sum := blake2b.Sum256([]byte(canonical(s)))
	return hex.EncodeToString(sum[:])
}

// canonical builds a representation independent of map order and instance ids.
func canonical(s *GameState) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%s|%s\n", s.Turn, s.Phase, s.Mode, s.Winner)

	buf.WriteString("BOARD:")
	for r := range s.Board {
		for c := range s.Board[r] {
			g := s.Board[r][c]
			if g.IsZero() {
				buf.WriteByte('.')
			} else {
				buf.WriteString(g.Color.String())
			}
			buf.WriteByte(',')
		}
	}
	buf.WriteString("\n")

	for _, p := range Players {
		ps := s.Player(p)
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%s|%d|%d|%d|%d|%t|%t|%s|%d\n",
			p,
			inventoryKey(ps.Inventory),
			inventoryKey(ps.ExtraAllocation),
			ps.Privileges,
			ps.ExtraPrivileges,
			ps.ExtraPoints,
			ps.ExtraCrowns,
			ps.Milestones.Three,
			ps.Milestones.Six,
			ps.Buff.ID(),
			ps.TurnsCompleted,
		)
		fmt.Fprintf(&buf, "  TABLEAU:%s\n", sortedIDs(ps.Tableau))
		fmt.Fprintf(&buf, "  RESERVED:%s\n", sortedIDs(ps.Reserved))
		fmt.Fprintf(&buf, "  ROYALS:%s\n", sortedIDs(ps.Royals))
	}

	// Market order matters: slots are positional.
	for i, level := range s.Market {
		ids := make([]string, len(level))
		for j, c := range level {
			ids[j] = c.ID
		}
		fmt.Fprintf(&buf, "MARKET%d:%s\n", i+1, strings.Join(ids, ","))
	}

	return buf.String()
}

func inventoryKey(inv gems.Inventory) string {
	parts := make([]string, len(inv))
	for i, n := range inv {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "/")
}

func sortedIDs(list []cards.Card) string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
