package game

import "fmt"

// Player identifies a seat. P1 is the host in online play.
type Player int

const (
	P1 Player = iota
	P2

	// NoPlayer marks an unset winner or resume target.
	NoPlayer Player = -1
)

// Players lists both seats in order.
var Players = []Player{P1, P2}

// Opponent returns the other seat.
func (p Player) Opponent() Player {
	if p == P1 {
		return P2
	}
	return P1
}

// Valid reports whether p is a real seat.
func (p Player) Valid() bool { return p == P1 || p == P2 }

func (p Player) String() string {
	switch p {
	case P1:
		return "p1"
	case P2:
		return "p2"
	case NoPlayer:
		return ""
	}
	return fmt.Sprintf("player_%d", int(p))
}

// MarshalText encodes the seat as "p1", "p2" or "" for NoPlayer.
func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a seat name.
func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "p1":
		*p = P1
	case "p2":
		*p = P2
	case "":
		*p = NoPlayer
	default:
		return fmt.Errorf("unknown player %q", text)
	}
	return nil
}
