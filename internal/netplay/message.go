// Package netplay replicates a match between a host and a guest. The host is the only
// authority: it applies actions and echoes them; the guest reduces the echoes and
// compares checksums to detect divergence.
package netplay

import (
	"github.com/gemduel/gemduel-go/internal/game"
)

// MessageType tags a wire message.
type MessageType string

const (
	MsgSyncState       MessageType = "SYNC_STATE"
	MsgGameAction      MessageType = "GAME_ACTION"
	MsgGuestRequest    MessageType = "GUEST_REQUEST"
	MsgActionRejected  MessageType = "ACTION_REJECTED"
	MsgRequestFullSync MessageType = "REQUEST_FULL_SYNC"
	MsgPing            MessageType = "HEARTBEAT_PING"
	MsgPong            MessageType = "HEARTBEAT_PONG"
)

// Message is the wire envelope. Only the fields of its type are set.
type Message struct {
	Type MessageType `json:"type"`

	Action   *game.Action    `json:"action,omitempty"`
	Checksum string          `json:"checksum,omitempty"`
	State    *game.GameState `json:"state,omitempty"`
	Reason   string          `json:"reason,omitempty"`

	// Timestamp is the sender's clock in unix milliseconds; a pong echoes the ping's.
	Timestamp int64 `json:"timestamp,omitempty"`
}

func gameAction(a game.Action, checksum string) Message {
	return Message{Type: MsgGameAction, Action: &a, Checksum: checksum}
}

func guestRequest(a game.Action) Message {
	return Message{Type: MsgGuestRequest, Action: &a}
}

// actionRejected tells the guest why the host refused its request.
func actionRejected(a game.Action, reason string) Message {
	return Message{Type: MsgActionRejected, Action: &a, Reason: reason}
}

func syncState(s *game.GameState, reason string) Message {
	return Message{Type: MsgSyncState, State: s, Reason: reason}
}
