package game

import (
	"encoding/json"
	"fmt"

	"github.com/gemduel/gemduel-go/internal/game/cards"
	"github.com/gemduel/gemduel-go/internal/game/gems"
)

// ActionType tags an Action.
type ActionType string

const (
	ActionInit      ActionType = "INIT"
	ActionInitDraft ActionType = "INIT_DRAFT"
	ActionForceSync ActionType = "FORCE_SYNC"
	ActionFlatten   ActionType = "FLATTEN"

	ActionTakeGems     ActionType = "TAKE_GEMS"
	ActionReplenish    ActionType = "REPLENISH"
	ActionTakeBonusGem ActionType = "TAKE_BONUS_GEM"
	ActionStealGem     ActionType = "STEAL_GEM"
	ActionDiscardGem   ActionType = "DISCARD_GEM"

	ActionInitiateBuyJoker    ActionType = "INITIATE_BUY_JOKER"
	ActionCancelBuyJoker      ActionType = "CANCEL_BUY_JOKER"
	ActionBuyCard             ActionType = "BUY_CARD"
	ActionInitiateReserve     ActionType = "INITIATE_RESERVE"
	ActionInitiateReserveDeck ActionType = "INITIATE_RESERVE_DECK"
	ActionReserveCard         ActionType = "RESERVE_CARD"
	ActionReserveDeck         ActionType = "RESERVE_DECK"
	ActionCancelReserve       ActionType = "CANCEL_RESERVE"
	ActionDiscardReserved     ActionType = "DISCARD_RESERVED"

	ActionSelectRoyal ActionType = "SELECT_ROYAL"

	ActionActivatePrivilege ActionType = "ACTIVATE_PRIVILEGE"
	ActionUsePrivilege      ActionType = "USE_PRIVILEGE"
	ActionCancelPrivilege   ActionType = "CANCEL_PRIVILEGE"

	ActionSelectBuff ActionType = "SELECT_BUFF"

	ActionDebugAddGems    ActionType = "DEBUG_ADD_GEMS"
	ActionDebugAddPoints  ActionType = "DEBUG_ADD_POINTS"
	ActionDebugAddCrowns  ActionType = "DEBUG_ADD_CROWNS"
	ActionDebugForceRoyal ActionType = "DEBUG_FORCE_ROYAL"
)

// IsBootstrap reports whether the action builds a fresh state.
func (t ActionType) IsBootstrap() bool {
	return t == ActionInit || t == ActionInitDraft
}

// IsSync reports whether the action replaces state wholesale.
func (t ActionType) IsSync() bool {
	return t == ActionForceSync || t == ActionFlatten
}

// Action is one intent. Every random choice is already resolved inside Payload.
type Action struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewAction encodes payload into an Action. A nil payload yields no payload.
func NewAction(t ActionType, payload any) (Action, error) {
	a := Action{Type: t}
	if payload == nil {
		return a, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Action{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	a.Payload = raw
	return a, nil
}

// MustAction is NewAction for payloads that cannot fail to encode.
func MustAction(t ActionType, payload any) Action {
	a, err := NewAction(t, payload)
	if err != nil {
		panic(err)
	}
	return a
}

// decode fills dst from the payload; dst may carry defaults for omitted fields.
func (a Action) decode(dst any) error {
	if len(a.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.Payload, dst); err != nil {
		return rulef("malformed %s payload", a.Type)
	}
	return nil
}

// InitRolls is the per-player randomness consumed by buff init effects.
type InitRolls struct {
	Gems          []gems.Color `json:"gems,omitempty"`
	ReserveCardID string       `json:"reserveCardId,omitempty"`
	DiscountColor gems.Color   `json:"discountColor"`
}

func (r InitRolls) clone() InitRolls {
	out := r
	if r.Gems != nil {
		out.Gems = append([]gems.Color(nil), r.Gems...)
	}
	return out
}

// Setup is the caller-resolved content of a new match.
type Setup struct {
	MatchID     string          `json:"matchId"`
	Mode        Mode            `json:"mode"`
	FirstPlayer Player          `json:"firstPlayer"`
	Bag         []gems.Gem      `json:"bag"`
	Decks       [3][]cards.Card `json:"decks"`
	RoyalCourt  []cards.Card    `json:"royalCourt"`
	Buffs       [2]string       `json:"buffs"`
	Init        [2]InitRolls    `json:"init"`
}

// InitPayload is the payload of INIT.
type InitPayload struct {
	Setup Setup `json:"setup"`
}

// InitDraftPayload is the payload of INIT_DRAFT.
type InitDraftPayload struct {
	Setup Setup    `json:"setup"`
	Pool  []string `json:"pool"`
	Level int      `json:"level"`
}

// SyncPayload is the payload of FORCE_SYNC and FLATTEN.
type SyncPayload struct {
	State *GameState `json:"state"`
}

// TakeGemsPayload is the payload of TAKE_GEMS: one to three cells in a line.
type TakeGemsPayload struct {
	Cells []gems.Coord `json:"cells"`
}

// ReplenishPayload is the payload of REPLENISH. Order lists bag gem ids in draw order;
// the colors feed the alternating replenish reward.
type ReplenishPayload struct {
	Order      []string   `json:"order,omitempty"`
	BonusColor gems.Color `json:"bonusColor"`
	StealColor gems.Color `json:"stealColor"`
}

// CellPayload names one board cell (TAKE_BONUS_GEM, USE_PRIVILEGE).
type CellPayload struct {
	Cell gems.Coord `json:"cell"`
}

// ColorPayload names one color (STEAL_GEM, DISCARD_GEM).
type ColorPayload struct {
	Color gems.Color `json:"color"`
}

// CardPayload names one card (INITIATE_BUY_JOKER, INITIATE_RESERVE, SELECT_ROYAL).
type CardPayload struct {
	CardID string `json:"cardId"`
}

// BuyCardPayload is the payload of BUY_CARD. Color is the bonus chosen for a joker.
type BuyCardPayload struct {
	CardID string     `json:"cardId"`
	Color  gems.Color `json:"color"`
}

// LevelPayload names a deck level (INITIATE_RESERVE_DECK).
type LevelPayload struct {
	Level int `json:"level"`
}

// ReserveCardPayload is the payload of RESERVE_CARD. Gold is the cell of the gold
// gem taken with the reservation, if any.
type ReserveCardPayload struct {
	CardID string      `json:"cardId"`
	Gold   *gems.Coord `json:"gold,omitempty"`
}

// ReserveDeckPayload is the payload of RESERVE_DECK.
type ReserveDeckPayload struct {
	Level int         `json:"level"`
	Gold  *gems.Coord `json:"gold,omitempty"`
}

// DiscardReservedPayload is the payload of DISCARD_RESERVED. Color is the bag gem
// granted in exchange.
type DiscardReservedPayload struct {
	CardID string     `json:"cardId"`
	Color  gems.Color `json:"color"`
}

// CountPayload is the payload of ACTIVATE_PRIVILEGE.
type CountPayload struct {
	Count int `json:"count"`
}

// SelectBuffPayload is the payload of SELECT_BUFF. The first pick carries the
// second picker's pool.
type SelectBuffPayload struct {
	BuffID   string   `json:"buffId"`
	NextPool []string `json:"nextPool,omitempty"`
}

// DebugGemsPayload is the payload of DEBUG_ADD_GEMS.
type DebugGemsPayload struct {
	Player Player     `json:"player"`
	Color  gems.Color `json:"color"`
	Amount int        `json:"amount"`
}

// DebugAmountPayload is the payload of DEBUG_ADD_POINTS and DEBUG_ADD_CROWNS.
type DebugAmountPayload struct {
	Player Player `json:"player"`
	Amount int    `json:"amount"`
}
