package game

import (
	"testing"

	"github.com/gemduel/gemduel-go/internal/game/gems"
	"github.com/gemduel/gemduel-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTakeThreeOfAColorGrantsPrivilege covers taking a full line of one color.
func TestTakeThreeOfAColorGrantsPrivilege(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	for col := 0; col < 3; col++ {
		place(s, 0, col, gems.Blue)
	}

	next := apply(t, r, s, ActionTakeGems, TakeGemsPayload{Cells: []gems.Coord{cell(0, 0), cell(0, 1), cell(0, 2)}})

	assert.Empty(t, next.Toast)
	assert.Equal(t, 3, next.Players[P1].Inventory.Get(gems.Blue))
	assert.Equal(t, 1, next.Players[P2].Privileges)
	assert.Equal(t, P2, next.Turn)
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, 1, next.Players[P1].TurnsCompleted)

	// The input snapshot is untouched.
	assert.Equal(t, 0, s.Players[P1].Inventory.Get(gems.Blue))
	assert.Equal(t, 3, s.Board.CountColor(gems.Blue))
}

func TestPrivilegeBorrowedWhenPoolEmpty(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	s.Players[P1].Privileges = 2
	s.Players[P2].Privileges = 1
	place(s, 1, 0, gems.Pearl)
	place(s, 1, 1, gems.Pearl)

	next := apply(t, r, s, ActionTakeGems, TakeGemsPayload{Cells: []gems.Coord{cell(1, 0), cell(1, 1)}})

	assert.Equal(t, 1, next.Players[P1].Privileges)
	assert.Equal(t, 2, next.Players[P2].Privileges)
	assert.Equal(t, 0, next.FreePrivileges())
}

// TestExcessGemsDeferTurn checks the cap interrupt and its resumption.
func TestExcessGemsDeferTurn(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	s.Players[P1].Inventory = gems.Of(map[gems.Color]int{gems.Red: 4, gems.Black: 4})
	for col := 0; col < 3; col++ {
		place(s, 2, col, gems.Blue)
	}

	next := apply(t, r, s, ActionTakeGems, TakeGemsPayload{Cells: []gems.Coord{cell(2, 0), cell(2, 1), cell(2, 2)}})
	require.Equal(t, rules.PhaseDiscardExcessGems, next.Phase)
	assert.Equal(t, P1, next.Turn)
	assert.Equal(t, P2, next.ResumeTo)
	assert.Equal(t, 11, next.Players[P1].Inventory.Total())

	next = apply(t, r, next, ActionDiscardGem, ColorPayload{Color: gems.Blue})
	assert.Empty(t, next.Toast)
	assert.Equal(t, 10, next.Players[P1].Inventory.Total())
	assert.Equal(t, P2, next.Turn)
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, NoPlayer, next.ResumeTo)
	require.Len(t, next.Bag, 1)
	assert.Equal(t, "blue-r1", next.Bag[0].ID)
}

// TestWinningPurchaseSkipsInterrupts checks a win lands on the buying call itself.
func TestWinningPurchaseSkipsInterrupts(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	s.Players[P1].ExtraPoints = 17
	s.Players[P2].Inventory = gems.Of(map[gems.Color]int{gems.Blue: 2})
	s.Market[2][0] = devCard("winner", 3, gems.Red, 3, nil, "STEAL")

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "winner"})

	assert.Equal(t, P1, next.Winner)
	assert.Equal(t, rules.PhaseIdle, next.Phase)
	assert.Equal(t, rules.PhaseGameOver, next.Status())
	assert.Empty(t, next.Pending.Abilities)
	assert.Equal(t, 2, next.Players[P2].Inventory.Get(gems.Blue))

	after := apply(t, r, next, ActionCancelReserve, nil)
	assert.Equal(t, "the game is over", after.Toast)
	assert.Equal(t, Checksum(next), Checksum(after))
}

// TestRecyclerRefundsBasicOnly checks the refund picks the most paid basic color.
func TestRecyclerRefundsBasicOnly(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	assignBuff(t, s, P1, "recycler")
	s.Players[P1].Inventory = gems.Of(map[gems.Color]int{gems.Red: 5, gems.Pearl: 1})
	s.Market[0][0] = devCard("c1", 1, gems.Blue, 0, map[gems.Color]int{gems.Red: 3, gems.Pearl: 1})

	next := apply(t, r, s, ActionBuyCard, BuyCardPayload{CardID: "c1"})

	require.Empty(t, next.Toast)
	assert.Equal(t, 3, next.Players[P1].Inventory.Get(gems.Red))
	assert.Equal(t, 0, next.Players[P1].Inventory.Get(gems.Pearl))
	assert.Equal(t, regularGems(s), regularGems(next))
}

// TestCancelReserveIsIdempotent cancels a staged reservation twice.
func TestCancelReserveIsIdempotent(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 0, 0, gems.Gold)
	s.Market[0][0] = devCard("c1", 1, gems.Blue, 0, nil)

	staged := apply(t, r, s, ActionInitiateReserve, CardPayload{CardID: "c1"})
	require.Equal(t, rules.PhaseReserveWaitingGem, staged.Phase)
	require.NotNil(t, staged.Pending.Reserve)

	once := apply(t, r, staged, ActionCancelReserve, nil)
	twice := apply(t, r, once, ActionCancelReserve, nil)
	for _, st := range []*GameState{once, twice} {
		assert.Equal(t, rules.PhaseIdle, st.Phase)
		assert.Nil(t, st.Pending.Reserve)
		assert.Empty(t, st.Toast)
	}
}

func TestRuleErrorLeavesStateUnchanged(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 0, 0, gems.Gold)
	s.Feedback = []string{"stale"}

	next := apply(t, r, s, ActionTakeGems, TakeGemsPayload{Cells: []gems.Coord{cell(0, 0)}})

	assert.NotEmpty(t, next.Toast)
	assert.Nil(t, next.Feedback)
	assert.Equal(t, Checksum(s), Checksum(next))
	assert.Equal(t, gems.Gold, next.Board.At(cell(0, 0)).Color)
}

func TestSelectionGeometryRejected(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 0, 0, gems.Red)
	place(s, 1, 2, gems.Red)

	next := apply(t, r, s, ActionTakeGems, TakeGemsPayload{Cells: []gems.Coord{cell(0, 0), cell(1, 2)}})
	assert.Contains(t, next.Toast, "invalid selection")
	assert.Equal(t, P1, next.Turn)
}

func TestApplyEdgeCases(t *testing.T) {
	r := newTestReducer(t)

	assert.Nil(t, r.Apply(nil, MustAction(ActionTakeGems, nil)))

	s := blankState()
	assert.Same(t, s, r.Apply(s, Action{Type: "NOT_A_THING"}))

	malformed := r.Apply(s, Action{Type: ActionTakeGems, Payload: []byte(`{"cells":"x"}`)})
	assert.Contains(t, malformed.Toast, "malformed")
}

// TestSyncReplacesState covers FORCE_SYNC and FLATTEN bypassing the handlers.
func TestSyncReplacesState(t *testing.T) {
	r := newTestReducer(t)
	remote := blankState()
	remote.Turn = P2
	remote.Players[P1].ExtraPoints = 7

	for _, typ := range []ActionType{ActionForceSync, ActionFlatten} {
		next := r.Apply(blankState(), MustAction(typ, SyncPayload{State: remote}))
		require.NotNil(t, next)
		assert.Equal(t, P2, next.Turn)
		assert.Equal(t, 7, next.Players[P1].ExtraPoints)
		assert.Equal(t, Checksum(remote), Checksum(next))
	}
}

func TestReplenishFillsSpiralAndGrantsPrivilege(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	place(s, 4, 4, gems.Black)
	addToBag(s, gems.Red, 1)
	addToBag(s, gems.Green, 1)

	order := []string{s.Bag[1].ID}
	next := apply(t, r, s, ActionReplenish, ReplenishPayload{Order: order})

	assert.Empty(t, next.Toast)
	assert.Empty(t, next.Bag)
	assert.Equal(t, gems.Green, next.Board.At(cell(2, 2)).Color)
	assert.Equal(t, gems.Red, next.Board.At(cell(1, 2)).Color)
	assert.Equal(t, 1, next.Players[P2].Privileges)
	assert.Equal(t, P1, next.Turn, "replenishing does not end the turn")

	empty := blankState()
	assert.Equal(t, "the bag is empty", apply(t, r, empty, ActionReplenish, nil).Toast)
}

func TestReplenishRewardAlternates(t *testing.T) {
	r := newTestReducer(t)
	s := blankState()
	assignBuff(t, s, P1, "opportunist")
	s.Players[P2].Inventory = gems.Of(map[gems.Color]int{gems.White: 1})
	addToBag(s, gems.Red, 3)

	next := apply(t, r, s, ActionReplenish, ReplenishPayload{BonusColor: gems.Red, StealColor: gems.White})
	assert.Equal(t, 1, next.Players[P1].Inventory.Get(gems.Red))

	// Clear the board so the second refill has room.
	for _, c := range gems.SpiralOrder() {
		next.Board.Clear(c)
	}
	addToBag(next, gems.Blue, 1)
	next = apply(t, r, next, ActionReplenish, ReplenishPayload{BonusColor: gems.Red, StealColor: gems.White})
	assert.Equal(t, 1, next.Players[P1].Inventory.Get(gems.White))
	assert.Equal(t, 0, next.Players[P2].Inventory.Get(gems.White))
}
