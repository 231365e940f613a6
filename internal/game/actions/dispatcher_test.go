package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Techsmart07/Cockatrice/internal/game"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []protocol.Command
	failAt int
}

func (s *recordingSender) Send(_ context.Context, cmd protocol.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.sent)+1 == s.failAt {
		return errors.New("connection reset")
	}
	s.sent = append(s.sent, cmd)
	return nil
}

func onTable(cards ...game.Card) []Selected {
	result := make([]Selected, len(cards))
	for i, c := range cards {
		result[i] = Selected{Card: c, Zone: game.ZoneBattlefield}
	}
	return result
}

func targetIDs(cmds []protocol.Command) []string {
	result := make([]string, len(cmds))
	for i, cmd := range cmds {
		result[i] = cmd.Args[1]
	}
	return result
}

func TestAddCounterSkipsSaturatedCards(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, nil)
	selection := onTable(
		game.Card{ID: 1, Counters: game.MaxCounters},
		game.Card{ID: 2, Counters: 0},
		game.Card{ID: 3, Counters: game.MaxCounters},
		game.Card{ID: 4, Counters: 0},
		game.Card{ID: 5, Counters: 0},
	)

	cmds, err := d.Dispatch(context.Background(), AddCounter, selection)
	require.NoError(t, err)

	require.Len(t, cmds, 3)
	assert.ElementsMatch(t, []string{"2", "4", "5"}, targetIDs(cmds))
	for _, cmd := range cmds {
		assert.Equal(t, protocol.CmdSetCardAttr, cmd.Name)
		assert.Equal(t, []string{game.ZoneBattlefield, cmd.Args[1], protocol.AttrCounters, "1"}, cmd.Args)
	}
	assert.Equal(t, cmds, sender.sent)
}

func TestRemoveCounterAtZeroIsNoop(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)

	cmds, err := d.Plan(RemoveCounter, onTable(game.Card{ID: 1}, game.Card{ID: 2, Counters: 4}))
	require.NoError(t, err)

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{game.ZoneBattlefield, "2", protocol.AttrCounters, "3"}, cmds[0].Args)
}

func TestTapAndUntapGuards(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)
	selection := onTable(game.Card{ID: 1, Tapped: true}, game.Card{ID: 2})

	tap, err := d.Plan(Tap, selection)
	require.NoError(t, err)
	require.Len(t, tap, 1)
	assert.Equal(t, []string{game.ZoneBattlefield, "2", protocol.AttrTapped, "1"}, tap[0].Args)

	untap, err := d.Plan(Untap, selection)
	require.NoError(t, err)
	require.Len(t, untap, 1)
	assert.Equal(t, []string{game.ZoneBattlefield, "1", protocol.AttrTapped, "0"}, untap[0].Args)
}

func TestToggleDoesntUntap(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)

	cmds, err := d.Plan(ToggleDoesntUntap, onTable(game.Card{ID: 1, DoesntUntap: true}))
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "0", cmds[0].Args[3])
}

func TestFlipKeepsPosition(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)

	cmds, err := d.Plan(Flip, onTable(game.Card{ID: 9, Position: game.Position{X: 4, Y: 1}}))
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, protocol.CmdMoveCard, cmds[0].Name)
	assert.Equal(t, []string{"9", game.ZoneBattlefield, game.ZoneBattlefield, "4", "1", "1"}, cmds[0].Args)
}

func TestMoveTargets(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)
	card := game.Card{ID: 7, FaceDown: true, Position: game.Position{X: 3, Y: 2}}

	cases := []struct {
		action Action
		want   []string
	}{
		{MoveToTopLibrary, []string{"7", game.ZoneBattlefield, game.ZoneLibrary, "0", "0", "0"}},
		{MoveToBottomLibrary, []string{"7", game.ZoneBattlefield, game.ZoneLibrary, "-1", "0", "0"}},
		{MoveToGraveyard, []string{"7", game.ZoneBattlefield, game.ZoneGraveyard, "0", "0", "0"}},
		{MoveToExile, []string{"7", game.ZoneBattlefield, game.ZoneExile, "0", "0", "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.action.String(), func(t *testing.T) {
			cmds, err := d.Plan(tc.action, onTable(card))
			require.NoError(t, err)
			require.Len(t, cmds, 1)
			assert.Equal(t, protocol.CmdMoveCard, cmds[0].Name)
			assert.Equal(t, tc.want, cmds[0].Args)
		})
	}
}

func TestSetCountersClampsAndAppliesUniformly(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, nil)
	selection := onTable(game.Card{ID: 1}, game.Card{ID: 2, Counters: 10}, game.Card{ID: 3, Counters: game.MaxCounters})

	cmds, err := d.SetCounters(context.Background(), 5000, selection)
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	for _, cmd := range cmds {
		assert.Equal(t, "999", cmd.Args[3])
	}

	cmds, err = d.SetCounters(context.Background(), -2, selection)
	require.NoError(t, err)
	for _, cmd := range cmds {
		assert.Equal(t, "0", cmd.Args[3])
	}
	assert.Len(t, sender.sent, 6)
}

func TestFixedSeedGivesFixedOrder(t *testing.T) {
	selection := onTable(
		game.Card{ID: 1}, game.Card{ID: 2}, game.Card{ID: 3}, game.Card{ID: 4},
		game.Card{ID: 5}, game.Card{ID: 6}, game.Card{ID: 7}, game.Card{ID: 8},
	)

	first, err := NewDispatcher(&recordingSender{}, 42, nil).Plan(Tap, selection)
	require.NoError(t, err)
	second, err := NewDispatcher(&recordingSender{}, 42, nil).Plan(Tap, selection)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, targetIDs(first))
	// The caller's selection is left in place.
	assert.Equal(t, 1, selection[0].Card.ID)
}

func TestShuffleIsAPermutation(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 7, nil)
	selection := onTable(game.Card{ID: 1}, game.Card{ID: 2}, game.Card{ID: 3})

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		order := ""
		for _, s := range d.shuffle(selection) {
			order += string(rune('0' + s.Card.ID))
		}
		seen[order] = true
	}
	// All 3! orders show up over enough draws.
	assert.Len(t, seen, 6)
}

func TestDispatchStopsOnSendError(t *testing.T) {
	sender := &recordingSender{failAt: 2}
	d := NewDispatcher(sender, 1, nil)

	sent, err := d.Dispatch(context.Background(), Tap, onTable(game.Card{ID: 1}, game.Card{ID: 2}, game.Card{ID: 3}))

	require.Error(t, err)
	assert.Len(t, sent, 1)
	assert.Len(t, sender.sent, 1)
}

func TestUnknownAction(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, nil)

	_, err := d.Dispatch(context.Background(), Action(99), nil)
	assert.Error(t, err)
	assert.Equal(t, "ACTION_99", Action(99).String())
}

func TestNextPhaseAndTurn(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, nil)

	cmd, err := d.NextPhase(context.Background(), game.PhaseEnd)
	require.NoError(t, err)
	assert.Equal(t, protocol.SetActivePhase(int(game.PhaseUntap)), cmd)

	cmd, err = d.NextPhase(context.Background(), game.PhaseDraw)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, cmd.Args)

	cmd, err = d.NextTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdNextTurn, cmd.Name)
	assert.Len(t, sender.sent, 3)
}

func TestSelect(t *testing.T) {
	zone := game.NewZone(game.ZoneBattlefield, 1, game.ZoneTable, false)
	zone.Insert(&game.Card{ID: 1, Name: "Forest"}, 0, 0)
	zone.Insert(&game.Card{ID: 2, Name: "Bear", Tapped: true}, 1, 0)

	selection := Select(zone, 2, 99)

	require.Len(t, selection, 1)
	assert.Equal(t, "Bear", selection[0].Card.Name)
	assert.Equal(t, game.ZoneBattlefield, selection[0].Zone)
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("grave")
	require.True(t, ok)
	assert.Equal(t, MoveToGraveyard, a)

	_, ok = ParseAction("shuffle")
	assert.False(t, ok)
}
