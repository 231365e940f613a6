package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Techsmart07/Cockatrice/internal/game"
	"github.com/Techsmart07/Cockatrice/internal/game/actions"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []protocol.Command
}

func (s *fakeSender) Send(_ context.Context, cmd protocol.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, cmd)
	return nil
}

func (s *fakeSender) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.sent))
	for i, cmd := range s.sent {
		names[i] = cmd.Name
	}
	return names
}

func newTestConsole(t *testing.T) (*Console, *fakeSender, *bytes.Buffer) {
	t.Helper()
	router := game.NewRouter(nil, nil, nil)
	router.PlayersListed([]protocol.PlayerInfo{
		{ID: 1, Name: "alice", Local: true},
		{ID: 2, Name: "bob"},
	})
	router.Dispatch(protocol.Event{Public: true, PlayerID: 1, PlayerName: "alice",
		Type: protocol.EventCreateToken, Data: []string{"table", "10", "Goblin", "1/1", "0", "0"}})
	router.Dispatch(protocol.Event{Public: true, PlayerID: 1, PlayerName: "alice",
		Type: protocol.EventCreateToken, Data: []string{"table", "11", "Elf", "1/1", "1", "0"}})
	router.Dispatch(protocol.Event{Public: true, PlayerID: 1, PlayerName: "alice",
		Type: protocol.EventAddCounter, Data: []string{"0", "life", "white", "18"}})

	sender := &fakeSender{}
	out := &bytes.Buffer{}
	return New(router, actions.NewDispatcher(sender, 3, nil), sender, out, nil), sender, out
}

func TestConsoleTapSelection(t *testing.T) {
	c, sender, out := newTestConsole(t)

	require.NoError(t, c.Execute(context.Background(), "tap table 10 11 99"))

	assert.Equal(t, []string{protocol.CmdSetCardAttr, protocol.CmdSetCardAttr}, sender.names())
	assert.Equal(t, "2 selected, 2 sent\n", out.String())
}

func TestConsoleCounters(t *testing.T) {
	c, sender, _ := newTestConsole(t)

	require.NoError(t, c.Execute(context.Background(), "counters 1200 table 10"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"table", "10", protocol.AttrCounters, "999"}, sender.sent[0].Args)
}

func TestConsolePhaseTurnAndChat(t *testing.T) {
	c, sender, _ := newTestConsole(t)
	ctx := context.Background()

	require.NoError(t, c.Execute(ctx, "phase"))
	require.NoError(t, c.Execute(ctx, "turn"))
	require.NoError(t, c.Execute(ctx, "say good  game"))
	require.NoError(t, c.Execute(ctx, "players"))

	require.Len(t, sender.sent, 4)
	assert.Equal(t, protocol.SetActivePhase(int(game.PhaseUntap)), sender.sent[0])
	assert.Equal(t, protocol.CmdNextTurn, sender.sent[1].Name)
	assert.Equal(t, protocol.Say("good  game"), sender.sent[2])
	assert.Equal(t, protocol.ListPlayers(), sender.sent[3])
}

func TestConsoleUsageErrors(t *testing.T) {
	c, sender, _ := newTestConsole(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Execute(ctx, "dance"), ErrUsage)
	assert.ErrorIs(t, c.Execute(ctx, "tap table"), ErrUsage)
	assert.ErrorIs(t, c.Execute(ctx, "tap table x"), ErrUsage)
	assert.ErrorIs(t, c.Execute(ctx, "counters many table 10"), ErrUsage)
	assert.ErrorIs(t, c.Execute(ctx, "say"), ErrUsage)
	assert.Error(t, c.Execute(ctx, "tap library 10"))
	assert.NoError(t, c.Execute(ctx, "   "))
	assert.Empty(t, sender.sent)
}

func TestConsoleNoLocalPlayer(t *testing.T) {
	sender := &fakeSender{}
	c := New(game.NewRouter(nil, nil, nil), actions.NewDispatcher(sender, 1, nil), sender, &bytes.Buffer{}, nil)

	assert.Error(t, c.Execute(context.Background(), "tap table 1"))
}

func TestConsoleState(t *testing.T) {
	c, _, out := newTestConsole(t)

	require.NoError(t, c.Execute(context.Background(), "state"))

	text := out.String()
	assert.Contains(t, text, "started=false")
	assert.Contains(t, text, "1 alice [local] life=18")
	assert.Contains(t, text, "table=2")
	assert.Contains(t, text, "2 bob []")
}

func TestConsoleRunReportsErrorsAndContinues(t *testing.T) {
	c, sender, out := newTestConsole(t)

	err := c.Run(context.Background(), strings.NewReader("dance\nturn\n"))

	require.NoError(t, err)
	assert.Contains(t, out.String(), "error: unknown command")
	assert.Equal(t, []string{protocol.CmdNextTurn}, sender.names())
}
