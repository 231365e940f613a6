package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// playSession drives a short two-player game through r.
func playSession(r *Router) {
	r.PlayersListed([]protocol.PlayerInfo{
		{ID: 1, Name: "alice", Local: true},
		{ID: 2, Name: "bob"},
	})
	r.Dispatch(public(7, "carol", protocol.EventJoin, "1"))
	r.Dispatch(private(1, "alice", protocol.EventSetupZones, "40", "15"))
	r.Dispatch(public(2, "bob", protocol.EventSetupZones, "40", "15"))
	r.Dispatch(public(1, "alice", protocol.EventGameStart))
	r.Dispatch(public(1, "alice", protocol.EventSetActivePlayer, "1"))
	r.Dispatch(public(1, "alice", protocol.EventSetActivePhase, "2"))
	r.Dispatch(private(1, "alice", protocol.EventDraw, "1", "42", "Forest"))
	r.Dispatch(public(1, "alice", protocol.EventDraw, "1"))
	r.Dispatch(private(1, "alice", protocol.EventMoveCard, "42", "hand", "0", "table", "0", "0", "0"))
	r.Dispatch(public(1, "alice", protocol.EventMoveCard, "42", "hand", "0", "table", "0", "0", "0"))
	r.Dispatch(public(1, "alice", protocol.EventSetCardAttr, "table", "42", "tapped", "1"))
	r.Dispatch(public(2, "bob", protocol.EventAddCounter, "1", "life", "white", "20"))
	r.Dispatch(public(2, "bob", protocol.EventSetCounter, "1", "17"))
	r.Dispatch(public(2, "bob", protocol.EventCreateToken, "table", "900", "Soldier", "1/1", "1", "1"))
}

func TestChecksumDeterministic(t *testing.T) {
	hashes := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		r := NewRouter(nil, nil, nil)
		playSession(r)
		sum, err := r.Snapshot().ComputeChecksum()
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Version)
		hashes[sum.Hash] = struct{}{}
	}
	assert.Len(t, hashes, 1)
}

func TestChecksumDifferentStates(t *testing.T) {
	r := NewRouter(nil, nil, nil)
	playSession(r)
	before, err := r.Snapshot().ComputeChecksum()
	require.NoError(t, err)

	r.Dispatch(public(2, "bob", protocol.EventSetCardAttr, "table", "900", "tapped", "1"))

	ok, err := r.Snapshot().VerifyChecksum(before)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournalReplayReproducesSession(t *testing.T) {
	live := NewRouter(nil, nil, nil)
	journal := NewJournal()
	live.AddRecorder(journal)
	playSession(live)

	expected, err := live.Snapshot().ComputeChecksum()
	require.NoError(t, err)

	replayed := NewRouter(nil, nil, nil)
	n := journal.Replay(replayed, -1)
	assert.Equal(t, journal.Len(), n)

	ok, err := replayed.Snapshot().VerifyChecksum(expected)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJournalPartialReplay(t *testing.T) {
	live := NewRouter(nil, nil, nil)
	journal := NewJournal()
	live.AddRecorder(journal)
	playSession(live)

	partial := NewRouter(nil, nil, nil)
	journal.Replay(partial, 1)

	s := partial.Snapshot()
	assert.Equal(t, 2, s.Players().Len())
	assert.Equal(t, 0, s.Spectators().Len())
	assert.False(t, s.Started())
}

func TestJournalRecordCopiesData(t *testing.T) {
	j := NewJournal()
	ev := public(1, "alice", protocol.EventSay, "hello")

	j.Record(ev)
	ev.Data[0] = "changed"

	assert.Equal(t, "hello", j.Entries()[0].Event.Data[0])
}

func TestJournalSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	live := NewRouter(nil, nil, nil)
	journal := NewJournal()
	live.AddRecorder(journal)
	playSession(live)

	require.NoError(t, SaveJournal(zap.NewNop(), journal, dir))
	_, err := os.Stat(filepath.Join(dir, journal.SessionID.String()+".journal"))
	require.NoError(t, err)

	loaded, err := LoadJournalFromFile(dir, journal.SessionID)
	require.NoError(t, err)
	assert.Equal(t, journal.SessionID, loaded.SessionID)
	assert.Equal(t, journal.Entries(), loaded.Entries())

	replayed := NewRouter(nil, nil, nil)
	loaded.Replay(replayed, -1)
	expected, err := live.Snapshot().ComputeChecksum()
	require.NoError(t, err)
	ok, err := replayed.Snapshot().VerifyChecksum(expected)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadJournalMissingFile(t *testing.T) {
	_, err := LoadJournalFromFile(t.TempDir(), uuid.New())
	assert.Error(t, err)
}
