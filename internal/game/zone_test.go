package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(z *Zone) []int {
	var result []int
	for _, c := range z.Cards() {
		result = append(result, c.ID)
	}
	return result
}

func TestOrderedZoneInsert(t *testing.T) {
	z := NewZone(ZoneGraveyard, 1, ZoneOrdered, false)

	z.Insert(&Card{ID: 1}, -1, 0)
	z.Insert(&Card{ID: 2}, -1, 0)
	z.Insert(&Card{ID: 3}, 0, 9)
	z.Insert(&Card{ID: 4}, 1, 0)
	z.Insert(&Card{ID: 5}, 100, 0)

	assert.Equal(t, []int{3, 4, 1, 2, 5}, ids(z))
	card, _ := z.At(0)
	assert.Equal(t, Position{}, card.Position)
}

func TestTableZoneInsertKeepsPosition(t *testing.T) {
	z := NewZone(ZoneBattlefield, 1, ZoneTable, false)

	z.Insert(&Card{ID: 1}, 3, 2)
	z.Insert(&Card{ID: 2}, 0, 0)

	assert.Equal(t, []int{1, 2}, ids(z))
	card, _ := z.Find(1)
	assert.Equal(t, Position{X: 3, Y: 2}, card.Position)
}

func TestZoneTake(t *testing.T) {
	z := NewZone(ZoneLibrary, 1, ZoneOrdered, true)
	z.Insert(&Card{ID: HiddenCardID}, -1, 0)
	z.Insert(&Card{ID: 7}, -1, 0)
	z.Insert(&Card{ID: HiddenCardID}, -1, 0)

	card, ok := z.Take(7, 0)
	require.True(t, ok)
	assert.Equal(t, 7, card.ID)

	card, ok = z.Take(HiddenCardID, 1)
	require.True(t, ok)
	assert.Equal(t, HiddenCardID, card.ID)
	assert.Equal(t, 1, z.Len())

	_, ok = z.Take(HiddenCardID, 5)
	assert.False(t, ok)
	_, ok = z.Take(HiddenCardID, -1)
	assert.False(t, ok)
}

func TestZoneTakeVisibleNeedsKnownID(t *testing.T) {
	z := NewZone(ZoneGraveyard, 1, ZoneOrdered, false)
	z.Insert(&Card{ID: 4}, -1, 0)

	_, ok := z.Take(9, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, z.Len())

	card, ok := z.Take(HiddenCardID, 0)
	require.True(t, ok)
	assert.Equal(t, 4, card.ID)
}

func TestZoneFindIgnoresHiddenID(t *testing.T) {
	z := NewZone(ZoneLibrary, 1, ZoneOrdered, true)
	z.Insert(&Card{ID: HiddenCardID}, -1, 0)

	card, idx := z.Find(HiddenCardID)
	assert.Nil(t, card)
	assert.Equal(t, -1, idx)
}

func TestZoneCardsAreCopies(t *testing.T) {
	z := NewZone(ZoneBattlefield, 1, ZoneTable, false)
	z.Insert(&Card{ID: 1}, 0, 0)

	cards := z.Cards()
	cards[0].Tapped = true

	card, _ := z.Find(1)
	assert.False(t, card.Tapped)
}

func TestZoneRef(t *testing.T) {
	z := NewZone(ZoneExile, 4, ZoneOrdered, false)
	z.Insert(&Card{ID: 1}, -1, 0)

	ref := z.Ref()
	assert.Equal(t, 4, ref.OwnerID)
	assert.Equal(t, ZoneExile, ref.Name)
	assert.Equal(t, 1, ref.CardCount)

	z.Clear()
	assert.Equal(t, 0, z.Len())
	assert.Equal(t, 1, ref.CardCount)
}

func TestCardSetAttr(t *testing.T) {
	c := &Card{ID: 1}

	require.NoError(t, c.SetAttr("tapped", "1"))
	assert.True(t, c.Tapped)
	require.NoError(t, c.SetAttr("facedown", "1"))
	assert.True(t, c.FaceDown)
	require.NoError(t, c.SetAttr("counters", " 12 "))
	assert.Equal(t, 12, c.Counters)

	assert.Error(t, c.SetAttr("tapped", "2"))
	assert.Error(t, c.SetAttr("counters", "lots"))
	assert.Error(t, c.SetAttr("flying", "1"))
}

func TestClampCounters(t *testing.T) {
	assert.Equal(t, 0, ClampCounters(-5))
	assert.Equal(t, 0, ClampCounters(0))
	assert.Equal(t, 500, ClampCounters(500))
	assert.Equal(t, MaxCounters, ClampCounters(MaxCounters))
	assert.Equal(t, MaxCounters, ClampCounters(MaxCounters+1))
}

func TestPhaseNext(t *testing.T) {
	assert.Equal(t, PhaseUntap, NoPhase.Next())
	assert.Equal(t, PhaseUpkeep, PhaseUntap.Next())
	assert.Equal(t, PhaseUntap, PhaseEnd.Next())
	assert.Equal(t, 11, PhaseCount)

	p := PhaseUntap
	for i := 0; i < PhaseCount; i++ {
		p = p.Next()
	}
	assert.Equal(t, PhaseUntap, p)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "MAIN1", PhaseMain1.String())
	assert.Equal(t, "NONE", NoPhase.String())
	assert.Equal(t, "PHASE_42", Phase(42).String())
}

func TestPlayerRegistry(t *testing.T) {
	r := NewPlayerRegistry()
	require.NoError(t, r.Add(NewPlayer(2, "bob", false, nil)))
	require.NoError(t, r.Add(NewPlayer(1, "alice", true, nil)))

	err := r.Add(NewPlayer(1, "again", false, nil))
	assert.ErrorIs(t, err, ErrDuplicate)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].ID())
	assert.Equal(t, 1, all[1].ID())

	local, ok := r.Local()
	require.True(t, ok)
	assert.Equal(t, "alice", local.Name())

	_, ok = r.Active()
	assert.False(t, ok)
	assert.False(t, r.SetActive(9))
	assert.True(t, r.SetActive(2))
	active, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, 2, active.ID())
}

func TestSpectatorRegistry(t *testing.T) {
	r := NewSpectatorRegistry()

	assert.True(t, r.Add("carol"))
	assert.True(t, r.Add("dave"))
	assert.False(t, r.Add("carol"))
	assert.Equal(t, []string{"carol", "dave"}, r.Names())

	assert.True(t, r.Remove("carol"))
	assert.False(t, r.Remove("carol"))
	assert.False(t, r.Contains("carol"))
	assert.Equal(t, 1, r.Len())
}
