package game

import "github.com/Techsmart07/Cockatrice/internal/game/notify"

// Well-known zone names as they appear on the wire.
const (
	ZoneLibrary     = "deck"
	ZoneSideboard   = "sb"
	ZoneHand        = "hand"
	ZoneBattlefield = "table"
	ZoneGraveyard   = "grave"
	ZoneExile       = "rfg"
)

// ZoneKind determines how insert coordinates are interpreted.
type ZoneKind int

const (
	// ZoneOrdered zones are sequences; x is the insert index, y is ignored.
	ZoneOrdered ZoneKind = iota
	// ZoneTable zones are grids; cards are appended and keep their (x, y).
	ZoneTable
)

// Zone is an ordered, named card container owned by one player.
// Index 0 of an ordered zone is its top.
type Zone struct {
	name   string
	owner  int
	kind   ZoneKind
	hidden bool
	cards  []*Card
}

// NewZone creates an empty zone.
func NewZone(name string, owner int, kind ZoneKind, hidden bool) *Zone {
	return &Zone{
		name:   name,
		owner:  owner,
		kind:   kind,
		hidden: hidden,
		cards:  make([]*Card, 0),
	}
}

func (z *Zone) Name() string   { return z.name }
func (z *Zone) Owner() int     { return z.owner }
func (z *Zone) Kind() ZoneKind { return z.kind }
func (z *Zone) Hidden() bool   { return z.hidden }
func (z *Zone) Len() int       { return len(z.cards) }

// Find returns the card with id and its index. Hidden cards cannot be found by id.
func (z *Zone) Find(id int) (*Card, int) {
	if id == HiddenCardID {
		return nil, -1
	}
	for i, c := range z.cards {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// At returns the card at index i.
func (z *Zone) At(i int) (*Card, bool) {
	if i < 0 || i >= len(z.cards) {
		return nil, false
	}
	return z.cards[i], true
}

// Take removes and returns a card. A known id is looked up directly. The index
// given by position is used only for HiddenCardID or when the zone is hidden,
// since a hidden zone holds cards whose ids this client never learned.
func (z *Zone) Take(id, position int) (*Card, bool) {
	idx := -1
	if id != HiddenCardID {
		_, idx = z.Find(id)
	}
	if idx < 0 {
		if id != HiddenCardID && !z.hidden {
			return nil, false
		}
		if position < 0 || position >= len(z.cards) {
			return nil, false
		}
		idx = position
	}
	card := z.cards[idx]
	z.cards = append(z.cards[:idx], z.cards[idx+1:]...)
	return card, true
}

// Insert places card into the zone. For ordered zones x is the insert index
// (negative or past the end appends). For table zones the card is appended at (x, y).
func (z *Zone) Insert(card *Card, x, y int) {
	if z.kind == ZoneTable {
		card.Position = Position{X: x, Y: y}
		z.cards = append(z.cards, card)
		return
	}
	card.Position = Position{}
	if x < 0 || x >= len(z.cards) {
		z.cards = append(z.cards, card)
		return
	}
	z.cards = append(z.cards, nil)
	copy(z.cards[x+1:], z.cards[x:])
	z.cards[x] = card
}

// Clear empties the zone.
func (z *Zone) Clear() {
	z.cards = make([]*Card, 0)
}

// Cards returns copies of the zone contents in order.
func (z *Zone) Cards() []Card {
	result := make([]Card, len(z.cards))
	for i, c := range z.cards {
		result[i] = *c
	}
	return result
}

// Ref converts the zone to a notification payload.
func (z *Zone) Ref() *notify.ZoneRef {
	return &notify.ZoneRef{
		OwnerID:   z.owner,
		Name:      z.name,
		CardCount: len(z.cards),
	}
}

// standardZones returns the zone set every player owns. The hand is hidden
// for everyone except the local player.
func standardZones(owner int, local bool) []*Zone {
	return []*Zone{
		NewZone(ZoneLibrary, owner, ZoneOrdered, true),
		NewZone(ZoneSideboard, owner, ZoneOrdered, true),
		NewZone(ZoneHand, owner, ZoneOrdered, !local),
		NewZone(ZoneBattlefield, owner, ZoneTable, false),
		NewZone(ZoneGraveyard, owner, ZoneOrdered, false),
		NewZone(ZoneExile, owner, ZoneOrdered, false),
	}
}
