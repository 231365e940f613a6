package game

import (
	"strconv"
	"strings"

	"github.com/Techsmart07/Cockatrice/internal/game/counters"
	"github.com/Techsmart07/Cockatrice/internal/game/notify"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"go.uber.org/zap"
)

// Player is one seated participant and the zones and counters it owns.
type Player struct {
	id        int
	name      string
	local     bool
	active    bool
	left      bool
	zones     map[string]*Zone
	zoneOrder []string
	counters  *counters.Pool
	logger    *zap.Logger
}

// NewPlayer creates a player with the standard zone set.
func NewPlayer(id int, name string, local bool, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Player{
		id:       id,
		name:     name,
		local:    local,
		zones:    make(map[string]*Zone),
		counters: counters.NewPool(),
		logger:   logger.With(zap.Int("player_id", id)),
	}
	for _, z := range standardZones(id, local) {
		p.zones[z.Name()] = z
		p.zoneOrder = append(p.zoneOrder, z.Name())
	}
	return p
}

func (p *Player) ID() int          { return p.id }
func (p *Player) Name() string     { return p.name }
func (p *Player) Local() bool      { return p.local }
func (p *Player) Active() bool     { return p.active }
func (p *Player) Left() bool       { return p.left }
func (p *Player) setActive(b bool) { p.active = b }

// Zone returns the zone with the given name.
func (p *Player) Zone(name string) (*Zone, bool) {
	z, ok := p.zones[name]
	return z, ok
}

// ZoneNames returns zone names in their canonical order.
func (p *Player) ZoneNames() []string {
	return append([]string(nil), p.zoneOrder...)
}

// holding returns the zone that holds the card with id, if any.
func (p *Player) holding(id int) (*Zone, bool) {
	for _, name := range p.zoneOrder {
		if c, _ := p.zones[name].Find(id); c != nil {
			return p.zones[name], true
		}
	}
	return nil, false
}

// Counters returns copies of the player's counters ordered by id.
func (p *Player) Counters() []*counters.Counter {
	return p.counters.All()
}

// CounterByName returns a copy of the player's counter called name, such as "life".
func (p *Player) CounterByName(name string) (*counters.Counter, bool) {
	return p.counters.FindByName(name)
}

// Ref converts the player to a notification payload.
func (p *Player) Ref() *notify.PlayerRef {
	return &notify.PlayerRef{
		ID:     p.id,
		Name:   p.name,
		Local:  p.local,
		Active: p.active,
		Left:   p.left,
	}
}

func (p *Player) markLocal() {
	p.local = true
	if hand, ok := p.zones[ZoneHand]; ok {
		hand.hidden = false
	}
}

// Apply mutates this player's state for an event scoped to it and returns the
// notifications to publish once the mutation is complete. Malformed payloads and
// unknown references are logged and leave the player unchanged.
func (p *Player) Apply(ev protocol.Event) []notify.Notification {
	var (
		out []notify.Notification
		err error
	)
	switch ev.Type {
	case protocol.EventPlayerID:
		out, err = p.applyPlayerID(ev)
	case protocol.EventName:
		out, err = p.applyName(ev)
	case protocol.EventSetupZones:
		out, err = p.applySetupZones(ev)
	case protocol.EventCreateToken:
		out, err = p.applyCreateToken(ev)
	case protocol.EventSetCardAttr:
		out, err = p.applySetCardAttr(ev)
	case protocol.EventAddCounter:
		out, err = p.applyAddCounter(ev)
	case protocol.EventSetCounter:
		out, err = p.applySetCounter(ev)
	case protocol.EventDelCounter:
		out, err = p.applyDelCounter(ev)
	case protocol.EventMoveCard:
		out, err = p.applyMoveCard(ev)
	case protocol.EventDraw:
		out, err = p.applyDraw(ev)
	default:
		p.logger.Debug("ignoring event not scoped to a player",
			zap.Stringer("type", ev.Type),
		)
		return nil
	}
	if err != nil {
		p.logger.Warn("discarding player event",
			zap.Stringer("type", ev.Type),
			zap.Strings("data", ev.Data),
			zap.Error(err),
		)
		return nil
	}
	return out
}

func (p *Player) notification(kind notify.Kind) notify.Notification {
	return notify.New(kind, p.Ref())
}

func (p *Player) applyPlayerID(ev protocol.Event) ([]notify.Notification, error) {
	id, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	if id != p.id {
		return nil, errUnknownRef("player", strconv.Itoa(id))
	}
	p.markLocal()
	return []notify.Notification{p.notification(notify.KindLocalPlayerAssigned)}, nil
}

func (p *Player) applyName(ev protocol.Event) ([]notify.Notification, error) {
	name, ok := ev.Field(0)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, ev.RequireFields(1)
	}
	n := p.notification(notify.KindPlayerRenamed)
	n.Text = p.name
	p.name = name
	n.Value = name
	return []notify.Notification{n}, nil
}

func (p *Player) applySetupZones(ev protocol.Event) ([]notify.Notification, error) {
	deckSize, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	sbSize, err := ev.IntField(1)
	if err != nil {
		return nil, err
	}
	if deckSize < 0 || sbSize < 0 {
		return nil, errOutOfRange("zone size", deckSize, sbSize)
	}

	// A new game setup starts from scratch; the server re-announces counters after it.
	for _, z := range p.zones {
		z.Clear()
	}
	p.counters.Clear()
	fillHidden(p.zones[ZoneLibrary], deckSize)
	fillHidden(p.zones[ZoneSideboard], sbSize)

	n := p.notification(notify.KindZonesSetUp)
	n.Amount = deckSize
	n.Amount2 = sbSize
	return []notify.Notification{n}, nil
}

func fillHidden(z *Zone, count int) {
	for i := 0; i < count; i++ {
		z.Insert(&Card{ID: HiddenCardID, FaceDown: true}, -1, 0)
	}
}

func (p *Player) applyCreateToken(ev protocol.Event) ([]notify.Notification, error) {
	if err := ev.RequireFields(6); err != nil {
		return nil, err
	}
	zone, ok := p.zones[ev.Data[0]]
	if !ok {
		return nil, errUnknownRef("zone", ev.Data[0])
	}
	id, err := ev.IntField(1)
	if err != nil {
		return nil, err
	}
	x, err := ev.IntField(4)
	if err != nil {
		return nil, err
	}
	y, err := ev.IntField(5)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, errOutOfRange("token id", id)
	}
	if _, taken := p.holding(id); taken {
		return nil, errDuplicateRef("card", id)
	}

	card := &Card{ID: id, Name: ev.Data[2], PowTough: ev.Data[3], Token: true}
	zone.Insert(card, x, y)

	n := p.notification(notify.KindTokenCreated)
	n.Zone = zone.Ref()
	n.Card = card.Ref()
	return []notify.Notification{n}, nil
}

func (p *Player) applySetCardAttr(ev protocol.Event) ([]notify.Notification, error) {
	if err := ev.RequireFields(4); err != nil {
		return nil, err
	}
	zone, ok := p.zones[ev.Data[0]]
	if !ok {
		return nil, errUnknownRef("zone", ev.Data[0])
	}
	id, err := ev.IntField(1)
	if err != nil {
		return nil, err
	}
	attr, value := ev.Data[2], ev.Data[3]

	var targets []*Card
	if id == HiddenCardID {
		targets = zone.cards
	} else {
		card, _ := zone.Find(id)
		if card == nil {
			return nil, errUnknownRef("card", strconv.Itoa(id))
		}
		targets = []*Card{card}
	}

	// Validate against a scratch copy so a bad value leaves every card untouched.
	scratch := &Card{}
	if err := scratch.SetAttr(attr, value); err != nil {
		return nil, err
	}

	out := make([]notify.Notification, 0, len(targets))
	for _, card := range targets {
		_ = card.SetAttr(attr, value)
		n := p.notification(notify.KindCardAttrSet)
		n.Zone = zone.Ref()
		n.Card = card.Ref()
		n.Attr = attr
		n.Value = value
		out = append(out, n)
	}
	return out, nil
}

func (p *Player) applyAddCounter(ev protocol.Event) ([]notify.Notification, error) {
	if err := ev.RequireFields(4); err != nil {
		return nil, err
	}
	id, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	value, err := ev.IntField(3)
	if err != nil {
		return nil, err
	}
	counter := &counters.Counter{ID: id, Name: ev.Data[1], Color: ev.Data[2], Value: value}
	p.counters.Add(counter)
	return []notify.Notification{p.counterNotification(notify.KindCounterSet, counter)}, nil
}

func (p *Player) applySetCounter(ev protocol.Event) ([]notify.Notification, error) {
	id, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	value, err := ev.IntField(1)
	if err != nil {
		return nil, err
	}
	if !p.counters.Set(id, value) {
		return nil, errUnknownRef("counter", strconv.Itoa(id))
	}
	counter, _ := p.counters.Get(id)
	return []notify.Notification{p.counterNotification(notify.KindCounterSet, counter)}, nil
}

func (p *Player) applyDelCounter(ev protocol.Event) ([]notify.Notification, error) {
	id, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	counter, ok := p.counters.Get(id)
	if !ok {
		return nil, errUnknownRef("counter", strconv.Itoa(id))
	}
	p.counters.Remove(id)
	return []notify.Notification{p.counterNotification(notify.KindCounterRemoved, counter)}, nil
}

func (p *Player) counterNotification(kind notify.Kind, c *counters.Counter) notify.Notification {
	n := p.notification(kind)
	n.Counter = &notify.CounterRef{ID: c.ID, Name: c.Name, Color: c.Color, Value: c.Value}
	return n
}

// move_card payload: cardId|startZone|position|targetZone|x|y|faceDown[|name]
func (p *Player) applyMoveCard(ev protocol.Event) ([]notify.Notification, error) {
	if err := ev.RequireFields(7); err != nil {
		return nil, err
	}
	cardID, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	position, err := ev.IntField(2)
	if err != nil {
		return nil, err
	}
	x, err := ev.IntField(4)
	if err != nil {
		return nil, err
	}
	y, err := ev.IntField(5)
	if err != nil {
		return nil, err
	}
	faceDown, err := ev.BoolField(6)
	if err != nil {
		return nil, err
	}
	source, ok := p.zones[ev.Data[1]]
	if !ok {
		return nil, errUnknownRef("zone", ev.Data[1])
	}
	target, ok := p.zones[ev.Data[3]]
	if !ok {
		return nil, errUnknownRef("zone", ev.Data[3])
	}

	// A card revealed out of a hidden zone takes cardID, which must not be in use.
	if cardID != HiddenCardID {
		if holder, taken := p.holding(cardID); taken && holder != source {
			return nil, errDuplicateRef("card", cardID)
		}
	}

	card, ok := source.Take(cardID, position)
	if !ok {
		return nil, errUnknownRef("card", strconv.Itoa(cardID))
	}
	from := source.Ref()

	if source != target {
		card.resetState()
	}
	if cardID != HiddenCardID {
		card.ID = cardID
	}
	if name, ok := ev.Field(7); ok && name != "" {
		card.Name = name
	}
	card.FaceDown = faceDown
	if target.hidden {
		card.conceal()
	}
	target.Insert(card, x, y)

	n := p.notification(notify.KindCardMoved)
	n.FromZone = from
	n.Zone = target.Ref()
	n.Card = card.Ref()
	n.Amount = position
	return []notify.Notification{n}, nil
}

// draw payload: count[|id|name]... ; identities are only present for the drawing client.
func (p *Player) applyDraw(ev protocol.Event) ([]notify.Notification, error) {
	count, err := ev.IntField(0)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errOutOfRange("draw count", count)
	}
	library := p.zones[ZoneLibrary]
	hand := p.zones[ZoneHand]

	out := make([]notify.Notification, 0, count)
	for i := 0; i < count; i++ {
		card, ok := library.Take(HiddenCardID, 0)
		if !ok {
			p.logger.Warn("draw past end of library",
				zap.Int("requested", count),
				zap.Int("drawn", i),
			)
			break
		}
		card.resetState()
		if idField, ok := ev.Field(1 + 2*i); ok {
			if id, err := strconv.Atoi(idField); err == nil {
				card.ID = id
			}
			card.Name, _ = ev.Field(2 + 2*i)
			card.FaceDown = false
		}
		if hand.hidden {
			card.conceal()
		}
		hand.Insert(card, -1, 0)

		n := p.notification(notify.KindCardMoved)
		n.FromZone = library.Ref()
		n.Zone = hand.Ref()
		n.Card = card.Ref()
		out = append(out, n)
	}
	return out, nil
}

// Copy creates a deep copy of the player, detached from the live session.
func (p *Player) Copy() *Player {
	clone := &Player{
		id:        p.id,
		name:      p.name,
		local:     p.local,
		active:    p.active,
		left:      p.left,
		zones:     make(map[string]*Zone, len(p.zones)),
		zoneOrder: append([]string(nil), p.zoneOrder...),
		counters:  p.counters.Copy(),
		logger:    p.logger,
	}
	for name, z := range p.zones {
		zc := NewZone(z.name, z.owner, z.kind, z.hidden)
		for _, c := range z.cards {
			zc.cards = append(zc.cards, c.Copy())
		}
		clone.zones[name] = zc
	}
	return clone
}
