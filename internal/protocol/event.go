package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a wire line or payload field cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// EventType identifies the kind of a server-issued game event.
type EventType int

const (
	EventInvalid EventType = iota
	EventSay
	EventJoin
	EventLeave
	EventReadyStart
	EventGameStart
	EventShuffle
	EventRollDie
	EventSetActivePlayer
	EventSetActivePhase
	EventPlayerID
	EventName
	EventCreateToken
	EventSetupZones
	EventSetCardAttr
	EventAddCounter
	EventSetCounter
	EventDelCounter
	EventDumpZone
	EventStopDumpZone
	EventMoveCard
	EventDraw
)

var eventTags = map[EventType]string{
	EventInvalid:         "invalid",
	EventSay:             "say",
	EventJoin:            "join",
	EventLeave:           "leave",
	EventReadyStart:      "ready_start",
	EventGameStart:       "game_start",
	EventShuffle:         "shuffle",
	EventRollDie:         "roll_die",
	EventSetActivePlayer: "set_active_player",
	EventSetActivePhase:  "set_active_phase",
	EventPlayerID:        "player_id",
	EventName:            "name",
	EventCreateToken:     "create_token",
	EventSetupZones:      "setup_zones",
	EventSetCardAttr:     "set_card_attr",
	EventAddCounter:      "add_counter",
	EventSetCounter:      "set_counter",
	EventDelCounter:      "del_counter",
	EventDumpZone:        "dump_zone",
	EventStopDumpZone:    "stop_dump_zone",
	EventMoveCard:        "move_card",
	EventDraw:            "draw",
}

var eventsByTag = func() map[string]EventType {
	m := make(map[string]EventType, len(eventTags))
	for t, tag := range eventTags {
		m[tag] = t
	}
	return m
}()

func (t EventType) String() string {
	if tag, ok := eventTags[t]; ok {
		return tag
	}
	return fmt.Sprintf("event_%d", int(t))
}

// ParseEventType maps a wire tag to its EventType. Unknown tags map to EventInvalid.
func ParseEventType(tag string) EventType {
	if t, ok := eventsByTag[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return t
	}
	return EventInvalid
}

// Event is one server-issued game event as delivered by the transport.
type Event struct {
	Public     bool
	PlayerID   int
	PlayerName string
	Type       EventType
	Data       []string
}

// Field returns payload field i, or false when the payload is too short.
func (e Event) Field(i int) (string, bool) {
	if i < 0 || i >= len(e.Data) {
		return "", false
	}
	return e.Data[i], true
}

// IntField decodes payload field i as a base-10 integer.
func (e Event) IntField(i int) (int, error) {
	s, ok := e.Field(i)
	if !ok {
		return 0, fmt.Errorf("%s: field %d missing (have %d): %w", e.Type, i, len(e.Data), ErrMalformed)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: field %d %q: %w", e.Type, i, s, ErrMalformed)
	}
	return v, nil
}

// BoolField decodes payload field i using the wire convention "0"/"1".
func (e Event) BoolField(i int) (bool, error) {
	v, err := e.IntField(i)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// RequireFields reports ErrMalformed when the payload has fewer than n fields.
func (e Event) RequireFields(n int) error {
	if len(e.Data) < n {
		return fmt.Errorf("%s: want %d fields, have %d: %w", e.Type, n, len(e.Data), ErrMalformed)
	}
	return nil
}

// PlayerInfo is one entry of the list_players response.
type PlayerInfo struct {
	ID    int
	Name  string
	Local bool
}
