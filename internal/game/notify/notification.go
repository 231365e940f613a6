package notify

import "time"

// Kind identifies the category of a session notification.
type Kind string

const (
	// Session-wide
	KindSay                 Kind = "SAY"
	KindPlayerJoined        Kind = "PLAYER_JOINED"
	KindSpectatorJoined     Kind = "SPECTATOR_JOINED"
	KindPlayerLeft          Kind = "PLAYER_LEFT"
	KindSpectatorLeft       Kind = "SPECTATOR_LEFT"
	KindPlayerListReceived  Kind = "PLAYER_LIST_RECEIVED"
	KindReadyStart          Kind = "READY_START"
	KindGameStart           Kind = "GAME_START"
	KindShuffle             Kind = "SHUFFLE"
	KindRollDie             Kind = "ROLL_DIE"
	KindActivePlayerChanged Kind = "ACTIVE_PLAYER_CHANGED"
	KindPhaseChanged        Kind = "PHASE_CHANGED"
	KindZoneDumped          Kind = "ZONE_DUMPED"
	KindZoneDumpStopped     Kind = "ZONE_DUMP_STOPPED"
	KindDraw                Kind = "DRAW"

	// Player-scoped
	KindLocalPlayerAssigned Kind = "LOCAL_PLAYER_ASSIGNED"
	KindPlayerRenamed       Kind = "PLAYER_RENAMED"
	KindZonesSetUp          Kind = "ZONES_SET_UP"
	KindTokenCreated        Kind = "TOKEN_CREATED"
	KindCardAttrSet         Kind = "CARD_ATTR_SET"
	KindCounterSet          Kind = "COUNTER_SET"
	KindCounterRemoved      Kind = "COUNTER_REMOVED"
	KindCardMoved           Kind = "CARD_MOVED"
)

// PlayerRef is a read-only copy of a player's identity at notification time.
type PlayerRef struct {
	ID     int
	Name   string
	Local  bool
	Active bool
	Left   bool
}

// ZoneRef is a read-only copy of a zone's identity and size.
type ZoneRef struct {
	OwnerID   int
	Name      string
	CardCount int
}

// CardRef is a read-only copy of a card.
type CardRef struct {
	ID          int
	Name        string
	Tapped      bool
	FaceDown    bool
	DoesntUntap bool
	Counters    int
	X           int
	Y           int
}

// CounterRef is a read-only copy of a player counter.
type CounterRef struct {
	ID    int
	Name  string
	Color string
	Value int
}

// Notification is delivered to observers after the session state has been mutated.
// It never carries a reference that allows further mutation.
type Notification struct {
	Kind      Kind
	Player    *PlayerRef // origin of the event, if resolvable
	Target    *PlayerRef // subject player (active player, zone owner)
	Zone      *ZoneRef
	FromZone  *ZoneRef
	Card      *CardRef
	Counter   *CounterRef
	Names     []string
	Text      string
	Attr      string
	Value     string
	Amount    int
	Amount2   int
	Phase     int
	Timestamp time.Time
}

// New creates a notification of the given kind stamped with the current time.
func New(kind Kind, origin *PlayerRef) Notification {
	return Notification{
		Kind:      kind,
		Player:    origin,
		Timestamp: time.Now(),
	}
}
