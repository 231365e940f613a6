package game

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Techsmart07/Cockatrice/internal/game/notify"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"go.uber.org/zap"
)

// SetupFlow is the pre-game deck selection and ready handshake.
// Open is called from the dispatch path and must not block.
type SetupFlow interface {
	Open()
}

// EventRecorder receives every event accepted for dispatch, before it is applied.
// Implementations must not block.
type EventRecorder interface {
	Record(ev protocol.Event)
}

// Router applies server events to a Session in delivery order and publishes
// notifications once each event has been fully applied.
//
// Dispatch calls are serialized. Listeners run on the dispatching goroutine
// and may read state through Snapshot, but must not call Dispatch.
type Router struct {
	dispatchMu sync.Mutex
	stateMu    sync.RWMutex

	session   *Session
	bus       *notify.Bus
	logger    *zap.Logger
	setup     SetupFlow
	recorders []EventRecorder
}

// NewRouter creates a router over session. A nil bus or logger gets a private default.
func NewRouter(session *Session, bus *notify.Bus, logger *zap.Logger) *Router {
	if session == nil {
		session = NewSession()
	}
	if bus == nil {
		bus = notify.NewBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		session: session,
		bus:     bus,
		logger:  logger,
	}
}

// SetSetupFlow sets the collaborator opened on ready_start and after the roster arrives.
func (r *Router) SetSetupFlow(flow SetupFlow) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.setup = flow
}

// AddRecorder registers an event recorder (journal, archive sink).
func (r *Router) AddRecorder(rec EventRecorder) {
	if rec == nil {
		return
	}
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.recorders = append(r.recorders, rec)
}

// Bus returns the notification bus.
func (r *Router) Bus() *notify.Bus {
	return r.bus
}

// Snapshot returns a detached deep copy of the session.
func (r *Router) Snapshot() *Session {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.session.Copy()
}

// outcome collects the side effects of one event, released after the state lock.
type outcome struct {
	notifications []notify.Notification
	openSetup     bool
}

func (o *outcome) emit(n ...notify.Notification) {
	o.notifications = append(o.notifications, n...)
}

// Dispatch applies one event. It never fails: malformed or inconsistent events
// are logged and discarded.
func (r *Router) Dispatch(ev protocol.Event) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	r.logger.Debug("game event",
		zap.Bool("public", ev.Public),
		zap.Int("player_id", ev.PlayerID),
		zap.String("player_name", ev.PlayerName),
		zap.Stringer("type", ev.Type),
		zap.String("data", strings.Join(ev.Data, "/")),
	)

	for _, rec := range r.recorders {
		rec.Record(ev)
	}

	var out outcome
	r.stateMu.Lock()
	if ev.Public {
		r.routePublic(ev, &out)
	} else {
		r.routeTargeted(ev, &out)
	}
	r.stateMu.Unlock()

	r.release(&out)
}

// PlayersListed registers the roster returned by list_players and opens the setup flow.
func (r *Router) PlayersListed(infos []protocol.PlayerInfo) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	for _, rec := range r.recorders {
		if rr, ok := rec.(RosterRecorder); ok {
			rr.RecordRoster(infos)
		}
	}

	var out outcome
	names := make([]string, 0, len(infos))

	r.stateMu.Lock()
	for _, info := range infos {
		names = append(names, info.Name)
		p := NewPlayer(info.ID, info.Name, info.Local, r.logger)
		if err := r.session.players.Add(p); err != nil {
			r.logger.Warn("ignoring roster entry", zap.Int("player_id", info.ID), zap.Error(err))
		}
	}
	r.stateMu.Unlock()

	n := notify.New(notify.KindPlayerListReceived, nil)
	n.Names = names
	out.emit(n)
	out.openSetup = true
	r.release(&out)
}

func (r *Router) release(out *outcome) {
	r.bus.PublishBatch(out.notifications)
	if out.openSetup && r.setup != nil {
		r.setup.Open()
	}
}

func (r *Router) routeTargeted(ev protocol.Event, out *outcome) {
	p, ok := r.session.players.Find(ev.PlayerID)
	if !ok {
		// Benign: the event predates the join record.
		r.logger.Debug("targeted event for unknown player", zap.Int("player_id", ev.PlayerID))
		return
	}
	out.emit(p.Apply(ev)...)
}

func (r *Router) routePublic(ev protocol.Event, out *outcome) {
	origin, known := r.session.players.Find(ev.PlayerID)

	switch ev.Type {
	case protocol.EventSay:
		r.handleSay(ev, origin, out)
	case protocol.EventJoin:
		r.handleJoin(ev, out)
	case protocol.EventLeave:
		r.handleLeave(ev, origin, out)
	case protocol.EventReadyStart:
		r.handleReadyStart(ev, origin, out)
	case protocol.EventGameStart:
		r.handleGameStart(origin, out)
	case protocol.EventSetActivePlayer:
		r.handleSetActivePlayer(ev, origin, out)
	case protocol.EventSetActivePhase:
		r.handleSetActivePhase(ev, origin, out)
	case protocol.EventInvalid:
		r.logger.Warn("unhandled global event", zap.Strings("data", ev.Data))

	case protocol.EventShuffle,
		protocol.EventRollDie,
		protocol.EventPlayerID,
		protocol.EventName,
		protocol.EventCreateToken,
		protocol.EventSetupZones,
		protocol.EventSetCardAttr,
		protocol.EventAddCounter,
		protocol.EventSetCounter,
		protocol.EventDelCounter,
		protocol.EventDumpZone,
		protocol.EventStopDumpZone,
		protocol.EventMoveCard,
		protocol.EventDraw:
		if !known {
			r.logger.Debug("public event from unknown player",
				zap.Int("player_id", ev.PlayerID),
				zap.Stringer("type", ev.Type),
			)
			return
		}
		r.routeFromPlayer(ev, origin, out)

	default:
		r.logger.Warn("unrecognized event type", zap.Int("type", int(ev.Type)))
	}
}

// routeFromPlayer handles public events whose origin must be a known player.
func (r *Router) routeFromPlayer(ev protocol.Event, origin *Player, out *outcome) {
	switch ev.Type {
	case protocol.EventShuffle:
		out.emit(notify.New(notify.KindShuffle, origin.Ref()))

	case protocol.EventRollDie:
		sides, err := ev.IntField(0)
		if err != nil {
			r.discard(ev, err)
			return
		}
		roll, err := ev.IntField(1)
		if err != nil {
			r.discard(ev, err)
			return
		}
		n := notify.New(notify.KindRollDie, origin.Ref())
		n.Amount = sides
		n.Amount2 = roll
		out.emit(n)

	case protocol.EventDumpZone, protocol.EventStopDumpZone:
		r.handleDumpZone(ev, origin, out)

	case protocol.EventMoveCard:
		// The local client already holds this move; the public copy is an echo.
		if origin.Local() {
			return
		}
		out.emit(origin.Apply(ev)...)

	case protocol.EventDraw:
		count, err := ev.IntField(0)
		if err != nil {
			r.discard(ev, err)
			return
		}
		n := notify.New(notify.KindDraw, origin.Ref())
		n.Amount = count
		out.emit(n)
		if !origin.Local() {
			out.emit(origin.Apply(ev)...)
		}

	default:
		// player_id, name, create_token, setup_zones, set_card_attr and the
		// counter events are framed as public but belong to one player.
		out.emit(origin.Apply(ev)...)
	}
}

func (r *Router) handleSay(ev protocol.Event, origin *Player, out *outcome) {
	if err := ev.RequireFields(1); err != nil {
		r.discard(ev, err)
		return
	}
	n := notify.New(notify.KindSay, r.originRef(ev, origin))
	// Chat text may itself contain the field separator.
	n.Text = strings.Join(ev.Data, "|")
	out.emit(n)
}

func (r *Router) handleJoin(ev protocol.Event, out *outcome) {
	if len(ev.Data) != 1 {
		r.discard(ev, fmt.Errorf("join: want 1 field, have %d: %w", len(ev.Data), protocol.ErrMalformed))
		return
	}
	spectator, err := ev.BoolField(0)
	if err != nil {
		r.discard(ev, err)
		return
	}

	if spectator {
		if _, isPlayer := r.session.players.Find(ev.PlayerID); isPlayer {
			r.discard(ev, errDuplicateRef("player", ev.PlayerID))
			return
		}
		if !r.session.spectators.Add(ev.PlayerName) {
			r.logger.Debug("spectator already present", zap.String("player_name", ev.PlayerName))
			return
		}
		n := notify.New(notify.KindSpectatorJoined, nil)
		n.Text = ev.PlayerName
		out.emit(n)
		return
	}

	p := NewPlayer(ev.PlayerID, ev.PlayerName, false, r.logger)
	if err := r.session.players.Add(p); err != nil {
		r.discard(ev, err)
		return
	}
	// A spectator taking a seat stops spectating.
	if r.session.spectators.Remove(ev.PlayerName) {
		n := notify.New(notify.KindSpectatorLeft, nil)
		n.Text = ev.PlayerName
		out.emit(n)
	}
	out.emit(notify.New(notify.KindPlayerJoined, p.Ref()))
}

func (r *Router) handleLeave(ev protocol.Event, origin *Player, out *outcome) {
	if origin != nil {
		// Departed players stay registered so their zones remain visible.
		origin.left = true
		out.emit(notify.New(notify.KindPlayerLeft, origin.Ref()))
		return
	}
	if r.session.spectators.Remove(ev.PlayerName) {
		n := notify.New(notify.KindSpectatorLeft, nil)
		n.Text = ev.PlayerName
		out.emit(n)
		return
	}
	r.logger.Debug("leave from unknown participant",
		zap.Int("player_id", ev.PlayerID),
		zap.String("player_name", ev.PlayerName),
	)
}

func (r *Router) handleReadyStart(ev protocol.Event, origin *Player, out *outcome) {
	if !r.session.started {
		return
	}
	r.session.started = false
	out.emit(notify.New(notify.KindReadyStart, r.originRef(ev, origin)))
	if origin == nil || !origin.Local() {
		out.openSetup = true
	}
}

func (r *Router) handleGameStart(origin *Player, out *outcome) {
	if r.session.started {
		return
	}
	r.session.started = true
	var ref *notify.PlayerRef
	if origin != nil {
		ref = origin.Ref()
	}
	out.emit(notify.New(notify.KindGameStart, ref))
}

func (r *Router) handleSetActivePlayer(ev protocol.Event, origin *Player, out *outcome) {
	id, err := ev.IntField(0)
	if err != nil {
		r.discard(ev, err)
		return
	}
	if !r.session.players.SetActive(id) {
		r.logger.Debug("setActivePlayer: invalid player", zap.Int("target_id", id))
		return
	}
	target, _ := r.session.players.Find(id)
	n := notify.New(notify.KindActivePlayerChanged, r.originRef(ev, origin))
	n.Target = target.Ref()
	out.emit(n)
}

func (r *Router) handleSetActivePhase(ev protocol.Event, origin *Player, out *outcome) {
	value, err := ev.IntField(0)
	if err != nil {
		r.discard(ev, err)
		return
	}
	phase := Phase(value)
	if phase == r.session.currentPhase {
		return
	}
	r.session.currentPhase = phase
	n := notify.New(notify.KindPhaseChanged, r.originRef(ev, origin))
	n.Phase = value
	out.emit(n)
}

func (r *Router) handleDumpZone(ev protocol.Event, origin *Player, out *outcome) {
	ownerID, err := ev.IntField(0)
	if err != nil {
		r.discard(ev, err)
		return
	}
	zoneName, ok := ev.Field(1)
	if !ok {
		r.discard(ev, ev.RequireFields(2))
		return
	}
	owner, ok := r.session.players.Find(ownerID)
	if !ok {
		r.discard(ev, errUnknownRef("player", strconv.Itoa(ownerID)))
		return
	}
	zone, ok := owner.Zone(zoneName)
	if !ok {
		r.discard(ev, errUnknownRef("zone", zoneName))
		return
	}

	kind := notify.KindZoneDumpStopped
	count := 0
	if ev.Type == protocol.EventDumpZone {
		kind = notify.KindZoneDumped
		if count, err = ev.IntField(2); err != nil {
			r.discard(ev, err)
			return
		}
	}
	n := notify.New(kind, origin.Ref())
	n.Target = owner.Ref()
	n.Zone = zone.Ref()
	n.Amount = count
	out.emit(n)
}

// originRef resolves the origin to a registered player when possible and
// otherwise falls back to the identity carried by the event.
func (r *Router) originRef(ev protocol.Event, origin *Player) *notify.PlayerRef {
	if origin != nil {
		return origin.Ref()
	}
	return &notify.PlayerRef{ID: ev.PlayerID, Name: ev.PlayerName}
}

func (r *Router) discard(ev protocol.Event, err error) {
	r.logger.Warn("discarding event",
		zap.Stringer("type", ev.Type),
		zap.Int("player_id", ev.PlayerID),
		zap.Strings("data", ev.Data),
		zap.Error(err),
	)
}
