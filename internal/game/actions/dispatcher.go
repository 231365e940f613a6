package actions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/Techsmart07/Cockatrice/internal/game"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"go.uber.org/zap"
)

// Action is a user-chosen operation applied to every selected card.
type Action int

const (
	Tap Action = iota
	Untap
	ToggleDoesntUntap
	Flip
	AddCounter
	RemoveCounter
	MoveToTopLibrary
	MoveToBottomLibrary
	MoveToGraveyard
	MoveToExile
)

var actionNames = map[Action]string{
	Tap:                 "TAP",
	Untap:               "UNTAP",
	ToggleDoesntUntap:   "TOGGLE_DOESNT_UNTAP",
	Flip:                "FLIP",
	AddCounter:          "ADD_COUNTER",
	RemoveCounter:       "REMOVE_COUNTER",
	MoveToTopLibrary:    "MOVE_TO_TOP_LIBRARY",
	MoveToBottomLibrary: "MOVE_TO_BOTTOM_LIBRARY",
	MoveToGraveyard:     "MOVE_TO_GRAVEYARD",
	MoveToExile:         "MOVE_TO_EXILE",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

var actionsByName = map[string]Action{
	"tap":            Tap,
	"untap":          Untap,
	"doesnt_untap":   ToggleDoesntUntap,
	"flip":           Flip,
	"add_counter":    AddCounter,
	"remove_counter": RemoveCounter,
	"top":            MoveToTopLibrary,
	"bottom":         MoveToBottomLibrary,
	"grave":          MoveToGraveyard,
	"exile":          MoveToExile,
}

// ParseAction resolves a short action name as typed on the console.
func ParseAction(name string) (Action, bool) {
	a, ok := actionsByName[name]
	return a, ok
}

// Selected is one card picked by the user, with the zone it currently sits in.
type Selected struct {
	Card game.Card
	Zone string
}

// Select builds a selection from the cards of zone with the given ids.
// Unknown ids are skipped.
func Select(zone *game.Zone, ids ...int) []Selected {
	result := make([]Selected, 0, len(ids))
	for _, id := range ids {
		if card, _ := zone.Find(id); card != nil {
			result = append(result, Selected{Card: *card, Zone: zone.Name()})
		}
	}
	return result
}

// Handler maps one selected card to its outbound command. false means the
// action is a no-op for this card.
type Handler func(Selected) (protocol.Command, bool)

var handlers = map[Action]Handler{
	Tap: func(s Selected) (protocol.Command, bool) {
		if s.Card.Tapped {
			return protocol.Command{}, false
		}
		return protocol.SetCardAttrBool(s.Zone, s.Card.ID, protocol.AttrTapped, true), true
	},
	Untap: func(s Selected) (protocol.Command, bool) {
		if !s.Card.Tapped {
			return protocol.Command{}, false
		}
		return protocol.SetCardAttrBool(s.Zone, s.Card.ID, protocol.AttrTapped, false), true
	},
	ToggleDoesntUntap: func(s Selected) (protocol.Command, bool) {
		return protocol.SetCardAttrBool(s.Zone, s.Card.ID, protocol.AttrDoesntUntap, !s.Card.DoesntUntap), true
	},
	Flip: func(s Selected) (protocol.Command, bool) {
		pos := s.Card.Position
		return protocol.MoveCard(s.Card.ID, s.Zone, s.Zone, pos.X, pos.Y, !s.Card.FaceDown), true
	},
	AddCounter: func(s Selected) (protocol.Command, bool) {
		if s.Card.Counters >= game.MaxCounters {
			return protocol.Command{}, false
		}
		return protocol.SetCardAttrInt(s.Zone, s.Card.ID, protocol.AttrCounters, s.Card.Counters+1), true
	},
	RemoveCounter: func(s Selected) (protocol.Command, bool) {
		if s.Card.Counters <= 0 {
			return protocol.Command{}, false
		}
		return protocol.SetCardAttrInt(s.Zone, s.Card.ID, protocol.AttrCounters, s.Card.Counters-1), true
	},
	MoveToTopLibrary:    moveTo(game.ZoneLibrary, 0),
	MoveToBottomLibrary: moveTo(game.ZoneLibrary, -1),
	MoveToGraveyard:     moveTo(game.ZoneGraveyard, 0),
	MoveToExile:         moveTo(game.ZoneExile, 0),
}

func moveTo(zone string, x int) Handler {
	return func(s Selected) (protocol.Command, bool) {
		return protocol.MoveCard(s.Card.ID, s.Zone, zone, x, 0, false), true
	}
}

// HandlerFor returns the command mapping of action.
func HandlerFor(action Action) (Handler, bool) {
	h, ok := handlers[action]
	return h, ok
}

// Dispatcher turns actions on a selection of cards into outbound commands,
// one per affected card, visiting the selection in a random order.
type Dispatcher struct {
	sender protocol.Sender
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDispatcher creates a dispatcher whose visiting order is driven by seed.
func NewDispatcher(sender protocol.Sender, seed int64, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender: sender,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// shuffle returns a Fisher-Yates permutation of selection. The input is not modified.
func (d *Dispatcher) shuffle(selection []Selected) []Selected {
	out := append([]Selected(nil), selection...)
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Plan computes the commands action would send for selection without sending them.
func (d *Dispatcher) Plan(action Action, selection []Selected) ([]protocol.Command, error) {
	h, ok := HandlerFor(action)
	if !ok {
		return nil, fmt.Errorf("unknown action %s", action)
	}
	return d.plan(h, selection), nil
}

func (d *Dispatcher) plan(h Handler, selection []Selected) []protocol.Command {
	cmds := make([]protocol.Command, 0, len(selection))
	for _, s := range d.shuffle(selection) {
		if cmd, ok := h(s); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Dispatch sends one command per affected card and returns what was sent.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, selection []Selected) ([]protocol.Command, error) {
	cmds, err := d.Plan(action, selection)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("dispatching card action",
		zap.Stringer("action", action),
		zap.Int("selected", len(selection)),
		zap.Int("commands", len(cmds)),
	)
	return d.send(ctx, cmds)
}

// SetCounters sets every selected card to n, bounded to [0, MaxCounters].
func (d *Dispatcher) SetCounters(ctx context.Context, n int, selection []Selected) ([]protocol.Command, error) {
	value := game.ClampCounters(n)
	cmds := d.plan(func(s Selected) (protocol.Command, bool) {
		return protocol.SetCardAttrInt(s.Zone, s.Card.ID, protocol.AttrCounters, value), true
	}, selection)
	return d.send(ctx, cmds)
}

// NextPhase requests the phase after current.
func (d *Dispatcher) NextPhase(ctx context.Context, current game.Phase) (protocol.Command, error) {
	cmd := protocol.SetActivePhase(int(current.Next()))
	_, err := d.send(ctx, []protocol.Command{cmd})
	return cmd, err
}

// NextTurn requests the turn be passed.
func (d *Dispatcher) NextTurn(ctx context.Context) (protocol.Command, error) {
	cmd := protocol.NextTurn()
	_, err := d.send(ctx, []protocol.Command{cmd})
	return cmd, err
}

func (d *Dispatcher) send(ctx context.Context, cmds []protocol.Command) ([]protocol.Command, error) {
	for i, cmd := range cmds {
		if err := d.sender.Send(ctx, cmd); err != nil {
			return cmds[:i], fmt.Errorf("send %s: %w", cmd.Name, err)
		}
	}
	return cmds, nil
}
