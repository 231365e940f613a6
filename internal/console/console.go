// Package console reads user commands line by line and turns them into
// outbound requests. It is the headless replacement for the table UI.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Techsmart07/Cockatrice/internal/game"
	"github.com/Techsmart07/Cockatrice/internal/game/actions"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"go.uber.org/zap"
)

// ErrUsage is returned for lines that do not parse as a command.
var ErrUsage = errors.New("usage")

const help = `commands:
  say <text>                   chat
  phase                        advance to the next phase
  turn                         pass the turn
  players                      re-request the player list
  state                        print the session summary
  counters <n> <zone> <id>...  set counters on cards
  <action> <zone> <id>...      tap untap doesnt_untap flip add_counter
                               remove_counter top bottom grave exile
`

// Console executes commands against the local player's view of the session.
type Console struct {
	router     *game.Router
	dispatcher *actions.Dispatcher
	sender     protocol.Sender
	out        io.Writer
	logger     *zap.Logger
}

// New creates a console writing replies to out.
func New(router *game.Router, dispatcher *actions.Dispatcher, sender protocol.Sender, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		router:     router,
		dispatcher: dispatcher,
		sender:     sender,
		out:        out,
		logger:     logger,
	}
}

// Run executes lines from in until EOF or ctx is cancelled. Command errors
// are reported to out and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.Execute(ctx, scanner.Text()); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// Execute runs one command line.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "help":
		fmt.Fprint(c.out, help)
		return nil
	case "say":
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "say"))
		if text == "" {
			return fmt.Errorf("say <text>: %w", ErrUsage)
		}
		return c.sender.Send(ctx, protocol.Say(text))
	case "phase":
		_, err := c.dispatcher.NextPhase(ctx, c.router.Snapshot().CurrentPhase())
		return err
	case "turn":
		_, err := c.dispatcher.NextTurn(ctx)
		return err
	case "players":
		return c.sender.Send(ctx, protocol.ListPlayers())
	case "state":
		return c.printState()
	case "counters":
		if len(args) < 3 {
			return fmt.Errorf("counters <n> <zone> <id>...: %w", ErrUsage)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("counters %q: %w", args[0], ErrUsage)
		}
		selection, err := c.selection(args[1], args[2:])
		if err != nil {
			return err
		}
		cmds, err := c.dispatcher.SetCounters(ctx, n, selection)
		c.report(len(selection), cmds)
		return err
	}

	action, ok := actions.ParseAction(verb)
	if !ok {
		return fmt.Errorf("unknown command %q: %w", verb, ErrUsage)
	}
	if len(args) < 2 {
		return fmt.Errorf("%s <zone> <id>...: %w", verb, ErrUsage)
	}
	selection, err := c.selection(args[0], args[1:])
	if err != nil {
		return err
	}
	cmds, err := c.dispatcher.Dispatch(ctx, action, selection)
	c.report(len(selection), cmds)
	return err
}

// selection resolves card ids in one of the local player's zones.
func (c *Console) selection(zoneName string, rawIDs []string) ([]actions.Selected, error) {
	local, ok := c.router.Snapshot().Players().Local()
	if !ok {
		return nil, errors.New("no local player yet")
	}
	zone, ok := local.Zone(zoneName)
	if !ok {
		return nil, fmt.Errorf("unknown zone %q", zoneName)
	}
	ids := make([]int, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("card id %q: %w", raw, ErrUsage)
		}
		ids = append(ids, id)
	}
	selection := actions.Select(zone, ids...)
	if len(selection) < len(ids) {
		c.logger.Debug("some selected cards are not in the zone",
			zap.String("zone", zoneName),
			zap.Int("requested", len(ids)),
			zap.Int("found", len(selection)),
		)
	}
	return selection, nil
}

func (c *Console) report(selected int, cmds []protocol.Command) {
	fmt.Fprintf(c.out, "%d selected, %d sent\n", selected, len(cmds))
}

func (c *Console) printState() error {
	s := c.router.Snapshot()
	sum, err := s.ComputeChecksum()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "started=%t phase=%s checksum=%s\n", s.Started(), s.CurrentPhase(), sum.Hash[:12])
	for _, p := range s.Players().All() {
		var flags []string
		if p.Local() {
			flags = append(flags, "local")
		}
		if p.Active() {
			flags = append(flags, "active")
		}
		if p.Left() {
			flags = append(flags, "left")
		}
		fmt.Fprintf(c.out, "  %d %s [%s]", p.ID(), p.Name(), strings.Join(flags, ","))
		if life, ok := p.CounterByName("life"); ok {
			fmt.Fprintf(c.out, " life=%d", life.Value)
		}
		for _, name := range p.ZoneNames() {
			z, _ := p.Zone(name)
			fmt.Fprintf(c.out, " %s=%d", name, z.Len())
		}
		fmt.Fprintln(c.out)
	}
	if names := s.Spectators().Names(); len(names) > 0 {
		fmt.Fprintf(c.out, "  spectators: %s\n", strings.Join(names, ", "))
	}
	return nil
}
