package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Techsmart07/Cockatrice/internal/game/notify"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
)

// MaxCounters is the most counters a single card can carry.
const MaxCounters = 999

// HiddenCardID marks a card whose identity this client does not know
// (library and sideboard contents, an opponent's hand).
const HiddenCardID = -1

// Position is a grid coordinate inside a table zone.
type Position struct {
	X int
	Y int
}

// Card is one card instance in a zone.
type Card struct {
	ID          int
	Name        string
	PowTough    string
	Token       bool
	Tapped      bool
	FaceDown    bool
	DoesntUntap bool
	Counters    int
	Position    Position
}

// ClampCounters bounds n to [0, MaxCounters].
func ClampCounters(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxCounters {
		return MaxCounters
	}
	return n
}

// SetCounters stores n clamped to [0, MaxCounters] and returns the stored value.
func (c *Card) SetCounters(n int) int {
	c.Counters = ClampCounters(n)
	return c.Counters
}

// SetAttr applies a named attribute from a set_card_attr event.
func (c *Card) SetAttr(attr, value string) error {
	value = strings.TrimSpace(value)
	switch attr {
	case protocol.AttrTapped:
		b, err := parseFlag(value)
		if err != nil {
			return err
		}
		c.Tapped = b
	case protocol.AttrDoesntUntap:
		b, err := parseFlag(value)
		if err != nil {
			return err
		}
		c.DoesntUntap = b
	case protocol.AttrFaceDown:
		b, err := parseFlag(value)
		if err != nil {
			return err
		}
		c.FaceDown = b
	case protocol.AttrCounters:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("counters value %q: %w", value, protocol.ErrMalformed)
		}
		c.SetCounters(n)
	default:
		return fmt.Errorf("unknown card attribute %q: %w", attr, protocol.ErrMalformed)
	}
	return nil
}

// resetState clears per-battlefield state when a card changes zone.
func (c *Card) resetState() {
	c.Tapped = false
	c.DoesntUntap = false
	c.Counters = 0
	c.Position = Position{}
}

// conceal drops identifying information when a card enters a hidden zone.
func (c *Card) conceal() {
	c.ID = HiddenCardID
	c.Name = ""
	c.FaceDown = true
}

// Copy creates a copy of the card.
func (c *Card) Copy() *Card {
	clone := *c
	return &clone
}

// Ref converts the card to a notification payload.
func (c *Card) Ref() *notify.CardRef {
	return &notify.CardRef{
		ID:          c.ID,
		Name:        c.Name,
		Tapped:      c.Tapped,
		FaceDown:    c.FaceDown,
		DoesntUntap: c.DoesntUntap,
		Counters:    c.Counters,
		X:           c.Position.X,
		Y:           c.Position.Y,
	}
}

func parseFlag(value string) (bool, error) {
	switch value {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("flag value %q: %w", value, protocol.ErrMalformed)
}
