package game

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownReference is returned when an event names a player, zone, card
	// or counter this session does not know.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrDuplicate is returned when an event would register an id twice.
	ErrDuplicate = errors.New("duplicate id")
	// ErrOutOfRange is returned for numeric payloads outside their domain.
	ErrOutOfRange = errors.New("value out of range")
)

func errUnknownRef(kind, ref string) error {
	return fmt.Errorf("%s %q: %w", kind, ref, ErrUnknownReference)
}

func errDuplicateRef(kind string, id int) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrDuplicate)
}

func errOutOfRange(what string, values ...int) error {
	return fmt.Errorf("%s %v: %w", what, values, ErrOutOfRange)
}
