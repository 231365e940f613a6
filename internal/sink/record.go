// Package sink ships the session event stream to external stores without
// blocking event dispatch.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/google/uuid"
)

// Record is one journaled event as persisted by a Sink.
type Record struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Seq        int       `json:"seq"`
	Public     bool      `json:"public"`
	PlayerID   int       `json:"player_id"`
	PlayerName string    `json:"player_name"`
	EventType  string    `json:"event_type"`
	Payload    []string  `json:"payload"`
	ReceivedAt int64     `json:"received_at"` // epoch millis
}

// NewRecord converts ev into a record of session at position seq.
func NewRecord(session uuid.UUID, seq int, ev protocol.Event, at time.Time) Record {
	return Record{
		ID:         uuid.New(),
		SessionID:  session,
		Seq:        seq,
		Public:     ev.Public,
		PlayerID:   ev.PlayerID,
		PlayerName: ev.PlayerName,
		EventType:  ev.Type.String(),
		Payload:    append([]string{}, ev.Data...),
		ReceivedAt: at.UnixMilli(),
	}
}

// Event rebuilds the protocol event the record was made from.
func (r Record) Event() protocol.Event {
	return protocol.Event{
		Public:     r.Public,
		PlayerID:   r.PlayerID,
		PlayerName: r.PlayerName,
		Type:       protocol.ParseEventType(r.EventType),
		Data:       append([]string(nil), r.Payload...),
	}
}

// RosterEventType tags records that carry a list_players response instead of an event.
const RosterEventType = "list_players"

// NewRosterRecord stores infos at position seq, one encoded player line per payload entry.
func NewRosterRecord(session uuid.UUID, seq int, infos []protocol.PlayerInfo, at time.Time) Record {
	payload := make([]string, len(infos))
	for i, info := range infos {
		payload[i] = protocol.EncodePlayerInfo(info)
	}
	return Record{
		ID:         uuid.New(),
		SessionID:  session,
		Seq:        seq,
		EventType:  RosterEventType,
		Payload:    payload,
		ReceivedAt: at.UnixMilli(),
	}
}

func (r Record) IsRoster() bool { return r.EventType == RosterEventType }

// Roster decodes the player list of a roster record.
func (r Record) Roster() ([]protocol.PlayerInfo, error) {
	if !r.IsRoster() {
		return nil, fmt.Errorf("record %d is a %s event, not a roster", r.Seq, r.EventType)
	}
	infos := make([]protocol.PlayerInfo, 0, len(r.Payload))
	for _, line := range r.Payload {
		info, err := protocol.DecodePlayerInfo(line)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r.Seq, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Handler receives replayed traffic. *game.Router satisfies it.
type Handler interface {
	Dispatch(ev protocol.Event)
	PlayersListed(infos []protocol.PlayerInfo)
}

// Replay feeds records to h in order and returns how many were applied.
// A roster record that does not decode is skipped.
func Replay(records []Record, h Handler) int {
	applied := 0
	for _, rec := range records {
		if rec.IsRoster() {
			infos, err := rec.Roster()
			if err != nil {
				continue
			}
			h.PlayersListed(infos)
		} else {
			h.Dispatch(rec.Event())
		}
		applied++
	}
	return applied
}

// Sink persists batches of records.
type Sink interface {
	Write(ctx context.Context, records []Record) error
	Close() error
}
