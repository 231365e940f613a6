package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	fieldSeparator = "|"

	scopePublic  = "public"
	scopePrivate = "private"

	listPlayersTag    = "list_players"
	listPlayersEndTag = "list_players_done"
)

// DecodeEvent parses a line of the form scope|playerId|playerName|type|field...
func DecodeEvent(line string) (Event, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, fieldSeparator)
	if len(parts) < 4 {
		return Event{}, fmt.Errorf("event line %q: want at least 4 fields: %w", line, ErrMalformed)
	}

	var ev Event
	switch parts[0] {
	case scopePublic:
		ev.Public = true
	case scopePrivate:
		ev.Public = false
	default:
		return Event{}, fmt.Errorf("event line %q: unknown scope %q: %w", line, parts[0], ErrMalformed)
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return Event{}, fmt.Errorf("event line %q: player id: %w", line, ErrMalformed)
	}
	ev.PlayerID = id
	ev.PlayerName = parts[2]
	ev.Type = ParseEventType(parts[3])
	ev.Data = append([]string(nil), parts[4:]...)
	return ev, nil
}

// EncodeEvent is the inverse of DecodeEvent. Used by tests and the journal tooling.
func EncodeEvent(ev Event) string {
	scope := scopePrivate
	if ev.Public {
		scope = scopePublic
	}
	fields := []string{scope, strconv.Itoa(ev.PlayerID), ev.PlayerName, ev.Type.String()}
	fields = append(fields, ev.Data...)
	return strings.Join(fields, fieldSeparator)
}

// IsPlayerListLine reports whether line belongs to a list_players response.
func IsPlayerListLine(line string) bool {
	return strings.HasPrefix(line, listPlayersTag+fieldSeparator)
}

// IsPlayerListEnd reports whether line terminates a list_players response.
func IsPlayerListEnd(line string) bool {
	return strings.TrimRight(line, "\r\n") == listPlayersEndTag
}

// DecodePlayerInfo parses list_players|id|name|local.
func DecodePlayerInfo(line string) (PlayerInfo, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), fieldSeparator)
	if len(parts) != 4 || parts[0] != listPlayersTag {
		return PlayerInfo{}, fmt.Errorf("player line %q: %w", line, ErrMalformed)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return PlayerInfo{}, fmt.Errorf("player line %q: id: %w", line, ErrMalformed)
	}
	return PlayerInfo{ID: id, Name: parts[2], Local: parts[3] == "1"}, nil
}

// EncodePlayerInfo is the inverse of DecodePlayerInfo.
func EncodePlayerInfo(info PlayerInfo) string {
	local := "0"
	if info.Local {
		local = "1"
	}
	return strings.Join([]string{listPlayersTag, strconv.Itoa(info.ID), info.Name, local}, fieldSeparator)
}
