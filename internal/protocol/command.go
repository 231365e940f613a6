package protocol

import (
	"context"
	"strconv"
	"strings"
)

// Outbound command names.
const (
	CmdSetActivePhase = "set_active_phase"
	CmdNextTurn       = "next_turn"
	CmdSetCardAttr    = "set_card_attr"
	CmdMoveCard       = "move_card"
	CmdSubmitDeck     = "submit_deck"
	CmdReadyStart     = "ready_start"
	CmdListPlayers    = "list_players"
	CmdSay            = "say"
)

// Card attribute names understood by set_card_attr.
const (
	AttrTapped      = "tapped"
	AttrDoesntUntap = "doesnt_untap"
	AttrCounters    = "counters"
	AttrFaceDown    = "facedown"
)

// Command is an outbound request to the server.
type Command struct {
	Name string
	Args []string
}

// Sender delivers commands to the server.
type Sender interface {
	Send(ctx context.Context, cmd Command) error
}

// Encode renders the command as a single wire line without trailing newline.
func (c Command) Encode() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + fieldSeparator + strings.Join(c.Args, fieldSeparator)
}

// DecodeCommand parses an encoded command line.
func DecodeCommand(line string) Command {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), fieldSeparator)
	return Command{Name: parts[0], Args: parts[1:]}
}

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// SetActivePhase requests a phase change.
func SetActivePhase(phase int) Command {
	return Command{Name: CmdSetActivePhase, Args: []string{strconv.Itoa(phase)}}
}

// NextTurn requests the turn be passed.
func NextTurn() Command {
	return Command{Name: CmdNextTurn}
}

// SetCardAttr requests an attribute change on one card.
func SetCardAttr(zone string, cardID int, attr, value string) Command {
	return Command{Name: CmdSetCardAttr, Args: []string{zone, strconv.Itoa(cardID), attr, value}}
}

// SetCardAttrBool is SetCardAttr with a "0"/"1" value.
func SetCardAttrBool(zone string, cardID int, attr string, value bool) Command {
	return SetCardAttr(zone, cardID, attr, boolArg(value))
}

// SetCardAttrInt is SetCardAttr with a decimal value.
func SetCardAttrInt(zone string, cardID int, attr string, value int) Command {
	return SetCardAttr(zone, cardID, attr, strconv.Itoa(value))
}

// MoveCard requests a card be moved between (or within) zones.
func MoveCard(cardID int, startZone, targetZone string, x, y int, faceDown bool) Command {
	return Command{Name: CmdMoveCard, Args: []string{
		strconv.Itoa(cardID), startZone, targetZone,
		strconv.Itoa(x), strconv.Itoa(y), boolArg(faceDown),
	}}
}

// SubmitDeck uploads the deck list, one card name per argument.
func SubmitDeck(cards []string) Command {
	return Command{Name: CmdSubmitDeck, Args: append([]string(nil), cards...)}
}

// ReadyStart signals the local player is ready.
func ReadyStart() Command {
	return Command{Name: CmdReadyStart}
}

// ListPlayers asks for the current roster.
func ListPlayers() Command {
	return Command{Name: CmdListPlayers}
}

// Say sends a chat message.
func Say(text string) Command {
	return Command{Name: CmdSay, Args: []string{text}}
}
