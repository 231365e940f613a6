package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Checksum is a digest of a session's observable state. Two clients that have
// applied the same event stream produce the same checksum regardless of which
// seat they occupy, so hidden-zone contents are reduced to card counts and
// per-client flags (local) are excluded.
type Checksum struct {
	Hash    string
	Version int
}

const checksumVersion = 1

// ComputeChecksum hashes a deterministic rendering of the session
func (s *Session) ComputeChecksum() (*Checksum, error) {
	hash := sha256.New()
	if _, err := hash.Write(s.deterministicRepresentation()); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &Checksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: checksumVersion,
	}, nil
}

// VerifyChecksum reports whether the session matches expected
func (s *Session) VerifyChecksum(expected *Checksum) (bool, error) {
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Version == expected.Version && computed.Hash == expected.Hash, nil
}

func (s *Session) deterministicRepresentation() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SESSION:%t|%d\n", s.started, s.currentPhase)

	// Players sorted by id; join order is not shared between clients that
	// received the roster through list_players.
	players := s.players.All()
	sort.Slice(players, func(i, j int) bool { return players[i].ID() < players[j].ID() })

	for _, p := range players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%t|%t\n", p.id, p.name, p.active, p.left)

		for _, name := range p.zoneOrder {
			z := p.zones[name]
			// Visibility differs per seat (the own hand), so only public zones list cards.
			if z.hidden || z.name == ZoneHand {
				fmt.Fprintf(&buf, "  ZONE:%s|%d\n", z.name, len(z.cards))
				continue
			}
			fmt.Fprintf(&buf, "  ZONE:%s|%d\n", z.name, len(z.cards))
			// Zone order is meaningful, so cards are not sorted.
			for _, c := range z.cards {
				fmt.Fprintf(&buf, "    CARD:%d|%s|%s|%t|%t|%t|%t|%d|%d,%d\n",
					c.ID, c.Name, c.PowTough, c.Token,
					c.Tapped, c.FaceDown, c.DoesntUntap,
					c.Counters, c.Position.X, c.Position.Y,
				)
			}
		}

		for _, c := range p.counters.All() {
			fmt.Fprintf(&buf, "  COUNTER:%d|%s|%s|%d\n", c.ID, c.Name, c.Color, c.Value)
		}
	}

	spectators := s.spectators.Names()
	sort.Strings(spectators)
	for _, name := range spectators {
		fmt.Fprintf(&buf, "SPECTATOR:%s\n", name)
	}

	return buf.Bytes()
}
