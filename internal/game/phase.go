package game

import "fmt"

// Phase is the turn stage announced by set_active_phase.
type Phase int

// NoPhase is the current phase before the server has announced one.
const NoPhase Phase = -1

const (
	PhaseUntap Phase = iota
	PhaseUpkeep
	PhaseDraw
	PhaseMain1
	PhaseBeginCombat
	PhaseDeclareAttackers
	PhaseDeclareBlockers
	PhaseCombatDamage
	PhaseEndCombat
	PhaseMain2
	PhaseEnd
)

// PhaseCount is the number of phases in a turn.
const PhaseCount = int(PhaseEnd) + 1

var phaseNames = map[Phase]string{
	NoPhase:               "NONE",
	PhaseUntap:            "UNTAP",
	PhaseUpkeep:           "UPKEEP",
	PhaseDraw:             "DRAW",
	PhaseMain1:            "MAIN1",
	PhaseBeginCombat:      "BEGIN_COMBAT",
	PhaseDeclareAttackers: "DECLARE_ATTACKERS",
	PhaseDeclareBlockers:  "DECLARE_BLOCKERS",
	PhaseCombatDamage:     "COMBAT_DAMAGE",
	PhaseEndCombat:        "END_COMBAT",
	PhaseMain2:            "MAIN2",
	PhaseEnd:              "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Next returns the phase after p, wrapping to PhaseUntap after the last one.
// NoPhase advances to PhaseUntap.
func (p Phase) Next() Phase {
	next := p + 1
	if next < 0 || int(next) >= PhaseCount {
		return PhaseUntap
	}
	return next
}
