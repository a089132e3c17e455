// internal/models/phase.go
package models

// Phase is one state of the turn-structure state machine.
type Phase string

const (
	PhaseSetup      Phase = "SETUP"
	PhaseBegin      Phase = "BEGIN"
	PhasePreDraw    Phase = "PRE_DRAW"
	PhaseKickDoor   Phase = "KICK_DOOR"
	PhaseCombat     Phase = "COMBAT"
	PhasePostCombat Phase = "POST_COMBAT"
	PhaseLootRoom   Phase = "LOOT_ROOM"
	PhaseCharity    Phase = "CHARITY"
	PhaseEnd        Phase = "END" // terminal
)

// Phases lists every phase in turn order.
var Phases = []Phase{
	PhaseSetup, PhaseBegin, PhasePreDraw, PhaseKickDoor, PhaseCombat,
	PhasePostCombat, PhaseLootRoom, PhaseCharity, PhaseEnd,
}

// Terminal reports whether no transition leaves the phase.
func (p Phase) Terminal() bool {
	return p == PhaseEnd
}
