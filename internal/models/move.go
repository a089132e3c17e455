// internal/models/move.go
package models

import (
	"fmt"
	"strings"
)

// MoveType enumerates what a player can try to do with a card.
type MoveType string

const (
	MoveDraw  MoveType = "DRAW"
	MoveCarry MoveType = "CARRY"
	MovePlay  MoveType = "PLAY"
	MoveFight MoveType = "FIGHT"
	MoveGive  MoveType = "GIVE"
	MoveDone  MoveType = "DONE"
	MoveWait  MoveType = "WAIT" // administrative, always accepted
)

// MoveTypes lists every move type.
var MoveTypes = []MoveType{MoveDraw, MoveCarry, MovePlay, MoveFight, MoveGive, MoveDone, MoveWait}

// ParseMoveType accepts any casing of a known move name.
func ParseMoveType(s string) (MoveType, error) {
	mt := MoveType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range MoveTypes {
		if known == mt {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown move type %q", s)
}

// potentialMoves is the fixed phase -> move table. END has no entry.
var potentialMoves = map[Phase][]MoveType{
	PhaseSetup:      {MoveDone, MoveCarry},
	PhaseBegin:      {MoveDraw, MoveCarry, MovePlay},
	PhasePreDraw:    {MoveDraw, MovePlay, MoveCarry},
	PhaseKickDoor:   {MoveDraw, MovePlay, MoveCarry},
	PhaseCombat:     {MovePlay},
	PhasePostCombat: {MovePlay, MoveCarry, MoveDone},
	PhaseLootRoom:   {MovePlay, MoveCarry, MoveDone},
	PhaseCharity:    {MovePlay, MoveCarry, MoveDone, MoveGive},
}

// PotentialMoves returns a fresh copy of the move types a phase permits.
func PotentialMoves(phase Phase) []MoveType {
	moves := potentialMoves[phase]
	out := make([]MoveType, len(moves))
	copy(out, moves)
	return out
}

// Permits reports whether mt is in the phase's potential-move set.
func (p Phase) Permits(mt MoveType) bool {
	for _, m := range potentialMoves[p] {
		if m == mt {
			return true
		}
	}
	return false
}
