// internal/models/target.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TargetKind says what a move is aimed at.
type TargetKind string

const (
	TargetNone   TargetKind = ""
	TargetCard   TargetKind = "card"
	TargetPlayer TargetKind = "player"
	TargetCombat TargetKind = "combat"
)

// CombatSide names one side of the active combat.
type CombatSide string

const (
	SidePlayers  CombatSide = "players"
	SideMonsters CombatSide = "monsters"
)

// Target is the resolved-by-id aim of a move. The zero value means no target.
type Target struct {
	Kind TargetKind
	ID   int        // card id or player display id
	Side CombatSide // only for TargetCombat
}

// NoTarget is the empty target.
var NoTarget = Target{}

func CardTarget(id int) Target            { return Target{Kind: TargetCard, ID: id} }
func PlayerTarget(id int) Target          { return Target{Kind: TargetPlayer, ID: id} }
func CombatTarget(side CombatSide) Target { return Target{Kind: TargetCombat, Side: side} }

// IsNone reports whether no target was given.
func (t Target) IsNone() bool { return t.Kind == TargetNone }

// IsCombatSide reports whether the target is one of the two symbolic combat sides.
func (t Target) IsCombatSide() bool {
	return t.Kind == TargetCombat && (t.Side == SidePlayers || t.Side == SideMonsters)
}

func (t Target) String() string {
	switch t.Kind {
	case TargetNone:
		return "none"
	case TargetCombat:
		return "combat_" + string(t.Side)
	default:
		return fmt.Sprintf("%s:%d", t.Kind, t.ID)
	}
}

type targetWire struct {
	Type TargetKind      `json:"type"`
	ID   json.RawMessage `json:"id"`
}

// MarshalJSON writes null, {"type":"card","id":5}, {"type":"player","id":1}
// or {"type":"combat","id":"players"}.
func (t Target) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TargetNone:
		return []byte("null"), nil
	case TargetCombat:
		id, _ := json.Marshal(string(t.Side))
		return json.Marshal(targetWire{Type: t.Kind, ID: id})
	default:
		return json.Marshal(targetWire{Type: t.Kind, ID: json.RawMessage(strconv.Itoa(t.ID))})
	}
}

// UnmarshalJSON accepts the shapes MarshalJSON writes. Anything else is an error.
func (t *Target) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = NoTarget
		return nil
	}
	var w targetWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	switch w.Type {
	case TargetCard, TargetPlayer:
		id, err := parseID(w.ID)
		if err != nil {
			return fmt.Errorf("target %s id: %w", w.Type, err)
		}
		*t = Target{Kind: w.Type, ID: id}
	case TargetCombat:
		var side string
		if err := json.Unmarshal(w.ID, &side); err != nil {
			return fmt.Errorf("target combat id: %w", err)
		}
		cs := CombatSide(side)
		if cs != SidePlayers && cs != SideMonsters {
			return fmt.Errorf("unknown combat side %q", side)
		}
		*t = CombatTarget(cs)
	default:
		return fmt.Errorf("unknown target type %q", w.Type)
	}
	return nil
}

// parseID accepts 5 or "5"; clients are not consistent about it.
func parseID(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("id must be a number")
	}
	return strconv.Atoi(s)
}
