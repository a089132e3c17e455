package models

import (
	"encoding/json"
	"fmt"
)

// Inbound request kinds delivered by the transport.
const (
	RequestAction = "ACTION"
	RequestReady  = "READY"
	RequestChat   = "CHAT"
)

// Request is one decoded inbound websocket frame.
type Request struct {
	Type   string  `json:"type"`
	Action *Action `json:"action,omitempty"`
	Text   string  `json:"text,omitempty"` // CHAT only
}

// Action captures a player's raw move before it is resolved against a session.
// Older clients send the move as "move_type"; newer ones as "type".
type Action struct {
	Type     string          `json:"type,omitempty"`
	MoveType string          `json:"move_type,omitempty"`
	Player   int             `json:"player"`
	Card     json.RawMessage `json:"card,omitempty"`
	Target   Target          `json:"target"`
}

// Move returns the parsed move type.
func (a Action) Move() (MoveType, error) {
	name := a.Type
	if name == "" {
		name = a.MoveType
	}
	return ParseMoveType(name)
}

// CardID returns the card id, or ok=false when the action names no card.
func (a Action) CardID() (id int, ok bool, err error) {
	if len(a.Card) == 0 || string(a.Card) == "null" {
		return 0, false, nil
	}
	id, err = parseID(a.Card)
	if err != nil {
		return 0, false, fmt.Errorf("card id: %w", err)
	}
	return id, true, nil
}
