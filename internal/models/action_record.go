package models

import "github.com/google/uuid"

// ActionRecord is one state-changing session event as handed to the historian.
type ActionRecord struct {
	SessionID    uuid.UUID              `json:"session_id"`
	ActionNumber int                    `json:"action_number"`
	Actor        *int                   `json:"actor,omitempty"` // display id; nil for system events
	ActorName    string                 `json:"actor_name,omitempty"`
	Type         string                 `json:"type"`
	Payload      map[string]interface{} `json:"payload"`
	Timestamp    int64                  `json:"timestamp"` // unix millis
}

// PlayerResult is one seat's standing when a session ends.
type PlayerResult struct {
	Name  string `json:"name"`
	Seat  int    `json:"seat"`
	Level int    `json:"level"`
}

// SessionResult is the final outcome of a finished session.
type SessionResult struct {
	SessionID  uuid.UUID      `json:"session_id"`
	Name       string         `json:"name"`
	Winner     string         `json:"winner"`
	Actions    int            `json:"actions"`
	Players    []PlayerResult `json:"players"`
	StartedAt  int64          `json:"started_at"`
	FinishedAt int64          `json:"finished_at"`
}
