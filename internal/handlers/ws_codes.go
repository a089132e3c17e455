// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the session socket.
// These give clients a more specific reason for closure than the standard codes.
const (
	InvalidResumeTokenError websocket.StatusCode = 3001 // Resume token was invalid, expired, or issued for another session.
	WrongPasswordError      websocket.StatusCode = 3003 // Session passphrase did not match.
	SessionStartedError     websocket.StatusCode = 3004 // Session is running and has no free seat for this name.
	NameTakenError          websocket.StatusCode = 3005 // A connected player already uses this name.
	SessionClosedError      websocket.StatusCode = 3006 // Session has ended.
	SlowConsumerError       websocket.StatusCode = 3007 // Client fell too far behind the outbound stream.
	SeatTakenError          websocket.StatusCode = 3008 // Another connection resumed this seat.
)

// subprotocol is offered to clients that negotiate one; it is not required.
const subprotocol = "munchkin"
