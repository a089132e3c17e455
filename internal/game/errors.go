package game

import "errors"

var (
	// ErrInvalidMove is returned when a move is not legal in the current state.
	// Nothing is mutated.
	ErrInvalidMove = errors.New("invalid move")
	// ErrUnresolvable is returned when a request names a card or player that does
	// not exist, or is otherwise malformed.
	ErrUnresolvable = errors.New("unresolvable reference")
	// ErrSessionStarted is returned when joining a running session with no free seat.
	ErrSessionStarted = errors.New("cannot join game, already in progress")
	// ErrSessionClosed is returned by every entry point after Close.
	ErrSessionClosed = errors.New("session is closed")
	// ErrWrongPassword is returned when the passphrase does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrNameTaken is returned when a connected player already uses the name.
	ErrNameTaken = errors.New("name already taken")
	// ErrNotStarted is returned for moves and votes before the deal.
	ErrNotStarted = errors.New("game has not started")
)
