// internal/game/conn.go
package game

// Conn pushes outbound events to one participant. Send must not block and must
// be safe to call with the session lock held. Implementations must be comparable.
type Conn interface {
	Send(ev Event)
}

// Replaceable is implemented by conns that hold a transport open. Replaced is
// called, with the session lock held, when another conn takes over the seat.
// It must not block.
type Replaceable interface {
	Conn
	Replaced()
}

// Observer is a participant that receives every event and ignores it. It fills a
// seat for solo play.
type Observer struct{}

func (Observer) Send(Event) {}

// ObserverName is the seat name given to observers.
const ObserverName = "observer"
