package app

import "fysics/internal/transport/ws"

// Conn is the slice of the event channel the state machines need. The
// concrete implementation is ws.Channel; tests substitute their own.
type Conn interface {
	Send(ws.Message) error
	State() ws.ConnState
}
