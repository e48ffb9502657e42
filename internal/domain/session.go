package domain

// RoomState is the backend-owned lifecycle state of a session
type RoomState string

const (
	RoomLobby      RoomState = "lobby"
	RoomInProgress RoomState = "in-progress"
	RoomCancelled  RoomState = "cancelled"
	RoomFinished   RoomState = "finished"
)

// SessionStatus is a polled snapshot of a room. Clients only observe it;
// the backend owns the authoritative state.
type SessionStatus struct {
	Status  RoomState `json:"status"`
	Players []string  `json:"players"`
}

// Cancelled reports whether the host has cancelled the session
func (s SessionStatus) Cancelled() bool {
	return s.Status == RoomCancelled
}
