package ws

import "fysics/internal/domain"

// MessageType discriminates the JSON messages exchanged over a room's
// event channel. The backend relays them verbatim between peers.
type MessageType string

const (
	// Host → players
	MsgQuestion     MessageType = "question"
	MsgAnswers      MessageType = "answers"
	MsgResultsReq   MessageType = "results_request"
	MsgGameFinished MessageType = "game_finished"

	// Players → host
	MsgFake   MessageType = "fake"
	MsgChoice MessageType = "choice"

	// Backend → peers
	MsgSubmission MessageType = "submission"
	MsgResults    MessageType = "results"
	MsgCancelled  MessageType = "cancelled"
)

// Message is the wire envelope. A single struct with optional fields keeps
// the vocabulary in one place; which fields are meaningful depends on Type.
type Message struct {
	Type MessageType `json:"type"`

	// Seq is a per-room monotonic counter stamped on host-originated
	// messages so consumers can discard stale phase signals.
	Seq int64 `json:"seq,omitempty"`

	Index    int              `json:"index,omitempty"`    // question
	Question *domain.Question `json:"question,omitempty"` // question
	Player   string           `json:"player,omitempty"`   // fake, submission, choice
	Text     string           `json:"text,omitempty"`     // fake
	Answer   string           `json:"answer,omitempty"`   // choice
	Answers  []string         `json:"answers,omitempty"`  // answers
	Stats    map[string]int   `json:"stats,omitempty"`    // results
}
