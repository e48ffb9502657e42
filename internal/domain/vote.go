package domain

import (
	"strings"
	"time"
)

// JuryVote is one juror's final "Best Fake" pick, persisted locally per room.
// At most one vote per (room, canonical juror name) pair.
type JuryVote struct {
	VotedAt          time.Time `json:"votedAt"`
	RoomCode         string    `json:"roomCode"`
	Juror            string    `json:"juror"`
	SelectedAnswerID string    `json:"selectedAnswerId"`
	SelectedAnswer   string    `json:"selectedAnswer"`
	SelectedPlayer   string    `json:"selectedPlayer"`
}

// NewJuryVote creates a vote stamped with the current time
func NewJuryVote(roomCode, juror, answerID, answer, player string) *JuryVote {
	return &JuryVote{
		VotedAt:          time.Now(),
		RoomCode:         strings.ToUpper(roomCode),
		Juror:            strings.TrimSpace(juror),
		SelectedAnswerID: answerID,
		SelectedAnswer:   answer,
		SelectedPlayer:   player,
	}
}

// JurorKey canonicalizes a juror name for the one-vote-per-juror check
func JurorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
