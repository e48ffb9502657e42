package domain

import "errors"

// Domain errors
var (
	ErrNoActiveDeck     = errors.New("no active deck")
	ErrDeckUnnamed      = errors.New("deck has no name")
	ErrEmptyDeck        = errors.New("deck has no questions")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrAlreadySubmitted = errors.New("already submitted a fake this question")
	ErrAlreadyChosen    = errors.New("already chose an answer this question")
	ErrEmptyAnswer      = errors.New("answer cannot be empty")
	ErrUnknownAnswer    = errors.New("answer is not in the current pool")
	ErrDuplicateJuror   = errors.New("juror has already voted in this room")
	ErrEmptyJuror       = errors.New("juror name cannot be empty")
	ErrGameOver         = errors.New("game already finished")
	ErrFirstQuestion    = errors.New("already on the first question")
	ErrNotLastQuestion  = errors.New("not on the last question")
	ErrRoomGone         = errors.New("room no longer exists")
	ErrNotAuthorized    = errors.New("host code not accepted")
)
