package domain

// HostPhase represents the host's view of the current question round
type HostPhase string

const (
	HostCollecting HostPhase = "collecting" // Players are writing fake answers
	HostAnswers    HostPhase = "answers"    // Answer pool revealed, players choosing
	HostResults    HostPhase = "results"    // Vote tallies shown
)

// String returns the string representation of the phase
func (p HostPhase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid.
// collecting → answers → results, then back to collecting on a question change.
func (p HostPhase) CanTransitionTo(target HostPhase) bool {
	validTransitions := map[HostPhase][]HostPhase{
		HostCollecting: {HostAnswers},
		HostAnswers:    {HostResults},
		HostResults:    {HostCollecting},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// PlayerPhase represents the player's view of the current question round
type PlayerPhase string

const (
	PlayerSubmit  PlayerPhase = "submit"  // Waiting for this player's fake answer
	PlayerWaiting PlayerPhase = "waiting" // Fake submitted, waiting for the reveal
	PlayerChoose  PlayerPhase = "choose"  // Answer pool shown, pick one
	PlayerResults PlayerPhase = "results" // Vote tallies shown
)

// String returns the string representation of the phase
func (p PlayerPhase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is
// valid. A new question resets any phase back to submit; that reset is
// unconditional and not part of this table. The answers and results reveals
// are host-driven and may reach a player who never submitted, so choose is
// reachable from submit as well as waiting.
func (p PlayerPhase) CanTransitionTo(target PlayerPhase) bool {
	validTransitions := map[PlayerPhase][]PlayerPhase{
		PlayerSubmit:  {PlayerWaiting, PlayerChoose},
		PlayerWaiting: {PlayerChoose},
		PlayerChoose:  {PlayerResults},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
