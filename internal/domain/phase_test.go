package domain

import "testing"

func TestHostPhaseTransitions(t *testing.T) {
	tests := []struct {
		from HostPhase
		to   HostPhase
		want bool
	}{
		{HostCollecting, HostAnswers, true},
		{HostAnswers, HostResults, true},
		{HostResults, HostCollecting, true},
		{HostCollecting, HostResults, false},
		{HostAnswers, HostCollecting, false},
		{HostResults, HostAnswers, false},
		{HostCollecting, HostCollecting, false},
		{HostPhase("bogus"), HostAnswers, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPlayerPhaseTransitions(t *testing.T) {
	tests := []struct {
		from PlayerPhase
		to   PlayerPhase
		want bool
	}{
		{PlayerSubmit, PlayerWaiting, true},
		{PlayerSubmit, PlayerChoose, true}, // reveal can reach a player who never submitted
		{PlayerWaiting, PlayerChoose, true},
		{PlayerChoose, PlayerResults, true},
		{PlayerSubmit, PlayerResults, false},
		{PlayerWaiting, PlayerSubmit, false},
		{PlayerResults, PlayerChoose, false},
		{PlayerChoose, PlayerChoose, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
