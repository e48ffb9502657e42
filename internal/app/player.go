package app

import (
	"log/slog"
	"strings"
	"sync"

	"fysics/internal/domain"
	"fysics/internal/transport/ws"
)

// PlayerSession mirrors the host-driven phases for one player. Inbound
// channel messages drive every transition; a new question event resets the
// machine regardless of where it stands. Cancellation and game-finished
// signals latch, so the duplicate delivery race between the status poll
// and the event channel is harmless.
type PlayerSession struct {
	mu     sync.Mutex
	room   string
	name   string
	conn   Conn
	logger *slog.Logger

	phase    domain.PlayerPhase
	index    int
	question *domain.Question
	lastSeq  int64

	fake    string
	choice  string
	answers []string
	stats   map[string]int

	cancelled bool
	finished  bool
}

// NewPlayerSession prepares a session for one joined player
func NewPlayerSession(room, name string, conn Conn, logger *slog.Logger) *PlayerSession {
	return &PlayerSession{
		room:   room,
		name:   name,
		conn:   conn,
		logger: logger,
		phase:  domain.PlayerSubmit,
	}
}

// Handle applies one inbound channel message, reporting whether it changed
// visible state (so a console loop knows to redraw).
func (p *PlayerSession) Handle(msg ws.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Terminal signals latch no matter how stale the message is
	switch msg.Type {
	case ws.MsgCancelled:
		changed := !p.cancelled
		p.cancelled = true
		return changed
	case ws.MsgGameFinished:
		changed := !p.finished
		p.finished = true
		return changed
	}

	// A host-originated message older than the newest we have seen is a
	// stale phase signal; drop it.
	if msg.Seq > 0 {
		if msg.Seq < p.lastSeq {
			p.logger.Debug("dropping stale event", "type", msg.Type, "seq", msg.Seq, "latest", p.lastSeq)
			return false
		}
		p.lastSeq = msg.Seq
	}

	switch msg.Type {
	case ws.MsgQuestion:
		p.index = msg.Index
		p.question = msg.Question
		p.phase = domain.PlayerSubmit
		p.fake = ""
		p.choice = ""
		p.answers = nil
		p.stats = nil
		return true
	case ws.MsgAnswers:
		p.answers = msg.Answers
		if p.phase.CanTransitionTo(domain.PlayerChoose) {
			p.phase = domain.PlayerChoose
		}
		return true
	case ws.MsgResults:
		p.stats = msg.Stats
		p.phase = domain.PlayerResults
		return true
	default:
		return false
	}
}

// SubmitFake sends this player's decoy answer and moves to waiting. One
// submission per question; the resubmit-to-change behavior of earlier
// builds only skewed the host's counter.
func (p *PlayerSession) SubmitFake(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyAnswer
	}
	if p.fake != "" {
		return domain.ErrAlreadySubmitted
	}
	if p.phase != domain.PlayerSubmit {
		return domain.ErrInvalidPhase
	}

	err := p.conn.Send(ws.Message{
		Type:   ws.MsgFake,
		Player: p.name,
		Text:   text,
	})
	if err != nil {
		return err
	}

	p.fake = text
	p.phase = domain.PlayerWaiting
	return nil
}

// Choose sends this player's pick from the answer pool. One choice only,
// no undo.
func (p *PlayerSession) Choose(answer string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != domain.PlayerChoose {
		return domain.ErrInvalidPhase
	}
	if p.choice != "" {
		return domain.ErrAlreadyChosen
	}

	found := false
	for _, candidate := range p.answers {
		if candidate == answer {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrUnknownAnswer
	}

	err := p.conn.Send(ws.Message{
		Type:   ws.MsgChoice,
		Player: p.name,
		Answer: answer,
	})
	if err != nil {
		return err
	}

	p.choice = answer
	return nil
}

// ApplyStatus folds a polled session snapshot into the session. The poll
// is a liveness fallback; only the cancelled signal matters here, and it
// latches just like the channel-delivered one.
func (p *PlayerSession) ApplyStatus(status domain.SessionStatus) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status.Cancelled() && !p.cancelled {
		p.cancelled = true
		return true
	}
	return false
}

// Room returns the session's room code
func (p *PlayerSession) Room() string {
	return p.room
}

// Name returns this player's name
func (p *PlayerSession) Name() string {
	return p.name
}

// Phase returns the current player phase
func (p *PlayerSession) Phase() domain.PlayerPhase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Question returns the live question, or nil before the first one arrives
func (p *PlayerSession) Question() (int, *domain.Question) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index, p.question
}

// Answers returns the revealed answer pool
func (p *PlayerSession) Answers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.answers))
	copy(out, p.answers)
	return out
}

// Stats returns the vote tallies, nil before results
func (p *PlayerSession) Stats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stats == nil {
		return nil
	}
	out := make(map[string]int, len(p.stats))
	for answer, count := range p.stats {
		out[answer] = count
	}
	return out
}

// Choice returns this player's pick for the current question, "" if none
func (p *PlayerSession) Choice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.choice
}

// Cancelled reports whether the host cancelled the session
func (p *PlayerSession) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Finished reports whether the host ended the game
func (p *PlayerSession) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}
