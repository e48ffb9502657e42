package app

import (
	"log/slog"
	"sync"

	"fysics/internal/domain"
	"fysics/internal/summary"
	"fysics/internal/transport/ws"
)

// HostSession drives question progression for one room. Phases cycle
// collecting → answers → results per question; every index change resets
// to collecting and broadcasts the new question. All methods are safe for
// concurrent use by the console loop and the channel event reader.
type HostSession struct {
	mu     sync.Mutex
	room   string
	deck   *domain.Deck
	conn   Conn
	logger *slog.Logger

	index    int
	phase    domain.HostPhase
	seq      int64
	finished bool

	submissions []string // player names, in arrival order, no dedup
	answerPool  []string
	stats       map[string]int

	rounds []summary.Round
}

// NewHostSession validates the deck and prepares a session for it. Start
// must be called once the channel is dialing to broadcast the first
// question.
func NewHostSession(room string, deck *domain.Deck, conn Conn, logger *slog.Logger) (*HostSession, error) {
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return &HostSession{
		room:   room,
		deck:   deck,
		conn:   conn,
		logger: logger,
		phase:  domain.HostCollecting,
	}, nil
}

// Start broadcasts the first question and enters collecting
func (h *HostSession) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enterCollecting()
}

// enterCollecting resets per-question state and broadcasts the current
// question. Callers hold h.mu.
func (h *HostSession) enterCollecting() error {
	h.phase = domain.HostCollecting
	h.submissions = nil
	h.answerPool = nil
	h.stats = nil

	question := h.deck.Questions[h.index]
	h.rounds = append(h.rounds, summary.Round{
		Index:    h.index,
		Question: question,
		Fakes:    make(map[string]string),
		Choices:  make(map[string]string),
	})

	h.seq++
	err := h.conn.Send(ws.Message{
		Type:     ws.MsgQuestion,
		Seq:      h.seq,
		Index:    h.index,
		Question: &question,
	})
	if err != nil {
		return err
	}

	h.logger.Info("question live", "room", h.room, "index", h.index)
	return nil
}

// Handle applies one inbound channel message to the session
func (h *HostSession) Handle(msg ws.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.rounds) == 0 {
		// Nothing live yet; events before Start carry no usable context
		h.logger.Debug("ignoring event before first question", "type", msg.Type)
		return
	}
	round := &h.rounds[len(h.rounds)-1]

	switch msg.Type {
	case ws.MsgSubmission:
		// A player resubmitting shows up again and biases the count;
		// the backend holds the texts, so nothing to dedup against.
		h.submissions = append(h.submissions, msg.Player)
	case ws.MsgFake:
		if msg.Player != "" {
			round.Fakes[msg.Player] = msg.Text
		}
	case ws.MsgChoice:
		if msg.Player != "" {
			round.Choices[msg.Player] = msg.Answer
		}
	case ws.MsgAnswers:
		// Echo of our own reveal through the relay
		h.answerPool = msg.Answers
	case ws.MsgResults:
		h.stats = msg.Stats
		round.Stats = msg.Stats
		if h.phase == domain.HostAnswers {
			h.phase = domain.HostResults
		}
	default:
		h.logger.Debug("ignoring event", "type", msg.Type)
	}
}

// RevealAnswers broadcasts the answer pool for the current question and
// moves to the answers phase. The pool holds the correct answer and the
// predefined fake; player-submitted fakes are merged in by the backend.
func (h *HostSession) RevealAnswers() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.phase.CanTransitionTo(domain.HostAnswers) {
		return domain.ErrInvalidPhase
	}

	question := h.deck.Questions[h.index]
	pool := make([]string, 0, 2)
	if question.Answer != "" {
		pool = append(pool, question.Answer)
	}
	if question.Fake != "" {
		pool = append(pool, question.Fake)
	}

	h.seq++
	if err := h.conn.Send(ws.Message{Type: ws.MsgAnswers, Seq: h.seq, Answers: pool}); err != nil {
		return err
	}

	h.answerPool = pool
	h.phase = domain.HostAnswers
	return nil
}

// RequestResults asks the backend to broadcast vote tallies. The phase
// flips to results only when the results event actually arrives.
func (h *HostSession) RequestResults() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.phase != domain.HostAnswers {
		return domain.ErrInvalidPhase
	}

	h.seq++
	return h.conn.Send(ws.Message{Type: ws.MsgResultsReq, Seq: h.seq})
}

// Next advances to the following question. Only permitted from results,
// and never past the last question; ending the game is EndGame's job.
func (h *HostSession) Next() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finished {
		return domain.ErrGameOver
	}
	if h.phase != domain.HostResults {
		return domain.ErrInvalidPhase
	}
	if h.index >= len(h.deck.Questions)-1 {
		return domain.ErrInvalidPhase
	}

	h.index++
	return h.enterCollecting()
}

// Prev steps back one question. Only permitted while still collecting,
// before any answers have been revealed.
func (h *HostSession) Prev() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finished {
		return domain.ErrGameOver
	}
	if h.phase != domain.HostCollecting {
		return domain.ErrInvalidPhase
	}
	if h.index == 0 {
		return domain.ErrFirstQuestion
	}

	h.index--
	return h.enterCollecting()
}

// EndGame broadcasts the terminal finished event. Reachable only from
// results on the last question.
func (h *HostSession) EndGame() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finished {
		return domain.ErrGameOver
	}
	if h.phase != domain.HostResults {
		return domain.ErrInvalidPhase
	}
	if h.index != len(h.deck.Questions)-1 {
		return domain.ErrNotLastQuestion
	}

	h.seq++
	if err := h.conn.Send(ws.Message{Type: ws.MsgGameFinished, Seq: h.seq}); err != nil {
		return err
	}
	h.finished = true

	h.logger.Info("game finished", "room", h.room, "questions", len(h.deck.Questions))
	return nil
}

// Room returns the session's room code
func (h *HostSession) Room() string {
	return h.room
}

// Phase returns the current host phase
func (h *HostSession) Phase() domain.HostPhase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

// Index returns the current question index
func (h *HostSession) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Question returns the current question
func (h *HostSession) Question() domain.Question {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deck.Questions[h.index]
}

// QuestionCount returns the number of questions in the deck
func (h *HostSession) QuestionCount() int {
	return len(h.deck.Questions)
}

// LastQuestion reports whether the current question is the deck's last
func (h *HostSession) LastQuestion() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index == len(h.deck.Questions)-1
}

// Submissions returns the fake-answer submission roster so far this
// question, in arrival order.
func (h *HostSession) Submissions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.submissions))
	copy(out, h.submissions)
	return out
}

// AnswerPool returns the revealed answer pool for this question
func (h *HostSession) AnswerPool() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.answerPool))
	copy(out, h.answerPool)
	return out
}

// Stats returns the vote tallies for this question, nil before results
func (h *HostSession) Stats() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stats == nil {
		return nil
	}
	out := make(map[string]int, len(h.stats))
	for answer, count := range h.stats {
		out[answer] = count
	}
	return out
}

// Finished reports whether EndGame has run
func (h *HostSession) Finished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finished
}

// Rounds returns the per-question records observed over the relay, for
// the game summary.
func (h *HostSession) Rounds() []summary.Round {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]summary.Round, len(h.rounds))
	copy(out, h.rounds)
	return out
}
