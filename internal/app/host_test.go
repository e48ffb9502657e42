package app

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"fysics/internal/domain"
	"fysics/internal/transport/ws"
)

// fakeConn records sent messages for assertions
type fakeConn struct {
	mu    sync.Mutex
	state ws.ConnState
	sent  []ws.Message
	err   error
}

func (f *fakeConn) Send(msg ws.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) State() ws.ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return ws.StateOpen
	}
	return f.state
}

func (f *fakeConn) messages() []ws.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeConn) last() ws.Message {
	msgs := f.messages()
	if len(msgs) == 0 {
		return ws.Message{}
	}
	return msgs[len(msgs)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeck(n int) *domain.Deck {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:     string(rune('1' + i)),
			Text:   "question",
			Answer: "right",
			Fake:   "wrong",
		}
	}
	return &domain.Deck{Name: "Test Deck", Questions: questions}
}

func startedHost(t *testing.T, n int) (*HostSession, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	session, err := NewHostSession("ROOM", testDeck(n), conn, testLogger())
	if err != nil {
		t.Fatalf("NewHostSession: %v", err)
	}
	if err := session.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return session, conn
}

func TestNewHostSessionRejectsInvalidDeck(t *testing.T) {
	_, err := NewHostSession("ROOM", &domain.Deck{Name: "Empty"}, &fakeConn{}, testLogger())
	if !errors.Is(err, domain.ErrEmptyDeck) {
		t.Errorf("want ErrEmptyDeck, got %v", err)
	}
}

func TestHostStartBroadcastsFirstQuestion(t *testing.T) {
	session, conn := startedHost(t, 3)

	if session.Phase() != domain.HostCollecting {
		t.Errorf("phase = %s, want collecting", session.Phase())
	}
	msg := conn.last()
	if msg.Type != ws.MsgQuestion || msg.Index != 0 || msg.Question == nil {
		t.Errorf("first broadcast = %+v", msg)
	}
	if msg.Seq == 0 {
		t.Error("question broadcast should carry a sequence number")
	}
}

func TestHostPhaseCycle(t *testing.T) {
	session, conn := startedHost(t, 2)

	// results before answers is out of order
	if err := session.RequestResults(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("RequestResults from collecting: %v", err)
	}

	if err := session.RevealAnswers(); err != nil {
		t.Fatalf("RevealAnswers: %v", err)
	}
	if session.Phase() != domain.HostAnswers {
		t.Errorf("phase = %s, want answers", session.Phase())
	}
	pool := session.AnswerPool()
	if len(pool) != 2 || pool[0] != "right" || pool[1] != "wrong" {
		t.Errorf("answer pool = %v", pool)
	}
	if err := session.RevealAnswers(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("double reveal: %v", err)
	}

	if err := session.RequestResults(); err != nil {
		t.Fatalf("RequestResults: %v", err)
	}
	if conn.last().Type != ws.MsgResultsReq {
		t.Errorf("last message = %+v", conn.last())
	}
	// The phase holds until the results event arrives over the channel
	if session.Phase() != domain.HostAnswers {
		t.Errorf("phase flipped before results arrived: %s", session.Phase())
	}

	session.Handle(ws.Message{Type: ws.MsgResults, Stats: map[string]int{"right": 2}})
	if session.Phase() != domain.HostResults {
		t.Errorf("phase = %s, want results", session.Phase())
	}
	if session.Stats()["right"] != 2 {
		t.Errorf("stats = %v", session.Stats())
	}
}

func TestHostNext(t *testing.T) {
	session, conn := startedHost(t, 2)

	if err := session.Next(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("Next from collecting: %v", err)
	}

	advanceToResults(t, session)
	if err := session.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if session.Index() != 1 || session.Phase() != domain.HostCollecting {
		t.Errorf("index=%d phase=%s after Next", session.Index(), session.Phase())
	}
	msg := conn.last()
	if msg.Type != ws.MsgQuestion || msg.Index != 1 {
		t.Errorf("broadcast after Next = %+v", msg)
	}

	// Sequence numbers only grow
	msgs := conn.messages()
	var lastSeq int64
	for _, m := range msgs {
		if m.Seq <= lastSeq {
			t.Fatalf("sequence did not increase: %+v", msgs)
		}
		lastSeq = m.Seq
	}

	advanceToResults(t, session)
	if err := session.Next(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("Next past the last question: %v", err)
	}
}

func TestHostPrev(t *testing.T) {
	session, _ := startedHost(t, 3)

	if err := session.Prev(); !errors.Is(err, domain.ErrFirstQuestion) {
		t.Errorf("Prev on the first question: %v", err)
	}

	advanceToResults(t, session)
	if err := session.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if err := session.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if session.Index() != 0 || session.Phase() != domain.HostCollecting {
		t.Errorf("index=%d phase=%s after Prev", session.Index(), session.Phase())
	}

	// Prev is collecting-only; once answers are out the question is locked
	if err := session.RevealAnswers(); err != nil {
		t.Fatalf("RevealAnswers: %v", err)
	}
	if err := session.Prev(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("Prev from answers: %v", err)
	}
}

func TestHostEndGame(t *testing.T) {
	session, conn := startedHost(t, 2)

	advanceToResults(t, session)
	if err := session.EndGame(); !errors.Is(err, domain.ErrNotLastQuestion) {
		t.Errorf("EndGame before the last question: %v", err)
	}

	if err := session.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := session.EndGame(); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Errorf("EndGame from collecting: %v", err)
	}

	advanceToResults(t, session)
	if err := session.EndGame(); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	if conn.last().Type != ws.MsgGameFinished {
		t.Errorf("last message = %+v", conn.last())
	}
	if !session.Finished() {
		t.Error("session not marked finished")
	}
	if err := session.Next(); !errors.Is(err, domain.ErrGameOver) {
		t.Errorf("Next after the end: %v", err)
	}
	if err := session.EndGame(); !errors.Is(err, domain.ErrGameOver) {
		t.Errorf("double EndGame: %v", err)
	}
}

func TestHostSubmissionRoster(t *testing.T) {
	session, _ := startedHost(t, 1)

	if len(session.Submissions()) != 0 {
		t.Fatalf("fresh question has submissions: %v", session.Submissions())
	}
	session.Handle(ws.Message{Type: ws.MsgSubmission, Player: "alice"})
	session.Handle(ws.Message{Type: ws.MsgSubmission, Player: "bob"})
	got := session.Submissions()
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("submissions = %v", got)
	}
}

func TestHostRecordsRoundObservations(t *testing.T) {
	session, _ := startedHost(t, 1)

	session.Handle(ws.Message{Type: ws.MsgFake, Player: "alice", Text: "Pascal"})
	session.Handle(ws.Message{Type: ws.MsgChoice, Player: "bob", Answer: "Pascal"})

	rounds := session.Rounds()
	if len(rounds) != 1 {
		t.Fatalf("got %d rounds, want 1", len(rounds))
	}
	if rounds[0].Fakes["alice"] != "Pascal" || rounds[0].Choices["bob"] != "Pascal" {
		t.Errorf("round = %+v", rounds[0])
	}
}

func TestHostIgnoresEventsBeforeStart(t *testing.T) {
	conn := &fakeConn{}
	session, err := NewHostSession("ROOM", testDeck(1), conn, testLogger())
	if err != nil {
		t.Fatalf("NewHostSession: %v", err)
	}
	// Must not panic
	session.Handle(ws.Message{Type: ws.MsgSubmission, Player: "alice"})
	if len(session.Rounds()) != 0 {
		t.Errorf("rounds recorded before start: %v", session.Rounds())
	}
}

func advanceToResults(t *testing.T, session *HostSession) {
	t.Helper()
	if err := session.RevealAnswers(); err != nil {
		t.Fatalf("RevealAnswers: %v", err)
	}
	session.Handle(ws.Message{Type: ws.MsgResults, Stats: map[string]int{}})
	if session.Phase() != domain.HostResults {
		t.Fatalf("could not reach results, stuck at %s", session.Phase())
	}
}
