// Package jury collects "Best Fake" ballots for a room and ranks the
// results. Ballots live in the local store, keyed per room; the uniqueness
// guard is client-side only and not authoritative across devices.
package jury

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"fysics/internal/domain"
	"fysics/internal/store"
)

// Seat count bounds for a jury
const (
	DefaultSeats = 1
	MinSeats     = 1
	MaxSeats     = 25
)

// Answer is one candidate fake in the jury's pool
type Answer struct {
	ID     string `json:"id"`
	Player string `json:"player"`
	Text   string `json:"text"`
}

// ParseSeedLine turns one seed line into an Answer. Lines read
// "player::text"; a line without the separator becomes an anonymous
// answer attributed positionally.
func ParseSeedLine(line string, index int) (Answer, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Answer{}, false
	}

	answer := Answer{ID: uuid.NewString()}
	if player, text, found := strings.Cut(line, "::"); found {
		answer.Player = strings.TrimSpace(player)
		answer.Text = strings.TrimSpace(text)
	} else {
		answer.Text = line
	}
	if answer.Player == "" {
		answer.Player = positionalName(index)
	}
	if answer.Text == "" {
		return Answer{}, false
	}
	return answer, true
}

func positionalName(index int) string {
	return "Player " + strconv.Itoa(index+1)
}

// ParseSeedAnswers parses a batch of seed lines, skipping blanks
func ParseSeedAnswers(lines []string) []Answer {
	var answers []Answer
	for i, line := range lines {
		if answer, ok := ParseSeedLine(line, i); ok {
			answers = append(answers, answer)
		}
	}
	return answers
}

// Box is a room's ballot box over the local store
type Box struct {
	store  *store.Store
	room   string
	logger *slog.Logger
}

// NewBox opens the ballot box for a room
func NewBox(st *store.Store, room string, logger *slog.Logger) *Box {
	room = strings.ToUpper(strings.TrimSpace(room))
	return &Box{store: st, room: room, logger: logger}
}

// Room returns the normalized room code this box serves
func (b *Box) Room() string {
	if b.room == "" {
		return "GLOBAL"
	}
	return b.room
}

// Answers returns the room's persisted answer pool
func (b *Box) Answers() []Answer {
	var answers []Answer
	if _, err := b.store.Get(store.RoomKey(store.PrefixJuryAnswers, b.room), &answers); err != nil {
		b.logger.Warn("discarding unreadable answer pool", "room", b.Room(), "error", err)
		return nil
	}
	return answers
}

// SetAnswers replaces the room's answer pool
func (b *Box) SetAnswers(answers []Answer) error {
	return b.store.Put(store.RoomKey(store.PrefixJuryAnswers, b.room), answers)
}

// SeedAnswers fills an empty pool from seed lines and returns the pool in
// effect. An already-populated pool wins over the seed.
func (b *Box) SeedAnswers(lines []string) ([]Answer, error) {
	if existing := b.Answers(); len(existing) > 0 {
		return existing, nil
	}
	parsed := ParseSeedAnswers(lines)
	if len(parsed) == 0 {
		return nil, nil
	}
	if err := b.SetAnswers(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// Votes returns the room's ballots in the order they were cast
func (b *Box) Votes() []domain.JuryVote {
	var votes []domain.JuryVote
	if _, err := b.store.Get(store.RoomKey(store.PrefixJuryVotes, b.room), &votes); err != nil {
		b.logger.Warn("discarding unreadable ballots", "room", b.Room(), "error", err)
		return nil
	}
	return votes
}

// Cast appends a ballot. A juror (case-insensitive, trimmed) gets one vote
// per room; the stored list is untouched when the guard rejects.
func (b *Box) Cast(juror, answerID string) (*domain.JuryVote, error) {
	key := domain.JurorKey(juror)
	if key == "" {
		return nil, domain.ErrEmptyJuror
	}

	var picked *Answer
	for _, answer := range b.Answers() {
		if answer.ID == answerID {
			picked = &answer
			break
		}
	}
	if picked == nil {
		return nil, domain.ErrUnknownAnswer
	}

	votes := b.Votes()
	for _, vote := range votes {
		if domain.JurorKey(vote.Juror) == key {
			return nil, domain.ErrDuplicateJuror
		}
	}

	vote := domain.NewJuryVote(b.Room(), juror, picked.ID, picked.Text, picked.Player)
	votes = append(votes, *vote)
	if err := b.store.Put(store.RoomKey(store.PrefixJuryVotes, b.room), votes); err != nil {
		return nil, err
	}

	b.logger.Info("ballot cast", "room", b.Room(), "juror", vote.Juror)
	return vote, nil
}

// SeatCount returns the persisted juror seat count, clamped to bounds
func (b *Box) SeatCount() int {
	var count int
	found, err := b.store.Get(store.RoomKey(store.PrefixJurySeats, b.room), &count)
	if err != nil || !found {
		return DefaultSeats
	}
	return clampSeats(count)
}

// SetSeatCount persists the seat count and returns the clamped value
func (b *Box) SetSeatCount(count int) (int, error) {
	count = clampSeats(count)
	return count, b.store.Put(store.RoomKey(store.PrefixJurySeats, b.room), count)
}

func clampSeats(count int) int {
	if count < MinSeats {
		return MinSeats
	}
	if count > MaxSeats {
		return MaxSeats
	}
	return count
}

// LeaderboardEntry is one ranked answer in the jury results
type LeaderboardEntry struct {
	AnswerID     string `json:"answerId"`
	Answer       string `json:"answer"`
	Player       string `json:"player"`
	Votes        int    `json:"votes"`
	SharePercent int    `json:"sharePercent"`
}

// Tally groups ballots by answer and ranks descending by vote count.
// Ties stay in first-vote order; no secondary ordering is defined for the
// product, so none is invented here. Counts always sum to len(votes) for
// ballots with a non-empty answer ID, and each share is the rounded
// percentage of the total.
func Tally(votes []domain.JuryVote) []LeaderboardEntry {
	var order []string
	counts := make(map[string]*LeaderboardEntry)

	for _, vote := range votes {
		id := strings.TrimSpace(vote.SelectedAnswerID)
		if id == "" {
			continue
		}
		entry, ok := counts[id]
		if !ok {
			entry = &LeaderboardEntry{
				AnswerID: id,
				Answer:   vote.SelectedAnswer,
				Player:   vote.SelectedPlayer,
			}
			counts[id] = entry
			order = append(order, id)
		}
		entry.Votes++
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *counts[id])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Votes > entries[j].Votes
	})

	total := len(votes)
	if total > 0 {
		for i := range entries {
			entries[i].SharePercent = int(float64(entries[i].Votes)/float64(total)*100 + 0.5)
		}
	}
	return entries
}
