package domain

import (
	"strings"
	"time"
)

// Question is a single trivia prompt. Field names follow the parsed shape
// returned by the deck upload endpoint.
type Question struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Fake   string `json:"fake"`
	Image  string `json:"image,omitempty"`
}

// NormalizeImageLink rewrites a bare asset filename to its backend path.
// Absolute URLs and already-normalized paths pass through unchanged.
func NormalizeImageLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(link), "http") || strings.HasPrefix(link, "/assets/") {
		return link
	}
	return "/assets/" + link
}

// Deck is a named, ordered collection of questions. The host owns it;
// it is persisted locally and optionally mirrored on the backend.
type Deck struct {
	Name       string     `json:"name"`
	Questions  []Question `json:"questions"`
	UploadedAt int64      `json:"uploadedAt"` // Unix milliseconds
	DeckID     string     `json:"deckId,omitempty"`
}

// NewDeck creates a deck stamped with the current upload time
func NewDeck(name string, questions []Question) *Deck {
	return &Deck{
		Name:       name,
		Questions:  questions,
		UploadedAt: time.Now().UnixMilli(),
	}
}

// Validate reports whether the deck is usable for a game session
func (d *Deck) Validate() error {
	if d == nil {
		return ErrNoActiveDeck
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckUnnamed
	}
	if len(d.Questions) == 0 {
		return ErrEmptyDeck
	}
	return nil
}
