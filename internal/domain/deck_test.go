package domain

import (
	"errors"
	"testing"
)

func TestNormalizeImageLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"photo.png", "/assets/photo.png"},
		{" photo.png ", "/assets/photo.png"},
		{"/assets/photo.png", "/assets/photo.png"},
		{"http://example.com/p.png", "http://example.com/p.png"},
		{"HTTPS://example.com/p.png", "HTTPS://example.com/p.png"},
	}

	for _, tt := range tests {
		if got := NormalizeImageLink(tt.in); got != tt.want {
			t.Errorf("NormalizeImageLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeckValidate(t *testing.T) {
	q := Question{ID: "1", Text: "What color is the sky?", Answer: "Blue", Fake: "Green"}

	tests := []struct {
		name string
		deck *Deck
		want error
	}{
		{"nil deck", nil, ErrNoActiveDeck},
		{"unnamed", &Deck{Questions: []Question{q}}, ErrDeckUnnamed},
		{"whitespace name", &Deck{Name: "  ", Questions: []Question{q}}, ErrDeckUnnamed},
		{"no questions", &Deck{Name: "Week 1"}, ErrEmptyDeck},
		{"valid", &Deck{Name: "Week 1", Questions: []Question{q}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.deck.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestJurorKey(t *testing.T) {
	if JurorKey("  Alice ") != "alice" {
		t.Errorf("JurorKey should trim and lowercase, got %q", JurorKey("  Alice "))
	}
	if JurorKey("   ") != "" {
		t.Errorf("blank juror should map to empty key")
	}
}
