package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"fysics/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestRoomKey(t *testing.T) {
	tests := []struct {
		prefix string
		room   string
		want   string
	}{
		{PrefixJuryVotes, "abcd", "jury_votes_ABCD"},
		{PrefixJuryVotes, " AbCd ", "jury_votes_ABCD"},
		{PrefixJurySeats, "", "jury_seats_GLOBAL"},
	}
	for _, tt := range tests {
		if got := RoomKey(tt.prefix, tt.room); got != tt.want {
			t.Errorf("RoomKey(%q, %q) = %q, want %q", tt.prefix, tt.room, got, tt.want)
		}
	}
}

func TestGetMissingKey(t *testing.T) {
	st := testStore(t)

	var v int
	found, err := st.Get("nope", &v)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("missing key reported as found")
	}
}

func TestPutGetDelete(t *testing.T) {
	st := testStore(t)

	if err := st.Put("count", 42); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var v int
	found, err := st.Get("count", &v)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if v != 42 {
		t.Errorf("got %d, want 42", v)
	}

	if err := st.Delete("count"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := st.Get("count", &v); found {
		t.Error("deleted key still found")
	}
	if err := st.Delete("count"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

func TestActiveDeckRoundTrip(t *testing.T) {
	st := testStore(t)

	if _, ok := st.ActiveDeck(); ok {
		t.Fatal("fresh store should have no active deck")
	}

	deck := domain.NewDeck("Week 3", []domain.Question{
		{ID: "1", Text: "Q", Answer: "A", Fake: "F"},
	})
	deck.DeckID = "week3.csv"
	if err := st.SetActiveDeck(deck); err != nil {
		t.Fatalf("SetActiveDeck: %v", err)
	}

	got, ok := st.ActiveDeck()
	if !ok {
		t.Fatal("active deck not found after set")
	}
	if got.Name != "Week 3" || got.DeckID != "week3.csv" || len(got.Questions) != 1 {
		t.Errorf("deck round trip mangled: %+v", got)
	}
	if got.UploadedAt != deck.UploadedAt {
		t.Errorf("UploadedAt = %d, want %d", got.UploadedAt, deck.UploadedAt)
	}

	if err := st.ClearActiveDeck(); err != nil {
		t.Fatalf("ClearActiveDeck: %v", err)
	}
	if _, ok := st.ActiveDeck(); ok {
		t.Error("active deck survived clear")
	}
}

func TestSetActiveDeckRejectsInvalid(t *testing.T) {
	st := testStore(t)
	err := st.SetActiveDeck(&domain.Deck{Name: "Empty"})
	if !errors.Is(err, domain.ErrEmptyDeck) {
		t.Errorf("want ErrEmptyDeck, got %v", err)
	}
}

func TestActiveDeckCorruptPayload(t *testing.T) {
	st := testStore(t)
	if err := os.WriteFile(filepath.Join(st.dir, KeyActiveDeck+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, ok := st.ActiveDeck(); ok {
		t.Error("corrupt payload should read as no active deck")
	}
}

func TestHostCode(t *testing.T) {
	st := testStore(t)

	if code := st.HostCode(); code != "" {
		t.Fatalf("fresh store host code = %q, want empty", code)
	}
	if err := st.SetHostCode("SECRET"); err != nil {
		t.Fatalf("SetHostCode: %v", err)
	}
	if code := st.HostCode(); code != "SECRET" {
		t.Errorf("host code = %q, want SECRET", code)
	}
	if err := st.ClearHostCode(); err != nil {
		t.Fatalf("ClearHostCode: %v", err)
	}
	if code := st.HostCode(); code != "" {
		t.Errorf("host code survived clear: %q", code)
	}
}
