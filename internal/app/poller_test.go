package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"fysics/internal/domain"
	"fysics/internal/transport/rest"
)

func TestPollerDeliversStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"lobby","players":["alice","bob"]}`))
	}))
	defer srv.Close()

	client := rest.NewClient(srv.URL, testLogger())
	poller := NewStatusPoller(client, "ROOM", time.Second, clockwork.NewFakeClock(), testLogger())
	go poller.Run(context.Background())
	defer poller.Stop()

	update, ok := <-poller.Updates()
	if !ok {
		t.Fatal("updates closed before the first poll")
	}
	if update.Status == nil {
		t.Fatalf("update = %+v", update)
	}
	if update.Status.Status != domain.RoomLobby || len(update.Status.Players) != 2 {
		t.Errorf("status = %+v", update.Status)
	}
}

func TestPollerGoneDeliveredOnceAndStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := rest.NewClient(srv.URL, testLogger())
	poller := NewStatusPoller(client, "ROOM", time.Second, clockwork.NewFakeClock(), testLogger())
	go poller.Run(context.Background())

	update, ok := <-poller.Updates()
	if !ok || !update.Gone {
		t.Fatalf("first update = %+v, ok=%v; want Gone", update, ok)
	}

	// The loop ends after Gone; the channel closes without a second delivery
	if update, ok := <-poller.Updates(); ok {
		t.Errorf("unexpected update after Gone: %+v", update)
	}
}

func TestPollerKeepsGoingThroughErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "backend hiccup", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"in-progress","players":["alice"]}`))
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClock()
	client := rest.NewClient(srv.URL, testLogger())
	poller := NewStatusPoller(client, "ROOM", time.Second, clock, testLogger())
	go poller.Run(context.Background())
	defer poller.Stop()

	update, ok := <-poller.Updates()
	if !ok || update.Err == "" {
		t.Fatalf("first update = %+v, ok=%v; want an error", update, ok)
	}

	clock.BlockUntil(1)
	clock.Advance(time.Second)

	update, ok = <-poller.Updates()
	if !ok || update.Status == nil {
		t.Fatalf("second update = %+v, ok=%v; want a status", update, ok)
	}
	if update.Status.Status != domain.RoomInProgress {
		t.Errorf("status = %+v", update.Status)
	}
}

func TestPollerStopClosesUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"lobby","players":[]}`))
	}))
	defer srv.Close()

	client := rest.NewClient(srv.URL, testLogger())
	poller := NewStatusPoller(client, "ROOM", time.Second, clockwork.NewFakeClock(), testLogger())
	go poller.Run(context.Background())

	<-poller.Updates()
	poller.Stop()

	for range poller.Updates() {
		// drain whatever was in flight
	}
}
