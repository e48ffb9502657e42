package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"fysics/internal/domain"
)

// Asset is a named file attached to a deck upload
type Asset struct {
	Name    string
	Content io.Reader
}

// ParseReport is the backend's verdict on an uploaded CSV
type ParseReport struct {
	Status  string            `json:"status"` // "success" or "error"
	Data    []domain.Question `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// UploadDeckResponse is the body of a successful POST /upload-deck
type UploadDeckResponse struct {
	DeckID    string      `json:"deck_id"`
	Questions ParseReport `json:"questions"`
	Error     string      `json:"error,omitempty"`
}

// UploadDeck posts a deck CSV plus optional question images as a multipart
// form. The content type is left to the multipart writer so the boundary
// is generated correctly.
func (c *Client) UploadDeck(ctx context.Context, filename string, csv io.Reader, images []Asset) *Result {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return failure(err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return failure(fmt.Errorf("read deck csv: %w", err))
	}

	for _, image := range images {
		part, err := form.CreateFormFile("images", image.Name)
		if err != nil {
			return failure(err)
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return failure(fmt.Errorf("read image %s: %w", image.Name, err))
		}
	}

	if err := form.Close(); err != nil {
		return failure(err)
	}
	return c.do(ctx, http.MethodPost, "/upload-deck", form.FormDataContentType(), &buf, nil)
}

// UploadAsset posts a single standalone image asset
func (c *Client) UploadAsset(ctx context.Context, name string, content io.Reader) *Result {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return failure(err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return failure(fmt.Errorf("read asset %s: %w", name, err))
	}
	if err := form.Close(); err != nil {
		return failure(err)
	}
	return c.do(ctx, http.MethodPost, "/upload-asset", form.FormDataContentType(), &buf, nil)
}

// ListDecks fetches the decks mirrored on the backend
func (c *Client) ListDecks(ctx context.Context) *Result {
	return c.getJSON(ctx, "/decks")
}

// GetDeck fetches one mirrored deck by filename
func (c *Client) GetDeck(ctx context.Context, filename string) *Result {
	return c.getJSON(ctx, "/decks/"+url.PathEscape(filename))
}

// DeleteDeck removes a mirrored deck by filename
func (c *Client) DeleteDeck(ctx context.Context, filename string) *Result {
	return c.delete(ctx, "/decks/"+url.PathEscape(filename))
}

// SaveDeck mirrors a locally authored deck on the backend
func (c *Client) SaveDeck(ctx context.Context, deck *domain.Deck) *Result {
	return c.postJSON(ctx, "/save-deck", deck)
}

// HostLogin exchanges a host code for a token
func (c *Client) HostLogin(ctx context.Context, code string) *Result {
	return c.postJSON(ctx, "/host/login", map[string]string{"host_code": code})
}

// VerifyHost checks a candidate host code before it is cached locally.
// The candidate rides in the credential header explicitly, overriding
// whatever the store currently holds.
func (c *Client) VerifyHost(ctx context.Context, code string) *Result {
	extra := http.Header{}
	extra.Set(HostCodeHeader, code)
	return c.do(ctx, http.MethodGet, "/host/verify", "", nil, extra)
}

// CreateSession opens a room for the given deck and returns its code
func (c *Client) CreateSession(ctx context.Context, deckID string) *Result {
	return c.postJSON(ctx, "/create-session", map[string]string{"deck_id": deckID})
}

// SessionStatus polls a room's lifecycle state and roster
func (c *Client) SessionStatus(ctx context.Context, roomCode string) *Result {
	return c.getJSON(ctx, "/session-status/"+url.PathEscape(roomCode))
}

// CancelSession tears down a room. This is the only client call that
// mutates authoritative room state; the backend fans the cancellation out
// to the players.
func (c *Client) CancelSession(ctx context.Context, roomCode string) *Result {
	return c.delete(ctx, "/session/"+url.PathEscape(roomCode))
}

// JoinSession adds a named player to a room's roster
func (c *Client) JoinSession(ctx context.Context, roomCode, playerName string) *Result {
	return c.postJSON(ctx, "/join-session", map[string]string{
		"room_code":   roomCode,
		"player_name": playerName,
	})
}
