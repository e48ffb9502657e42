package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"fysics/internal/app"
	"fysics/internal/config"
	"fysics/internal/domain"
	"fysics/internal/summary"
	"fysics/internal/transport/ws"
)

func newHostCmd(cfg *config.Config) *cobra.Command {
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Create a room for the active deck and run the game.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())

			if err := ensureHostCode(cmd.Context(), e, con); err != nil {
				return err
			}

			active, ok := e.store.ActiveDeck()
			if !ok {
				return fmt.Errorf("%w: run `fysics deck upload` or `fysics deck activate` first", domain.ErrNoActiveDeck)
			}

			room, err := createSession(cmd.Context(), e, active)
			if err != nil {
				return err
			}

			con.printf("Room %s is open for deck %q (%d questions).", room, active.Name, len(active.Questions))
			printJoinQR(con, e.cfg.APIURL, room)

			if err := runLobby(cmd.Context(), e, con, room); err != nil {
				return err
			}

			return runHostGame(cmd.Context(), e, con, room, active, summaryPath)
		},
	}

	cmd.Flags().StringVar(&summaryPath, "summary", "", "write the game summary CSV to this path (default fysics_summary_<room>.csv)")
	return cmd
}

// ensureHostCode verifies the cached credential, prompting for a new one
// until the backend accepts it. A wrong code just produces another 401;
// there is no client-side lockout.
func ensureHostCode(ctx context.Context, e *env, con *console) error {
	code := e.store.HostCode()
	for {
		if code != "" {
			res := e.client.VerifyHost(ctx, code)
			switch {
			case res.Status == 0:
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			case res.OK:
				return e.store.SetHostCode(code)
			case !res.Unauthorized():
				return fmt.Errorf("verify failed: %s", res.Message())
			}
			con.printf("Host code not accepted.")
		}

		next, ok := con.prompt("Host code")
		if !ok {
			return domain.ErrNotAuthorized
		}
		code = next
	}
}

func createSession(ctx context.Context, e *env, active *domain.Deck) (string, error) {
	deckID := active.DeckID
	if deckID == "" {
		deckID = active.Name
	}

	res := e.client.CreateSession(ctx, deckID)
	if res.Status == 0 {
		return "", fmt.Errorf("could not reach the backend: %s", res.Err)
	}
	if res.Unauthorized() {
		return "", domain.ErrNotAuthorized
	}
	if !res.OK {
		return "", fmt.Errorf("create session failed: %s", res.Message())
	}

	var body struct {
		RoomCode string `json:"room_code"`
	}
	if err := res.Decode(&body); err != nil {
		return "", err
	}
	if body.RoomCode == "" {
		return "", fmt.Errorf("backend returned no room code")
	}
	return strings.ToUpper(body.RoomCode), nil
}

// printJoinQR renders a terminal QR code pointing players at the join page
func printJoinQR(con *console, origin, room string) {
	joinURL := fmt.Sprintf("%s/join?room=%s", strings.TrimSuffix(origin, "/"), room)
	qr, err := qrcode.New(joinURL, qrcode.Medium)
	if err != nil {
		con.printf("Join at %s", joinURL)
		return
	}
	con.printf("Scan to join:")
	con.printf("%s", qr.ToSmallString(false))
	con.printf("or visit %s", joinURL)
}

// runLobby shows the roster until the host presses enter to start
func runLobby(ctx context.Context, e *env, con *console, room string) error {
	con.printf("Waiting in the lobby. Press enter to refresh the roster, type start to begin, or exit to cancel.")
	for {
		res := e.client.SessionStatus(ctx, room)
		switch {
		case res.Status == 0:
			con.printf("Connection trouble: %s", res.Err)
		case res.Gone():
			return domain.ErrRoomGone
		case res.OK:
			var status domain.SessionStatus
			if err := res.Decode(&status); err != nil {
				con.printf("Unexpected status payload: %v", err)
				break
			}
			con.printf("Room %s (%s): %d player(s): %s",
				room, status.Status, len(status.Players), strings.Join(status.Players, ", "))
		}

		line, ok := con.readLine()
		if !ok {
			return cancelRoom(ctx, e, con, room)
		}
		switch strings.ToLower(line) {
		case "start":
			return nil
		case "exit":
			return cancelRoom(ctx, e, con, room)
		}
	}
}

func cancelRoom(ctx context.Context, e *env, con *console, room string) error {
	res := e.client.CancelSession(ctx, room)
	if res.Status == 0 {
		con.printf("Could not cancel the room: %s", res.Err)
	} else if !res.OK && !res.Gone() {
		con.printf("Cancel rejected: %s", res.Message())
	} else {
		con.printf("Room %s cancelled.", room)
	}
	return nil
}

func runHostGame(ctx context.Context, e *env, con *console, room string, active *domain.Deck, summaryPath string) error {
	wsURL, err := e.client.WSURL("/ws/session/" + room)
	if err != nil {
		return err
	}

	channel := ws.NewChannel(wsURL, e.logger)
	defer channel.Close()

	session, err := app.NewHostSession(room, active, channel, e.logger)
	if err != nil {
		return err
	}

	// The first question queues while the dial is in flight and flushes
	// the moment the channel opens.
	if err := session.Start(); err != nil {
		return err
	}
	if err := channel.Open(ctx); err != nil {
		return fmt.Errorf("could not open the event channel: %w", err)
	}

	go func() {
		for msg := range channel.Events() {
			session.Handle(msg)
		}
	}()

	printHostQuestion(con, session)
	con.printf("Commands: answers, results, next, prev, status, end, exit")

	for {
		line, ok := con.prompt("host")
		if !ok {
			return cancelRoom(ctx, e, con, room)
		}

		switch strings.ToLower(line) {
		case "":
		case "status", "s":
			printHostStatus(con, session)
		case "answers", "a":
			if err := session.RevealAnswers(); err != nil {
				con.printf("Cannot reveal answers: %v", err)
				break
			}
			con.printf("Answer pool broadcast: %s", strings.Join(session.AnswerPool(), " | "))
		case "results", "r":
			if err := session.RequestResults(); err != nil {
				con.printf("Cannot request results: %v", err)
				break
			}
			con.printf("Results requested; they will appear under status once the backend replies.")
		case "next", "n":
			if session.LastQuestion() {
				con.printf("Already on the last question; use end to finish the game.")
				break
			}
			if err := session.Next(); err != nil {
				con.printf("Cannot advance: %v", err)
				break
			}
			printHostQuestion(con, session)
		case "prev", "p":
			if err := session.Prev(); err != nil {
				con.printf("Cannot go back: %v", err)
				break
			}
			printHostQuestion(con, session)
		case "end":
			if err := session.EndGame(); err != nil {
				con.printf("Cannot end the game: %v", err)
				break
			}
			return finishGame(con, session, room, summaryPath)
		case "exit":
			return cancelRoom(ctx, e, con, room)
		default:
			con.printf("Unknown command %q. Commands: answers, results, next, prev, status, end, exit", line)
		}
	}
}

func printHostQuestion(con *console, session *app.HostSession) {
	q := session.Question()
	con.printf("Question %d of %d: %s", session.Index()+1, session.QuestionCount(), q.Text)
	if q.Image != "" {
		con.printf("  image: %s", q.Image)
	}
}

func printHostStatus(con *console, session *app.HostSession) {
	con.printf("Phase: %s", session.Phase())
	switch session.Phase() {
	case domain.HostCollecting:
		subs := session.Submissions()
		con.printf("Fakes submitted: %d (%s)", len(subs), strings.Join(subs, ", "))
	case domain.HostAnswers:
		con.printf("Answer pool: %s", strings.Join(session.AnswerPool(), " | "))
	case domain.HostResults:
		q := session.Question()
		con.printf("Correct answer: %s", q.Answer)
		con.printf("Predefined fake: %s", q.Fake)
		if stats := session.Stats(); stats != nil {
			con.printStats(stats)
		}
	}
}

func finishGame(con *console, session *app.HostSession, room, summaryPath string) error {
	con.printf("Game finished after %d questions.", session.QuestionCount())
	if stats := session.Stats(); len(stats) > 0 {
		con.printf("Final question results:")
		con.printStats(stats)
	}

	rows := summary.Build(session.Rounds())
	if len(rows) == 0 {
		con.printf("No player activity observed; skipping the summary.")
		return nil
	}

	if summaryPath == "" {
		summaryPath = fmt.Sprintf("fysics_summary_%s.csv", room)
	}
	f, err := os.Create(summaryPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := summary.WriteCSV(f, rows); err != nil {
		return err
	}
	con.printf("Game summary written to %s.", summaryPath)
	return nil
}
