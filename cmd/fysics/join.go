package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fysics/internal/app"
	"fysics/internal/config"
	"fysics/internal/domain"
	"fysics/internal/transport/ws"
)

func newJoinCmd(cfg *config.Config) *cobra.Command {
	var (
		room string
		name string
	)

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a room as a player.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())

			if room == "" {
				r, ok := con.prompt("Room code")
				if !ok {
					return fmt.Errorf("no room code given")
				}
				room = r
			}
			room = strings.ToUpper(strings.TrimSpace(room))
			if name == "" {
				n, ok := con.prompt("Your name")
				if !ok {
					return fmt.Errorf("no player name given")
				}
				name = n
			}
			name = strings.TrimSpace(name)

			res := e.client.JoinSession(cmd.Context(), room, name)
			switch {
			case res.Status == 0:
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			case res.Gone():
				return domain.ErrRoomGone
			case !res.OK:
				return fmt.Errorf("join rejected: %s", res.Message())
			}
			con.printf("Joined room %s as %s. Waiting for the host to start.", room, name)

			return runPlayerGame(cmd, e, con, room, name)
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room code shown by the host")
	cmd.Flags().StringVar(&name, "name", "", "display name visible to other players")
	return cmd
}

func runPlayerGame(cmd *cobra.Command, e *env, con *console, room, name string) error {
	ctx := cmd.Context()

	wsURL, err := e.client.WSURL("/ws/session/" + room)
	if err != nil {
		return err
	}

	channel := ws.NewChannel(wsURL, e.logger)
	defer channel.Close()
	if err := channel.Open(ctx); err != nil {
		return fmt.Errorf("could not open the event channel: %w", err)
	}

	session := app.NewPlayerSession(room, name, channel, e.logger)

	// The socket is the primary signal; polling only catches a room that
	// disappeared without a cancelled frame.
	poller := app.NewStatusPoller(e.client, room, e.cfg.PollInterval, nil, e.logger)
	go poller.Run(ctx)
	defer poller.Stop()

	// refresh wakes the prompt loop whenever the session phase may have moved.
	refresh := make(chan struct{}, 1)
	notify := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	go func() {
		for msg := range channel.Events() {
			if session.Handle(msg) {
				notify()
			}
		}
		notify()
	}()
	go func() {
		for update := range poller.Updates() {
			if update.Gone {
				session.ApplyStatus(domain.SessionStatus{Status: domain.RoomCancelled})
				notify()
				return
			}
			if update.Status != nil && session.ApplyStatus(*update.Status) {
				notify()
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, ok := con.readLine()
			if !ok {
				return
			}
			lines <- line
		}
	}()

	shownIndex := -1
	var shownPhase domain.PlayerPhase

	for {
		if session.Cancelled() {
			con.printf("The host cancelled the game.")
			return nil
		}
		if session.Finished() {
			con.printf("Game over. Thanks for playing!")
			return nil
		}

		printPlayerView(con, session, &shownIndex, &shownPhase)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-refresh:
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			handlePlayerInput(con, session, line)
		}
	}
}

// printPlayerView prints the current question or answer pool, but only when
// the question index or phase changed since the last print.
func printPlayerView(con *console, session *app.PlayerSession, shownIndex *int, shownPhase *domain.PlayerPhase) {
	index, q := session.Question()
	phase := session.Phase()
	if index == *shownIndex && phase == *shownPhase {
		return
	}
	*shownIndex, *shownPhase = index, phase

	switch phase {
	case domain.PlayerSubmit:
		if q == nil {
			return
		}
		con.printf("Question %d: %s", index+1, q.Text)
		if q.Image != "" {
			con.printf("  image: %s", q.Image)
		}
		con.printf("Type a convincing fake answer and press enter.")
	case domain.PlayerWaiting:
		con.printf("Fake submitted. Waiting for the other players...")
	case domain.PlayerChoose:
		con.printf("Which answer is the real one?")
		for i, answer := range session.Answers() {
			con.printf("  %d) %s", i+1, answer)
		}
		con.printf("Enter the number of your pick.")
	case domain.PlayerResults:
		con.printf("Round results:")
		if stats := session.Stats(); stats != nil {
			con.printStats(stats)
		}
		con.printf("Waiting for the host to continue.")
	}
}

func handlePlayerInput(con *console, session *app.PlayerSession, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch session.Phase() {
	case domain.PlayerSubmit:
		if err := session.SubmitFake(line); err != nil {
			con.printf("Cannot submit: %v", err)
		}
	case domain.PlayerChoose:
		answers := session.Answers()
		pick, err := strconv.Atoi(line)
		if err != nil || pick < 1 || pick > len(answers) {
			con.printf("Enter a number between 1 and %d.", len(answers))
			return
		}
		if err := session.Choose(answers[pick-1]); err != nil {
			con.printf("Cannot choose: %v", err)
			return
		}
		con.printf("Locked in: %s", answers[pick-1])
	default:
		con.printf("Nothing to do right now; waiting on the host.")
	}
}
