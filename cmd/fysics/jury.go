package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fysics/internal/config"
	"fysics/internal/domain"
	"fysics/internal/jury"
	"fysics/internal/store"
)

func newJuryCmd(cfg *config.Config) *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "jury",
		Short: "Run a standalone jury vote over a pool of answers.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())

			box := jury.NewBox(e.store, room, e.logger)
			seedSeatsFromRoster(cmd, e, con, box, room)
			return runJury(box, con)
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room code to scope votes and answers to")

	cmd.AddCommand(newJurySeatsCmd(cfg), newJurySeedCmd(cfg), newJuryTallyCmd(cfg))
	return cmd
}

func newJurySeatsCmd(cfg *config.Config) *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "seats [count]",
		Short: "Show or set the number of jury seats.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
			box := jury.NewBox(e.store, room, e.logger)

			if len(args) == 0 {
				con.printf("Room %s has %d jury seat(s).", box.Room(), box.SeatCount())
				return nil
			}

			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("seat count must be a number, got %q", args[0])
			}
			set, err := box.SetSeatCount(count)
			if err != nil {
				return err
			}
			if set != count {
				con.printf("Seat count clamped to %d (allowed range %d to %d).", set, jury.MinSeats, jury.MaxSeats)
			} else {
				con.printf("Room %s now has %d jury seat(s).", box.Room(), set)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room code to scope votes and answers to")
	return cmd
}

func newJurySeedCmd(cfg *config.Config) *cobra.Command {
	var (
		room  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed [player::answer]...",
		Short: "Seed the answer pool the jury votes over.",
		Long: `Seed the answer pool the jury votes over.

Each argument is either "player::answer text" or just the answer text,
in which case the entry gets a positional name. A pool that already
exists for the room wins over the seed; pass --reset to replace it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
			box := jury.NewBox(e.store, room, e.logger)

			if reset {
				if err := box.SetAnswers(nil); err != nil {
					return err
				}
			}
			answers, err := box.SeedAnswers(args)
			if err != nil {
				return err
			}
			con.printf("Room %s has %d answer(s) in the pool:", box.Room(), len(answers))
			for i, answer := range answers {
				con.printf("  %d) %s (%s)", i+1, answer.Text, answer.Player)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room code to scope votes and answers to")
	cmd.Flags().BoolVar(&reset, "reset", false, "replace an existing pool instead of keeping it")
	return cmd
}

func newJuryTallyCmd(cfg *config.Config) *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Show the current jury leaderboard.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
			box := jury.NewBox(e.store, room, e.logger)

			printLeaderboard(con, box)
			return nil
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room code to scope votes and answers to")
	return cmd
}

// seedSeatsFromRoster sizes the jury from the room's live roster when no
// seat count has been stored yet. Connectivity trouble just leaves the
// stored or default count in place.
func seedSeatsFromRoster(cmd *cobra.Command, e *env, con *console, box *jury.Box, room string) {
	if room == "" {
		return
	}
	var stored int
	if found, _ := e.store.Get(store.RoomKey(store.PrefixJurySeats, room), &stored); found {
		return
	}

	res := e.client.SessionStatus(cmd.Context(), room)
	if !res.OK {
		return
	}
	var status domain.SessionStatus
	if err := res.Decode(&status); err != nil || len(status.Players) == 0 {
		return
	}
	if set, err := box.SetSeatCount(len(status.Players)); err == nil {
		con.printf("Jury sized to the room roster: %d seat(s).", set)
	}
}

// runJury walks every seat through a vote, then shows the leaderboard.
func runJury(box *jury.Box, con *console) error {
	answers := box.Answers()
	if len(answers) == 0 {
		return fmt.Errorf("no answer pool for room %s; seed one with `fysics jury seed`", box.Room())
	}

	seats := box.SeatCount()
	votes := box.Votes()
	con.printf("Room %s: %d seat(s), %d vote(s) already cast.", box.Room(), seats, len(votes))

	for len(votes) < seats {
		con.printf("Seat %d of %d.", len(votes)+1, seats)
		juror, ok := con.prompt("Juror name")
		if !ok {
			break
		}

		con.printf("Answers:")
		for i, answer := range answers {
			con.printf("  %d) %s (%s)", i+1, answer.Text, answer.Player)
		}
		line, ok := con.prompt("Vote for")
		if !ok {
			break
		}
		pick, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil || pick < 1 || pick > len(answers) {
			con.printf("Enter a number between 1 and %d.", len(answers))
			continue
		}

		vote, castErr := box.Cast(juror, answers[pick-1].ID)
		if castErr != nil {
			con.printf("Vote not counted: %v", castErr)
			continue
		}
		con.printf("%s voted for %q by %s.", vote.Juror, vote.SelectedAnswer, vote.SelectedPlayer)

		votes = box.Votes()
	}

	printLeaderboard(con, box)
	return nil
}

func printLeaderboard(con *console, box *jury.Box) {
	votes := box.Votes()
	if len(votes) == 0 {
		con.printf("No votes cast yet for room %s.", box.Room())
		return
	}

	con.printf("Leaderboard for room %s (%d vote(s)):", box.Room(), len(votes))
	for i, entry := range jury.Tally(votes) {
		con.printf("  %d. %s (%s): %d vote(s), %d%%", i+1, entry.Answer, entry.Player, entry.Votes, entry.SharePercent)
	}
}
