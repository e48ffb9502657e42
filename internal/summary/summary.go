// Package summary turns the host's per-round observations into the
// per-player game summary handed out after a session.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"fysics/internal/domain"
)

// Round is everything the host observed for one question: who submitted
// which fake and who chose which answer, as relayed over the event
// channel, plus the final vote stats.
type Round struct {
	Index    int
	Question domain.Question
	Fakes    map[string]string // player -> submitted fake text
	Choices  map[string]string // player -> chosen answer text
	Stats    map[string]int
}

// Columns is the fixed header order of the summary export
var Columns = []string{
	"Round", "Player_Name", "Submitted_Fake",
	"Choice_Made", "Choice_Author", "Times_Fooled_Others",
}

// Build produces one row per player per round. When the host revisited a
// question index, the later record wins. The author of a chosen answer is
// the player whose fake it was, or System for deck-written answers.
func Build(rounds []Round) []domain.SummaryRow {
	latest := make(map[int]Round, len(rounds))
	var indexes []int
	for _, round := range rounds {
		if _, seen := latest[round.Index]; !seen {
			indexes = append(indexes, round.Index)
		}
		latest[round.Index] = round
	}
	sort.Ints(indexes)

	var rows []domain.SummaryRow
	for _, index := range indexes {
		round := latest[index]

		authors := make(map[string]string, len(round.Fakes)+2)
		if round.Question.Answer != "" {
			authors[round.Question.Answer] = domain.SystemAuthor
		}
		if round.Question.Fake != "" {
			authors[round.Question.Fake] = domain.SystemAuthor
		}
		for player, fake := range round.Fakes {
			if fake != "" {
				authors[fake] = player
			}
		}

		fooled := make(map[string]int)
		for _, choice := range round.Choices {
			if author, ok := authors[choice]; ok && author != domain.SystemAuthor {
				fooled[author]++
			}
		}

		players := make(map[string]struct{}, len(round.Fakes)+len(round.Choices))
		for player := range round.Fakes {
			players[player] = struct{}{}
		}
		for player := range round.Choices {
			players[player] = struct{}{}
		}

		names := make([]string, 0, len(players))
		for player := range players {
			names = append(names, player)
		}
		sort.Strings(names)

		for _, player := range names {
			choice := round.Choices[player]
			author := ""
			if choice != "" {
				author = authors[choice]
			}
			rows = append(rows, domain.SummaryRow{
				Round:             round.Index + 1,
				PlayerName:        player,
				SubmittedFake:     round.Fakes[player],
				ChoiceMade:        choice,
				ChoiceAuthor:      author,
				TimesFooledOthers: fooled[player],
			})
		}
	}
	return rows
}

// WriteCSV writes rows in the fixed column order
func WriteCSV(w io.Writer, rows []domain.SummaryRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Round),
			row.PlayerName,
			row.SubmittedFake,
			row.ChoiceMade,
			row.ChoiceAuthor,
			strconv.Itoa(row.TimesFooledOthers),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row for %s: %w", row.PlayerName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
