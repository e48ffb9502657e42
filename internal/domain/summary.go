package domain

// SummaryRow is one player's record for one round of the game summary
// handed to the professor after a session.
type SummaryRow struct {
	Round             int    `json:"Round"`
	PlayerName        string `json:"Player_Name"`
	SubmittedFake     string `json:"Submitted_Fake"`
	ChoiceMade        string `json:"Choice_Made"`
	ChoiceAuthor      string `json:"Choice_Author"`
	TimesFooledOthers int    `json:"Times_Fooled_Others"`
}

// SystemAuthor marks answers written by the deck (the correct answer and
// the predefined fake) rather than by a player.
const SystemAuthor = "System"
