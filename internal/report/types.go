package report

// DefaultGreeting is the greeting every freshly constructed ledger returns
// until set_greeting replaces it.
const DefaultGreeting = "Hello"

// AccountID identifies a caller. The host supplies it explicitly on every
// operation; the ledger never reads ambient identity state.
type AccountID string

// Report is one stored status-update entry, keyed by its ledger-assigned id.
type Report struct {
	// ID is assigned by the ledger at creation time and is stable for the
	// record's lifetime. Ids are monotonic and never reused after deletion.
	ID int64 `json:"id"`

	// Author is the identity of the caller that last wrote the record.
	// add_report stamps the creating caller; update_report re-stamps the
	// current caller, so authorship is not preserved across updates.
	Author AccountID `json:"author"`

	DoneToday        string `json:"done_today"`
	GoalTomorrow     string `json:"goal_tomorrow"`
	Blocker          string `json:"blocker"`
	WordAppreciation string `json:"word_appreciation"`
}

// Fields holds the four free-form text fields of a report. No length or
// content validation is applied.
type Fields struct {
	DoneToday        string `json:"done_today" yaml:"done_today"`
	GoalTomorrow     string `json:"goal_tomorrow" yaml:"goal_tomorrow"`
	Blocker          string `json:"blocker" yaml:"blocker"`
	WordAppreciation string `json:"word_appreciation" yaml:"word_appreciation"`
}

// New constructs a Report from an id, an author, and field values.
func New(id int64, author AccountID, f Fields) Report {
	return Report{
		ID:               id,
		Author:           author,
		DoneToday:        f.DoneToday,
		GoalTomorrow:     f.GoalTomorrow,
		Blocker:          f.Blocker,
		WordAppreciation: f.WordAppreciation,
	}
}

// Fields returns the four text fields of the report.
func (r Report) Fields() Fields {
	return Fields{
		DoneToday:        r.DoneToday,
		GoalTomorrow:     r.GoalTomorrow,
		Blocker:          r.Blocker,
		WordAppreciation: r.WordAppreciation,
	}
}
