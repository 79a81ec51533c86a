package domain

// Settings is the user-tunable configuration stored in the ledger as one
// opaque JSON document.
type Settings struct {
	DailyGoalMinutes      int    `json:"dailyGoalMinutes"`
	BreakFrequencyMinutes int    `json:"breakFrequencyMinutes"`
	DailyBreakGoal        int    `json:"dailyBreakGoal"`
	Theme                 string `json:"theme"`
	Name                  string `json:"name,omitempty"`
}

// DefaultSettings returns the values used until the user saves their own,
// and the fallback when the stored document is malformed.
func DefaultSettings() Settings {
	return Settings{
		DailyGoalMinutes:      120,
		BreakFrequencyMinutes: 15,
		DailyBreakGoal:        5,
		Theme:                 "system",
	}
}
