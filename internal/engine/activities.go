package engine

import "github.com/pscheid92/screencoach/internal/domain"

// breakActivities is the fixed suggestion catalog. Durations are deliberately
// short: the point is stepping away from the screen, not a second obligation.
var breakActivities = []domain.BreakActivity{
	{
		ID:              "window-gazing",
		Title:           "Window Gazing",
		Description:     "Look out a window and find three things you have never noticed before.",
		DurationMinutes: 3,
		Type:            "mindfulness",
		Icon:            "🪟",
	},
	{
		ID:              "animal-movements",
		Title:           "Animal Movements",
		Description:     "Move like your favourite animal for a few minutes. Hop, crawl, or slither!",
		DurationMinutes: 5,
		Type:            "physical",
		Icon:            "🦘",
	},
	{
		ID:              "stretch-sky",
		Title:           "Stretch to the Sky",
		Description:     "Stand up, reach as high as you can, and hold for ten slow breaths.",
		DurationMinutes: 2,
		Type:            "physical",
		Icon:            "🙆",
	},
	{
		ID:              "hydration-station",
		Title:           "Hydration Station",
		Description:     "Get a glass of water and drink it slowly, away from any screen.",
		DurationMinutes: 3,
		Type:            "wellness",
		Icon:            "💧",
	},
	{
		ID:              "deep-breathing",
		Title:           "Deep Breathing",
		Description:     "Breathe in for four counts, hold for four, and out for four. Repeat ten times.",
		DurationMinutes: 3,
		Type:            "mindfulness",
		Icon:            "🧘",
	},
	{
		ID:              "quick-doodle",
		Title:           "Quick Doodle",
		Description:     "Grab paper and a pen and draw whatever comes to mind. No judging!",
		DurationMinutes: 5,
		Type:            "creative",
		Icon:            "✏️",
	},
	{
		ID:              "dance-break",
		Title:           "Dance Break",
		Description:     "Put on a favourite song and dance until it ends.",
		DurationMinutes: 4,
		Type:            "physical",
		Icon:            "💃",
	},
	{
		ID:              "gratitude-moment",
		Title:           "Gratitude Moment",
		Description:     "Think of three things you are grateful for today and say them out loud.",
		DurationMinutes: 2,
		Type:            "mindfulness",
		Icon:            "🙏",
	},
	{
		ID:              "tidy-up",
		Title:           "Tidy Up",
		Description:     "Pick one small spot near you and make it tidy.",
		DurationMinutes: 5,
		Type:            "practical",
		Icon:            "🧹",
	},
	{
		ID:              "nature-sounds",
		Title:           "Nature Sounds",
		Description:     "Close your eyes and count how many different sounds you can hear.",
		DurationMinutes: 3,
		Type:            "mindfulness",
		Icon:            "🌿",
	},
}

// Activities returns the full catalog.
func Activities() []domain.BreakActivity {
	out := make([]domain.BreakActivity, len(breakActivities))
	copy(out, breakActivities)
	return out
}
