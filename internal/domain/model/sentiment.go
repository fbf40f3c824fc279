package model

type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"
	MoodNegative Mood = "negative"
)

// SentimentReading is the per-turn classification result. Ephemeral: it is
// appended to the session's in-memory log and never persisted.
type SentimentReading struct {
	Mood         Mood    `json:"mood"`
	Confidence   float64 `json:"confidence"`   // [0,1]
	Polarity     float64 `json:"polarity"`     // [-1,1]
	Subjectivity float64 `json:"subjectivity"` // [0,1]
}

// NeutralReading is the short-input and fail-soft default.
func NeutralReading() SentimentReading {
	return SentimentReading{
		Mood:         MoodNeutral,
		Confidence:   0.5,
		Polarity:     0.0,
		Subjectivity: 0.5,
	}
}

// Resource is one support resource surfaced alongside a mood.
type Resource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Contact     string `json:"contact,omitempty"`
}
