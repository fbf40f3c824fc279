package adapter

import "mindful-chat/internal/domain/model"

// SentimentAnalyzer classifies user text into a mood reading. It never
// fails: classification errors degrade to the neutral reading.
type SentimentAnalyzer interface {
	Analyze(text string) model.SentimentReading
	ResourcesFor(mood model.Mood) []model.Resource
}
