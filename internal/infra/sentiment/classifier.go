package sentiment

import (
	"regexp"
	"strings"
	"time"

	"github.com/jonreiter/govader"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain/model"
)

// Precompiled patterns for text cleanup.
var (
	emojiPattern       = regexp.MustCompile(`:[a-zA-Z0-9_]+:`)
	punctuationPattern = regexp.MustCompile(`[^\w\s]`)
)

// Mood thresholds on polarity; both boundaries are inclusive.
const (
	negativeThreshold = -0.3
	positiveThreshold = 0.3
)

// Classifier maps raw text to a SentimentReading using the VADER lexicon.
// Deterministic and pure: identical input always yields an identical
// reading, so results are cached.
type Classifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
	cache    *gocache.Cache
	log      *zerolog.Logger
}

func NewClassifier(logger *zerolog.Logger) *Classifier {
	l := logger.With().Str("component", "SentimentClassifier").Logger()
	return &Classifier{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		cache:    gocache.New(time.Hour, 10*time.Minute),
		log:      &l,
	}
}

// CleanText strips colon-delimited emoji tokens and punctuation, lowercases,
// and trims.
func CleanText(text string) string {
	text = emojiPattern.ReplaceAllString(text, "")
	text = punctuationPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ToLower(text))
}

// Analyze classifies one user turn. Classification must never abort the
// turn: scorer failures fall back to the neutral reading.
func (c *Classifier) Analyze(text string) (reading model.SentimentReading) {
	if cached, ok := c.cache.Get(text); ok {
		return cached.(model.SentimentReading)
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("sentiment scorer failed; defaulting to neutral")
			reading = model.NeutralReading()
		}
		c.cache.SetDefault(text, reading)
	}()

	cleaned := CleanText(text)
	if len([]rune(cleaned)) < 3 {
		// Too short for the scorer to be meaningful.
		return model.NeutralReading()
	}

	scores := c.analyzer.PolarityScores(cleaned)
	return readingFromScores(scores.Compound, scores.Positive, scores.Negative)
}

func readingFromScores(polarity, positive, negative float64) model.SentimentReading {
	return model.SentimentReading{
		Mood:         moodFor(polarity),
		Confidence:   confidenceFor(polarity),
		Polarity:     polarity,
		Subjectivity: clamp01(positive + negative),
	}
}

func moodFor(polarity float64) model.Mood {
	switch {
	case polarity <= negativeThreshold:
		return model.MoodNegative
	case polarity >= positiveThreshold:
		return model.MoodPositive
	default:
		return model.MoodNeutral
	}
}

func confidenceFor(polarity float64) float64 {
	c := polarity * 2
	if c < 0 {
		c = -c
	}
	if c > 1 {
		return 1.0
	}
	return c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
