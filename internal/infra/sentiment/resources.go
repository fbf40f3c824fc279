package sentiment

import "mindful-chat/internal/domain/model"

// Static support resources per mood category; constant-time lookup.
var resourcesByMood = map[model.Mood][]model.Resource{
	model.MoodNegative: {
		{
			Title:       "Crisis Helpline",
			Description: "24/7 support for emotional crisis",
			Contact:     "1-800-273-8255",
			URL:         "https://www.crisistextline.org/",
		},
		{
			Title:       "Therapy Resources",
			Description: "Find licensed therapists in your area",
			URL:         "https://www.psychologytoday.com/us/therapists",
		},
		{
			Title:       "Mindfulness Exercises",
			Description: "Simple exercises to help manage stress and anxiety",
			URL:         "https://www.mindful.org/meditation/mindfulness-getting-started/",
		},
	},
	model.MoodNeutral: {
		{
			Title:       "Self-Care Tips",
			Description: "Daily practices for mental wellness",
			URL:         "https://www.verywellmind.com/self-care-strategies-overall-stress-reduction-3144729",
		},
		{
			Title:       "Mental Health Apps",
			Description: "Recommended apps for mental wellness",
			URL:         "https://www.psycom.net/25-best-mental-health-apps",
		},
	},
	model.MoodPositive: {
		{
			Title:       "Wellness Activities",
			Description: "Activities to maintain positive mental health",
			URL:         "https://www.healthline.com/health/mental-health/mental-health-activities",
		},
		{
			Title:       "Gratitude Practices",
			Description: "Ways to cultivate gratitude and joy",
			URL:         "https://greatergood.berkeley.edu/topic/gratitude",
		},
	},
}

// ResourcesFor returns the resource list for a mood; unknown moods get the
// neutral list.
func (c *Classifier) ResourcesFor(mood model.Mood) []model.Resource {
	rs, ok := resourcesByMood[mood]
	if !ok {
		rs = resourcesByMood[model.MoodNeutral]
	}
	out := make([]model.Resource, len(rs))
	copy(out, rs)
	return out
}
