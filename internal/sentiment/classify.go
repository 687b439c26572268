package sentiment

import (
	"regexp"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#[\w]+`)

// Classifier scores free text by keyword-lexicon counting. It is a crude
// instrument on purpose; the dashboard only needs a coarse mood signal.
type Classifier struct {
	Positive []string
	Negative []string
	Tracked  []string
}

// Sentiment returns "positive", "negative", or "neutral". Ties, including
// zero hits, are neutral.
func (c Classifier) Sentiment(text string) string {
	lower := strings.ToLower(text)
	positive := countHits(lower, c.Positive)
	negative := countHits(lower, c.Negative)
	switch {
	case positive > negative:
		return "positive"
	case negative > positive:
		return "negative"
	default:
		return "neutral"
	}
}

// SentimentValue maps a label to the [-1, 1] scale used by trend averages.
func SentimentValue(label string) float64 {
	switch label {
	case "positive":
		return 1
	case "negative":
		return -1
	default:
		return 0
	}
}

// RelevantTerms returns the tracked terms present in the text,
// case-insensitively, preserving tracked-list order.
func (c Classifier) RelevantTerms(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, term := range c.Tracked {
		if strings.Contains(lower, strings.ToLower(term)) {
			out = append(out, term)
		}
	}
	return out
}

// Hashtags extracts #tags in order of appearance.
func Hashtags(text string) []string {
	return hashtagPattern.FindAllString(text, -1)
}

func countHits(lowerText string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lowerText, strings.ToLower(w)) {
			n++
		}
	}
	return n
}
