package sentiment

import "github.com/jonreiter/govader"

// Mood is the coarse sentiment bucket attached to each user message.
type Mood string

const (
	Positive Mood = "positive"
	Neutral  Mood = "neutral"
	Negative Mood = "negative"
)

// Bucketing thresholds over the scorer's [-1, 1] polarity.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// Prefix returns the reply prefix for the mood, or "" for neutral.
func (m Mood) Prefix() string {
	switch m {
	case Positive:
		return "Love that energy! "
	case Negative:
		return "I'm here for you. "
	default:
		return ""
	}
}

// Scorer produces a polarity in [-1, 1] for a piece of text.
type Scorer interface {
	Score(text string) float64
}

// VaderScorer adapts govader's compound score as the polarity source.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *VaderScorer) Score(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// Classifier buckets a scorer's continuous polarity into a Mood.
type Classifier struct {
	scorer Scorer
}

func NewClassifier(scorer Scorer) *Classifier {
	return &Classifier{scorer: scorer}
}

func (c *Classifier) Classify(text string) Mood {
	polarity := c.scorer.Score(text)
	switch {
	case polarity > positiveThreshold:
		return Positive
	case polarity < negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}
