// Package sentiment scores review text with a small valence lexicon.
// Scores land in [-1, 1]; the label cutoffs are +/-0.05.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/model"
)

// Sentiment labels attached to scored reviews.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

const (
	// labelCutoff separates neutral from signed sentiment.
	labelCutoff = 0.05
	// normAlpha dampens the normalization so short texts don't saturate.
	normAlpha = 15.0
	// boosterWeight scales intensity modifiers ("very", "really").
	boosterWeight = 0.293
)

// wordScores is a compact valence lexicon tuned for restaurant reviews.
// Values follow the usual -4..4 convention before normalization.
var wordScores = map[string]float64{
	"amazing": 2.8, "awesome": 3.1, "best": 3.2, "delicious": 2.9,
	"excellent": 2.7, "fantastic": 2.6, "favorite": 2.0, "fresh": 1.3,
	"friendly": 2.2, "good": 1.9, "great": 3.1, "love": 3.2,
	"loved": 2.9, "nice": 1.8, "perfect": 2.7, "recommend": 1.5,
	"tasty": 2.0, "wonderful": 2.7, "fast": 1.2, "clean": 1.1,
	"cozy": 1.4, "generous": 1.5, "attentive": 1.6, "crisp": 1.0,
	"juicy": 1.3, "authentic": 1.4, "affordable": 1.2, "enjoyed": 2.0,

	"awful": -3.1, "bad": -2.5, "bland": -1.8, "cold": -1.2,
	"dirty": -2.4, "disappointing": -2.4, "disgusting": -3.4,
	"expensive": -1.1, "gross": -2.7, "hate": -3.0, "hated": -2.9,
	"horrible": -3.2, "mediocre": -1.5, "overpriced": -1.9,
	"poor": -2.1, "rude": -2.6, "slow": -1.4, "soggy": -1.7,
	"stale": -2.0, "terrible": -3.1, "undercooked": -2.3,
	"waited": -0.8, "worst": -3.4, "greasy": -1.3, "noisy": -1.1,
}

// negators flip the sign of the word that follows them.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true,
	"nothing": true, "nowhere": true, "hardly": true, "barely": true,
	"isnt": true, "wasnt": true, "dont": true, "didnt": true,
	"cant": true, "couldnt": true, "wont": true, "wouldnt": true,
}

// boosters intensify the word that follows them.
var boosters = map[string]bool{
	"very": true, "really": true, "extremely": true, "incredibly": true,
	"absolutely": true, "so": true, "super": true, "totally": true,
}

// Result is a scored piece of text.
type Result struct {
	Score float64
	Label string
}

// Analyze scores a single text. Empty or lexicon-free text is neutral
// with a zero score.
func Analyze(text string) Result {
	tokens := tokenize(text)

	var sum float64
	for i, tok := range tokens {
		valence, ok := wordScores[tok]
		if !ok {
			continue
		}
		if i > 0 && boosters[tokens[i-1]] {
			if valence > 0 {
				valence += boosterWeight
			} else {
				valence -= boosterWeight
			}
		}
		// Look back up to two tokens for a negator so "not very good"
		// still flips.
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negators[tokens[j]] {
				valence = -valence
				break
			}
		}
		sum += valence
	}

	score := normalizeScore(sum)
	return Result{Score: score, Label: labelFor(score)}
}

// AnnotateBusinesses scores every review in place and returns the number
// of reviews touched.
func AnnotateBusinesses(records []*model.Business) int {
	var scored int
	for _, b := range records {
		if b == nil {
			continue
		}
		for i := range b.Reviews {
			r := &b.Reviews[i]
			if r.Text == "" {
				continue
			}
			res := Analyze(r.Text)
			s := res.Score
			r.SentimentScore = &s
			r.SentimentLabel = res.Label
			scored++
		}
	}
	zap.L().Info("sentiment annotated", zap.Int("reviews", scored))
	return scored
}

// normalizeScore maps the raw valence sum into [-1, 1].
func normalizeScore(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+normAlpha)
}

func labelFor(score float64) string {
	switch {
	case score >= labelCutoff:
		return LabelPositive
	case score <= -labelCutoff:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// tokenize lowercases and strips everything but letters, so "isn't"
// becomes "isnt" and matches the negator table.
func tokenize(text string) []string {
	var tokens []string
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
			continue
		}
		if r == '\'' {
			continue
		}
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}
