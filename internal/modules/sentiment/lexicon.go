package sentiment

import (
	"strings"
	"unicode"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

var positiveWords = map[string]struct{}{
	"beat": {}, "beats": {}, "boost": {}, "bull": {}, "bullish": {}, "buy": {}, "buys": {},
	"gain": {}, "gains": {}, "growth": {}, "high": {}, "jump": {}, "jumps": {}, "moon": {},
	"outperform": {}, "profit": {}, "profits": {}, "rally": {}, "record": {}, "rise": {},
	"rises": {}, "soar": {}, "soars": {}, "strong": {}, "surge": {}, "surges": {}, "up": {},
	"upgrade": {}, "win": {}, "wins": {},
}

var negativeWords = map[string]struct{}{
	"bear": {}, "bearish": {}, "crash": {}, "cut": {}, "cuts": {}, "decline": {}, "down": {},
	"downgrade": {}, "drop": {}, "drops": {}, "fall": {}, "falls": {}, "fraud": {}, "loss": {},
	"losses": {}, "lawsuit": {}, "plunge": {}, "plunges": {}, "probe": {}, "scandal": {},
	"sell": {}, "sells": {}, "slump": {}, "weak": {}, "investigation": {}, "tumble": {},
}

// polarity counts lexicon hits in text
func polarity(text string) (pos, neg int) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			pos++
		} else if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	return pos, neg
}

// toneOf classifies one headline
func toneOf(text string) domain.Tone {
	pos, neg := polarity(text)
	switch {
	case pos > neg:
		return domain.TonePositive
	case neg > pos:
		return domain.ToneNegative
	default:
		return domain.ToneNeutral
	}
}

// score maps the lexicon balance of texts onto 0-100, 50 being neutral or no signal.
func score(texts []string) int {
	var pos, neg int
	for _, t := range texts {
		p, n := polarity(t)
		pos += p
		neg += n
	}
	if pos+neg == 0 {
		return 50
	}
	return 50 + (50*(pos-neg))/(pos+neg)
}
