package probe

import "strings"

type sentiment int

const (
	sentimentNeutral sentiment = iota
	sentimentPositive
	sentimentNegative
)

// Keyword lists for the coarse headline scan. Matching is case-insensitive
// substring; a headline batch is positive only when positive terms matched
// and negative ones did not, symmetric for negative, otherwise neutral.
var (
	positiveKeywords = []string{
		"award", "expands", "growth", "investment", "partnership", "record revenue",
	}
	negativeKeywords = []string{
		"fraud", "scam", "investigation", "lawsuit", "conviction", "fine", "scandal",
	}
)

func classifySentiment(headlines []string) sentiment {
	var pos, neg bool
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, kw := range positiveKeywords {
			if strings.Contains(lower, kw) {
				pos = true
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(lower, kw) {
				neg = true
			}
		}
	}
	switch {
	case pos && !neg:
		return sentimentPositive
	case neg && !pos:
		return sentimentNegative
	default:
		return sentimentNeutral
	}
}
