package engine

import "unicode/utf8"

// ScoringPolicy maps a validated word to points.
// Points = length × WordMultiplier × product of LetterMultiplier over the word.
type ScoringPolicy struct {
	WordMultiplier   int
	LetterMultiplier func(letter rune) int
}

// DefaultScoring scores a word by its length
var DefaultScoring = ScoringPolicy{WordMultiplier: 1}

// Score returns the points for word under the policy
func (p ScoringPolicy) Score(word string) int {
	points := utf8.RuneCountInString(word)

	wordMultiplier := p.WordMultiplier
	if wordMultiplier <= 0 {
		wordMultiplier = 1
	}
	points *= wordMultiplier

	if p.LetterMultiplier != nil {
		for _, r := range word {
			points *= p.LetterMultiplier(r)
		}
	}

	return points
}

// Score returns the points for word under DefaultScoring
func Score(word string) int {
	return DefaultScoring.Score(word)
}
