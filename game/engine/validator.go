package engine

import "unicode/utf8"

// Lexicon is the membership capability the validator needs
type Lexicon interface {
	Contains(word string) bool
}

// Validator runs the structural checks a submitted word must pass
type Validator struct {
	Lexicon  Lexicon
	FindPath func(word string, grid Grid) bool
	Scoring  ScoringPolicy
}

// NewValidator returns a validator using FindsPath and DefaultScoring
func NewValidator(lexicon Lexicon) *Validator {
	return &Validator{
		Lexicon:  lexicon,
		FindPath: FindsPath,
		Scoring:  DefaultScoring,
	}
}

// Validate checks dictionary membership, length bounds and grid path, in
// that order. The path search only runs for words that passed the cheaper
// checks. Rejections are *WordError.
func (v *Validator) Validate(word string, grid Grid) error {
	if v.Lexicon == nil || !v.Lexicon.Contains(word) {
		return RejectWord(CodeNotInDictionary, word)
	}

	length := utf8.RuneCountInString(word)
	if length < MinWordLength {
		return RejectWord(CodeTooShort, word)
	}
	size := grid.Size()
	if length > size*size {
		return RejectWord(CodeTooLong, word)
	}

	findPath := v.FindPath
	if findPath == nil {
		findPath = FindsPath
	}
	if !findPath(word, grid) {
		return RejectWord(CodeNotInGrid, word)
	}

	return nil
}

// Check validates word and returns its score
func (v *Validator) Check(word string, grid Grid) (int, error) {
	if err := v.Validate(word, grid); err != nil {
		return 0, err
	}
	return v.Scoring.Score(word), nil
}
