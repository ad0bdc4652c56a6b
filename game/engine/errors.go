package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrWordRejected         = errors.New("word rejected")
)

// Word rejection codes sent to clients in wordValidatingError
const (
	CodeNotInDictionary  = "NOT_IN_DICTIONARY"
	CodeTooShort         = "TOO_SHORT"
	CodeTooLong          = "TOO_LONG"
	CodeNotInGrid        = "NOT_IN_GRID"
	CodeAlreadySubmitted = "ALREADY_SUBMITTED"
)

// WordError describes why a submitted word was refused
type WordError struct {
	Code string
	Word string
}

func (e *WordError) Error() string {
	return fmt.Sprintf("word %q rejected: %s", e.Word, e.Code)
}

// Is lets errors.Is(err, ErrWordRejected) match any WordError
func (e *WordError) Is(target error) bool {
	return target == ErrWordRejected
}

// RejectWord builds a WordError for the given code
func RejectWord(code, word string) error {
	return &WordError{Code: code, Word: word}
}
