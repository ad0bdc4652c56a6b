package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// Dictionary answers case-insensitive membership questions
type Dictionary interface {
	Contains(word string) bool
}

// Set is an immutable in-memory word set, safe for concurrent reads
type Set struct {
	words map[string]struct{}
}

// New builds a set from the given words
func New(words ...string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

// Empty returns a set that rejects every word
func Empty() *Set {
	return New()
}

// Contains reports whether word is in the set, ignoring case
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[normalize(word)]
	return ok
}

// Len returns the number of distinct words
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words calls fn for every word until fn returns false
func (s *Set) Words(fn func(word string) bool) {
	if s == nil {
		return
	}
	for w := range s.words {
		if !fn(w) {
			return
		}
	}
}

func (s *Set) add(word string) {
	if w := normalize(word); w != "" {
		s.words[w] = struct{}{}
	}
}

// Read parses one word per line; blank lines are skipped
func Read(r io.Reader) (*Set, error) {
	s := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return s, nil
}

// Load reads the word list at path. Any failure is logged and yields an
// empty dictionary so the server still starts.
func Load(path string, logger zerolog.Logger) *Set {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("dictionary unavailable, every word will be rejected")
		return Empty()
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("dictionary unreadable, every word will be rejected")
		return Empty()
	}

	logger.Info().Str("path", path).Int("words", s.Len()).Msg("dictionary loaded")
	return s
}

// normalize trims and case-folds a word. A Caser is stateful, so a fresh
// one is used per call.
func normalize(word string) string {
	return cases.Fold().String(strings.TrimSpace(word))
}
