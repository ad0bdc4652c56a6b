// Package dictionary provides the word list used to accept submitted words.
//
// The list is loaded once at startup from a plain text file with one word
// per line. Lookups are case-insensitive. A missing or unreadable file is
// not fatal: the server runs with an empty dictionary and rejects every
// word.
//
// Usage:
//
//	dict := dictionary.Load("words/fr.txt", logger)
//	if dict.Contains("Maison") {
//		...
//	}
package dictionary
