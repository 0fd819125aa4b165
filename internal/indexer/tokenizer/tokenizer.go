// Package tokenizer turns raw extracted page text into a term bag. It
// lower-cases input and keeps runs of letters and digits in any script.
// There is no stop-word list and no stemming: terms are indexed exactly as
// they appear, lower-cased.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize returns the terms of text in order of appearance, repeats
// included.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

// Bag returns the distinct terms of text in order of first appearance.
func Bag(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	bag := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		bag = append(bag, tok)
	}
	return bag
}

// Normalize lower-cases pre-split terms and drops empty ones. It does not
// split further.
func Normalize(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
