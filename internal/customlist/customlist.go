// Package customlist prepares terms extracted from a student's own document
// and samples practice sessions from them.
package customlist

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MinTextLength is the shortest extracted text worth sending for term extraction
	MinTextLength = 20
	// MaxTextLength caps the text sent for term extraction
	MaxTextLength = 15000
)

var (
	ErrNoReadableText = errors.New("no readable text found in the document")
	ErrNoTermsFound   = errors.New("no terms found in the document")
)

// PrepareText trims the extracted text and truncates it to MaxTextLength
// runes. Text shorter than MinTextLength fails with ErrNoReadableText.
func PrepareText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrNoReadableText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		runes := []rune(text)
		text = string(runes[:MaxTextLength])
	}
	return text, nil
}

// NormalizeTerms lowercases, trims, dedupes and sorts terms. An empty
// result fails with ErrNoTermsFound.
func NormalizeTerms(terms []string) ([]string, error) {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrNoTermsFound
	}
	sort.Strings(out)
	return out, nil
}

// Partition splits terms into the ones not yet practiced and the ones
// already in practiced, keeping the input order in both
func Partition(terms []string, practiced map[string]bool) (fresh, seen []string) {
	for _, t := range terms {
		if practiced[strings.ToLower(t)] {
			seen = append(seen, t)
		} else {
			fresh = append(fresh, t)
		}
	}
	return fresh, seen
}

// Select picks up to length terms for a session. New terms are sampled
// first; practiced terms only top up a shortfall. The result is shuffled.
func Select(terms []string, practiced map[string]bool, length int, rng *rand.Rand) []string {
	if length <= 0 || len(terms) == 0 {
		return []string{}
	}

	fresh, seen := Partition(terms, practiced)
	selected := sample(fresh, length, rng)
	if len(selected) < length {
		selected = append(selected, sample(seen, length-len(selected), rng)...)
	}

	rng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	return selected
}

// sample draws n items without replacement
func sample(items []string, n int, rng *rand.Rand) []string {
	pool := append([]string(nil), items...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}
