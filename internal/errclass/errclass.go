// Package errclass turns arbitrary errors into user-facing messages. Known
// sentinel errors are matched first, then whole keywords in the error text.
package errclass

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"vocabtrainer/internal/customlist"
	"vocabtrainer/internal/extract"
)

// Category names a class of failure
type Category string

const (
	Network   Category = "network"
	RateLimit Category = "rate_limit"
	Service   Category = "service"
	Parse     Category = "parse"
	File      Category = "file"
	Unknown   Category = "unknown"
)

// Info is the user-facing description of an error
type Info struct {
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
	CanRetry   bool     `json:"canRetry"`
}

type rule struct {
	category Category
	keywords []string
}

// Rules are checked in order; the first match wins. Rate limiting is
// checked before the generic service rule since quota errors usually
// mention the service too.
var rules = []rule{
	{RateLimit, []string{"rate limit", "429", "quota", "resource_exhausted", "too many requests"}},
	{Network, []string{"network", "connection refused", "connection reset", "no such host", "timeout", "deadline exceeded", "eof", "dial tcp"}},
	{File, []string{"pdf", "docx", "xlsx", "unsupported format", "readable text"}},
	{Parse, []string{"parse", "json", "unmarshal", "decode", "invalid character", "unexpected end"}},
	{Service, []string{"api", "500", "502", "503", "internal", "unavailable", "model", "gemini", "status"}},
}

var sentinels = []struct {
	err      error
	category Category
}{
	{extract.ErrUnsupportedFormat, File},
	{extract.ErrFileTooLarge, File},
	{customlist.ErrNoReadableText, File},
	{customlist.ErrNoTermsFound, File},
	{context.DeadlineExceeded, Network},
}

// Words and file names are quoted into error text; they never count.
var quoted = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

var patterns = compileRules()

func compileRules() map[Category][]*regexp.Regexp {
	out := make(map[Category][]*regexp.Regexp, len(rules))
	for _, r := range rules {
		for _, kw := range r.keywords {
			out[r.category] = append(out[r.category], regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return out
}

var infos = map[Category]Info{
	Network: {
		Category:   Network,
		Message:    "Could not reach the server.",
		Suggestion: "Check your internet connection and try again.",
		CanRetry:   true,
	},
	RateLimit: {
		Category:   RateLimit,
		Message:    "The AI service is busy right now.",
		Suggestion: "Wait a minute before trying again.",
		CanRetry:   true,
	},
	Service: {
		Category:   Service,
		Message:    "The AI service had a problem.",
		Suggestion: "Try again in a moment.",
		CanRetry:   true,
	},
	Parse: {
		Category:   Parse,
		Message:    "The AI service returned an unexpected answer.",
		Suggestion: "Try again; a new answer is usually fine.",
		CanRetry:   true,
	},
	File: {
		Category:   File,
		Message:    "The file could not be read.",
		Suggestion: "Upload a PDF, DOCX or XLSX file that contains text.",
		CanRetry:   false,
	},
	Unknown: {
		Category:   Unknown,
		Message:    "Something went wrong.",
		Suggestion: "Try again. If it keeps happening, tell your teacher.",
		CanRetry:   true,
	},
}

// Classify maps err to its category info. A nil error is Unknown.
func Classify(err error) Info {
	if err == nil {
		return infos[Unknown]
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return infos[s.category]
		}
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage classifies raw error text by whole keywords, ignoring
// quoted parts
func ClassifyMessage(msg string) Info {
	lower := strings.ToLower(quoted.ReplaceAllString(msg, `""`))
	for _, r := range rules {
		for _, re := range patterns[r.category] {
			if re.MatchString(lower) {
				return infos[r.category]
			}
		}
	}
	return infos[Unknown]
}

// For returns the fixed info of a category
func For(c Category) Info {
	if info, ok := infos[c]; ok {
		return info
	}
	return infos[Unknown]
}
