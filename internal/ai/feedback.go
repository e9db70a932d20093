package ai

import (
	"strings"

	"vocabtrainer/internal/models"
)

var feedbackHeaders = []string{"What went well", "What to practice", "Next steps"}

// ParseFeedback splits feedback prose into sections at recognised headers.
// Headers may carry markdown decoration or a trailing colon. Text before the
// first header, or text without any header, lands in a "Feedback" section.
func ParseFeedback(raw string) models.Feedback {
	fb := models.Feedback{Raw: raw, Sections: []models.FeedbackSection{}}

	heading := "Feedback"
	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			fb.Sections = append(fb.Sections, models.FeedbackSection{Heading: heading, Body: text})
		}
		body = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if h, rest, ok := matchHeader(line); ok {
			flush()
			heading = h
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	return fb
}

// matchHeader reports whether line starts with a known header and returns
// any text following it on the same line
func matchHeader(line string) (string, string, bool) {
	cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#*_ "))
	lower := strings.ToLower(cleaned)
	for _, h := range feedbackHeaders {
		if !strings.HasPrefix(lower, strings.ToLower(h)) {
			continue
		}
		rest := cleaned[len(h):]
		rest = strings.TrimLeft(rest, "*_: ")
		return h, strings.TrimSpace(rest), true
	}
	return "", "", false
}
