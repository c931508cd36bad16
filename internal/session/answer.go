package session

import (
	"strconv"
	"strings"

	"github.com/abhisek/drillz/internal/store"
)

// Response is what the learner submitted for one question.
type Response struct {
	OptionID *int
	Text     string
}

// Evaluate reports whether resp answers q correctly.
//
// Select questions accept the id of the correct option, or its text or
// 1-based position typed in Text. Text questions compare case-insensitively
// with runs of whitespace collapsed.
func Evaluate(q store.Question, resp Response) bool {
	if q.Kind == store.KindText {
		given := normalize(resp.Text)
		return given != "" && given == normalize(q.AnswerText)
	}

	if resp.OptionID != nil {
		for _, o := range q.Options {
			if o.ID == *resp.OptionID {
				return o.Correct
			}
		}
		return false
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return false
	}
	if idx, err := strconv.Atoi(text); err == nil && idx >= 1 && idx <= len(q.Options) {
		return q.Options[idx-1].Correct
	}
	for _, o := range q.Options {
		if strings.EqualFold(strings.TrimSpace(o.Text), text) {
			return o.Correct
		}
	}
	return false
}

// CorrectAnswer returns the display text of the right answer.
func CorrectAnswer(q store.Question) string {
	if q.Kind == store.KindText {
		return q.AnswerText
	}
	for _, o := range q.Options {
		if o.Correct {
			return o.Text
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
