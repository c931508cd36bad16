package studio

import (
	"fmt"
	"strings"

	"github.com/abhisek/drillz/internal/session"
	"github.com/abhisek/drillz/internal/store"
)

const systemPrompt = `You write short explanations for quiz questions in a language-learning course. The learner has just answered the question and is shown your explanation next to the correct answer.`

func buildUserMessage(courseTitle string, q store.Question) string {
	var b strings.Builder
	if courseTitle != "" {
		fmt.Fprintf(&b, "Course: %s\n", courseTitle)
	}
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	if q.Kind == store.KindSelect {
		b.WriteString("Options:\n")
		for _, o := range q.Options {
			fmt.Fprintf(&b, "- %s\n", o.Text)
		}
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", session.CorrectAnswer(q))

	b.WriteString(`
Instructions:
1. Explain in 1-3 sentences why the correct answer is right.
2. When a wrong option is a common confusion, say briefly why it is wrong.
3. Plain text only. No markdown, no lists.`)
	return b.String()
}
