package studio

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/llm"
	"github.com/abhisek/drillz/internal/store"
)

func newStore(t *testing.T) (*store.Store, int) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	id, err := st.ContentRepo().Import(context.Background(), store.NewCourse{
		Course: store.Course{Title: "Spanish"},
		Units: []store.NewUnit{{
			Unit: store.Unit{Title: "Verbs", Order: 1},
			Drills: []store.NewDrill{{
				Drill: store.Drill{Title: "Ser", Number: 1},
				Questions: []store.Question{
					{Kind: store.KindSelect, Prompt: "Yo ___ Ana", Options: []store.Option{{Text: "soy", Correct: true}, {Text: "estoy"}}},
					{Kind: store.KindText, Prompt: "I am (ser)", AnswerText: "soy"},
					{Kind: store.KindText, Prompt: "done", AnswerText: "x", Explanation: "already"},
				},
			}},
		}},
	})
	require.NoError(t, err)
	return st, id
}

func explanation(text string) llm.MockResponse {
	raw, _ := json.Marshal(map[string]string{"explanation": text})
	return llm.MockResponse{Content: raw}
}

func TestFillStoresExplanations(t *testing.T) {
	st, courseID := newStore(t)
	mock := llm.NewMockProvider(explanation("soy is ser for identity"), explanation("  soy  "))
	ex := NewExplainer(mock, st.ContentRepo(), Config{MaxTokens: 100, Concurrency: 1}, nil)

	rep, err := ex.Fill(context.Background(), courseID, 0)
	require.NoError(t, err)
	assert.Equal(t, Report{Considered: 2, Filled: 2}, rep)

	missing, err := st.ContentRepo().MissingExplanations(context.Background(), courseID, 0)
	require.NoError(t, err)
	assert.Empty(t, missing)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ExplanationSchema, calls[0].Schema)
	assert.Contains(t, calls[0].Messages[0].Content, "Course: Spanish")
	assert.Contains(t, calls[0].Messages[0].Content, "Correct answer: soy")
	assert.Contains(t, calls[0].Messages[0].Content, "- estoy")
}

func TestFillCountsFailures(t *testing.T) {
	st, courseID := newStore(t)
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("provider down")},
		llm.MockResponse{Content: json.RawMessage(`{"explanation":""}`)},
	)
	ex := NewExplainer(mock, st.ContentRepo(), Config{Concurrency: 2}, nil)

	rep, err := ex.Fill(context.Background(), courseID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Failed)
	assert.Zero(t, rep.Filled)

	missing, err := st.ContentRepo().MissingExplanations(context.Background(), courseID, 0)
	require.NoError(t, err)
	assert.Len(t, missing, 2)
}

func TestFillRespectsLimit(t *testing.T) {
	st, courseID := newStore(t)
	mock := llm.NewMockProvider(explanation("one"))
	ex := NewExplainer(mock, st.ContentRepo(), DefaultConfig(), nil)

	rep, err := ex.Fill(context.Background(), courseID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Filled)
	assert.Len(t, mock.Calls(), 1)
}

func TestExplainRejectsBlank(t *testing.T) {
	ex := NewExplainer(llm.NewMockProvider(explanation("   ")), nil, DefaultConfig(), nil)
	_, err := ex.Explain(context.Background(), "", store.Question{Kind: store.KindText, Prompt: "p", AnswerText: "a"})
	assert.Error(t, err)
}
