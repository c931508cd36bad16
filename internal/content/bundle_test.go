package content

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/store"
)

func TestParseYAMLBundle(t *testing.T) {
	b, err := ParseFile(filepath.Join("testdata", "spanish.yaml"))
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	nc := b.NewCourse()
	assert.Equal(t, "Spanish for Travellers", nc.Course.Title)
	require.Len(t, nc.Units, 2)
	assert.Equal(t, 1, nc.Units[0].Unit.Order)
	assert.Equal(t, 5, nc.Units[1].Unit.Order)
	assert.Equal(t, []int{1, 2}, []int{nc.Units[0].Drills[0].Drill.Number, nc.Units[0].Drills[1].Drill.Number})
	assert.True(t, nc.Units[1].Drills[0].Drill.IsTimed)

	greet := nc.Units[0].Drills[0].Questions
	assert.Equal(t, store.KindSelect, greet[0].Kind)
	assert.Len(t, greet[0].Options, 3)
	assert.Equal(t, store.KindText, greet[1].Kind)
	assert.Equal(t, "gracias", greet[1].AnswerText)
}

func TestParseJSONBundle(t *testing.T) {
	b, err := ParseFile(filepath.Join("testdata", "course.json"))
	require.NoError(t, err)
	assert.NoError(t, b.Validate())
	assert.Equal(t, "Colors", b.Course.Title)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("format: v1\ncourse:\n  title: X\n  colour: red\n"))
	assert.Error(t, err)
}

func validBundle() *Bundle {
	return &Bundle{
		Format: "v1.0.0",
		Course: CourseSpec{Title: "Course"},
		Units: []UnitSpec{{
			Title: "Unit",
			Drills: []DrillSpec{{
				Title: "Drill",
				Questions: []QuestionSpec{
					{Prompt: "p", Options: []OptionSpec{{Text: "a", Correct: true}, {Text: "b"}}},
				},
			}},
		}},
	}
}

func TestValidate(t *testing.T) {
	one := 1
	tests := []struct {
		name   string
		mutate func(b *Bundle)
		want   string
	}{
		{"valid", func(*Bundle) {}, ""},
		{"bare version", func(b *Bundle) { b.Format = "1.4" }, ""},
		{"future major", func(b *Bundle) { b.Format = "v2.0.0" }, "not supported"},
		{"garbage version", func(b *Bundle) { b.Format = "latest" }, "not a semantic version"},
		{"missing title", func(b *Bundle) { b.Course.Title = " " }, "course title is required"},
		{"no units", func(b *Bundle) { b.Units = nil }, "no units"},
		{"duplicate drill number", func(b *Bundle) {
			d := b.Units[0].Drills[0]
			d.Number = &one
			b.Units[0].Drills = append(b.Units[0].Drills, d)
		}, "duplicate drill number 1"},
		{"one option", func(b *Bundle) {
			b.Units[0].Drills[0].Questions[0].Options = []OptionSpec{{Text: "a", Correct: true}}
		}, "needs 2 to 4 options"},
		{"two correct", func(b *Bundle) {
			b.Units[0].Drills[0].Questions[0].Options[1].Correct = true
		}, "exactly one correct option"},
		{"no answer", func(b *Bundle) {
			b.Units[0].Drills[0].Questions[0].Options = nil
		}, "needs options or an answer"},
		{"options and answer", func(b *Bundle) {
			b.Units[0].Drills[0].Questions[0].Answer = "a"
		}, "both options and an answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)
			err := b.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	b, err := ParseFile(filepath.Join("testdata", "spanish.yaml"))
	require.NoError(t, err)
	id, err := Import(ctx, st.ContentRepo(), b)
	require.NoError(t, err)

	units, err := st.ContentRepo().Outline(ctx, id)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Greetings", units[0].Drills[0].Title)
	assert.Equal(t, 2, units[0].Drills[0].QuestionCount)

	bad := validBundle()
	bad.Format = "v9"
	_, err = Import(ctx, st.ContentRepo(), bad)
	assert.Error(t, err)
}
