// Package content loads course bundles written in YAML or JSON and imports
// them into the store.
package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/drillz/internal/store"
)

// SupportedMajor is the bundle format major version this build reads.
const SupportedMajor = "v1"

// Bundle is one course on disk.
type Bundle struct {
	Format string     `yaml:"format"`
	Course CourseSpec `yaml:"course"`
	Units  []UnitSpec `yaml:"units"`
}

// CourseSpec describes the course itself.
type CourseSpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageSrc    string `yaml:"imageSrc"`
	BadgeSrc    string `yaml:"badgeSrc"`
}

// UnitSpec is a unit and its drills. Order defaults to the position in the
// file.
type UnitSpec struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Notes       string      `yaml:"notes"`
	Order       *int        `yaml:"order"`
	Drills      []DrillSpec `yaml:"drills"`
}

// DrillSpec is a drill and its questions. Number defaults to the position
// in the unit.
type DrillSpec struct {
	Title     string         `yaml:"title"`
	Number    *int           `yaml:"number"`
	Timed     bool           `yaml:"timed"`
	Questions []QuestionSpec `yaml:"questions"`
}

// QuestionSpec is either a select question (options) or a free-text
// question (answer).
type QuestionSpec struct {
	Prompt      string       `yaml:"prompt"`
	Answer      string       `yaml:"answer"`
	Explanation string       `yaml:"explanation"`
	Options     []OptionSpec `yaml:"options"`
}

// OptionSpec is one choice of a select question.
type OptionSpec struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Parse decodes a bundle. JSON is accepted as it is a subset of YAML.
func Parse(r io.Reader) (*Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}

// ParseFile decodes the bundle at path.
func ParseFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// formatVersion normalizes "1.2" or "v1.2.0" to a canonical semver string.
func formatVersion(raw string) string {
	v := strings.TrimSpace(raw)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Validate checks the bundle and returns every problem found.
func (b *Bundle) Validate() error {
	var errs []string

	v := formatVersion(b.Format)
	switch {
	case v == "":
		errs = append(errs, fmt.Sprintf("format %q is not a semantic version", b.Format))
	case semver.Major(v) != SupportedMajor:
		errs = append(errs, fmt.Sprintf("format %s is not supported, want %s.x", v, SupportedMajor))
	}

	if strings.TrimSpace(b.Course.Title) == "" {
		errs = append(errs, "course title is required")
	}
	if len(b.Units) == 0 {
		errs = append(errs, "course has no units")
	}

	for ui, u := range b.Units {
		where := fmt.Sprintf("unit %d", ui+1)
		if strings.TrimSpace(u.Title) == "" {
			errs = append(errs, where+": title is required")
		}
		numbers := make(map[int]bool, len(u.Drills))
		for di, d := range u.Drills {
			dwhere := fmt.Sprintf("%s drill %d", where, di+1)
			if strings.TrimSpace(d.Title) == "" {
				errs = append(errs, dwhere+": title is required")
			}
			n := di + 1
			if d.Number != nil {
				n = *d.Number
			}
			if numbers[n] {
				errs = append(errs, fmt.Sprintf("%s: duplicate drill number %d", dwhere, n))
			}
			numbers[n] = true

			for qi, q := range d.Questions {
				errs = append(errs, validateQuestion(fmt.Sprintf("%s question %d", dwhere, qi+1), q)...)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("bundle validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateQuestion(where string, q QuestionSpec) []string {
	var errs []string
	if strings.TrimSpace(q.Prompt) == "" {
		errs = append(errs, where+": prompt is required")
	}
	hasAnswer := strings.TrimSpace(q.Answer) != ""
	switch {
	case len(q.Options) == 0 && !hasAnswer:
		errs = append(errs, where+": needs options or an answer")
	case len(q.Options) > 0 && hasAnswer:
		errs = append(errs, where+": has both options and an answer")
	case len(q.Options) > 0:
		if len(q.Options) < 2 || len(q.Options) > 4 {
			errs = append(errs, fmt.Sprintf("%s: needs 2 to 4 options, got %d", where, len(q.Options)))
		}
		correct := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o.Text) == "" {
				errs = append(errs, where+": option text is required")
			}
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			errs = append(errs, fmt.Sprintf("%s: needs exactly one correct option, got %d", where, correct))
		}
	}
	return errs
}

// NewCourse converts the bundle into the store's import shape.
func (b *Bundle) NewCourse() store.NewCourse {
	nc := store.NewCourse{Course: store.Course{
		Title:       b.Course.Title,
		Description: b.Course.Description,
		ImageSrc:    b.Course.ImageSrc,
		BadgeSrc:    b.Course.BadgeSrc,
	}}
	for ui, u := range b.Units {
		order := ui + 1
		if u.Order != nil {
			order = *u.Order
		}
		nu := store.NewUnit{Unit: store.Unit{Title: u.Title, Description: u.Description, Notes: u.Notes, Order: order}}
		for di, d := range u.Drills {
			number := di + 1
			if d.Number != nil {
				number = *d.Number
			}
			nd := store.NewDrill{Drill: store.Drill{Title: d.Title, Number: number, IsTimed: d.Timed}}
			for _, q := range d.Questions {
				nd.Questions = append(nd.Questions, question(q))
			}
			nu.Drills = append(nu.Drills, nd)
		}
		nc.Units = append(nc.Units, nu)
	}
	return nc
}

func question(q QuestionSpec) store.Question {
	if len(q.Options) == 0 {
		return store.Question{Kind: store.KindText, Prompt: q.Prompt, AnswerText: q.Answer, Explanation: q.Explanation}
	}
	out := store.Question{Kind: store.KindSelect, Prompt: q.Prompt, Explanation: q.Explanation}
	for _, o := range q.Options {
		out.Options = append(out.Options, store.Option{Text: o.Text, Correct: o.Correct})
	}
	return out
}

// Import validates the bundle and writes it as a new course.
func Import(ctx context.Context, repo store.ContentRepo, b *Bundle) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	id, err := repo.Import(ctx, b.NewCourse())
	if err != nil {
		return 0, fmt.Errorf("import course %q: %w", b.Course.Title, err)
	}
	return id, nil
}
