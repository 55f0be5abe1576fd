package coursework

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-dashboard/core"
)

// NewID generates item, option & draft ids. Ids are never reused, even after a removal.
var NewID = uuid.NewString // mockable

// Kinds
const (
	KindAssignment Kind = "assignment"
	KindQuiz       Kind = "quiz"
)

// Question types
const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

var (
	Kinds         = []Kind{KindAssignment, KindQuiz}
	QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer}
)

type (
	Kind         string
	QuestionType string
)

func (k Kind) Valid() bool {
	return k == KindAssignment || k == KindQuiz
}

func (t QuestionType) Valid() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// HasOptions reports whether questions of this type are answered by picking an option.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == TrueFalse
}

type RubricItem struct {
	ID          string  `json:"id"`
	Criterion   string  `json:"criterion" validate:"notblank"`
	Description string  `json:"description"`
	Points      float64 `json:"points" validate:"gte=0"`
}

// RubricItemPatch holds the fields to change on a RubricItem. nil fields are left untouched.
type RubricItemPatch struct {
	Criterion   *string  `json:"criterion"`
	Description *string  `json:"description"`
	Points      *float64 `json:"points" validate:"omitempty,gte=0"`
}

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"notblank"`
}

// Question is a quiz entry. The correct answer of a question with options is CorrectOptionID:
// at most one option can be correct.
type Question struct {
	ID              string       `json:"id"`
	Type            QuestionType `json:"type" validate:"qtype"`
	Prompt          string       `json:"prompt" validate:"notblank"`
	Points          float64      `json:"points" validate:"gte=0"`
	Options         []Option     `json:"options" validate:"dive"`
	CorrectOptionID string       `json:"correct_option_id,omitempty"`
	Answer          string       `json:"answer,omitempty"` // model answer of short_answer questions
}

type QuestionPatch struct {
	Type   *QuestionType `json:"type" validate:"omitempty,qtype"`
	Prompt *string       `json:"prompt"`
	Points *float64      `json:"points" validate:"omitempty,gte=0"`
	Answer *string       `json:"answer"`
}

// Details are the assignment's own fields, edited through the draft form.
type Details struct {
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description"`
	Subject     string     `json:"subject" validate:"notblank"`
	Grade       string     `json:"grade" validate:"notblank"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints float64    `json:"total_points" validate:"gte=0"`
}

type DetailsPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Subject     *string    `json:"subject"`
	Grade       *string    `json:"grade"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints *float64   `json:"total_points" validate:"omitempty,gte=0"`
}

// Apply shallow-merges the set fields of p into d.
func (p DetailsPatch) Apply(d Details) Details {
	if p.Title != nil {
		d.Title = core.CleanString(*p.Title)
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Subject != nil {
		d.Subject = core.CleanString(*p.Subject)
	}
	if p.Grade != nil {
		d.Grade = core.CleanString(*p.Grade)
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		d.DueDate = &due
	}
	if p.TotalPoints != nil {
		d.TotalPoints = *p.TotalPoints
	}
	return d
}

// Attachment is a file stored through the FileStore, referenced by its URL.
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Draft is the session state of an assignment or quiz being authored.
// It lives in the Service until it is discarded or submitted.
type Draft struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	Details     Details      `json:"details"`
	Rubric      Rubric       `json:"rubric"`
	Quiz        Quiz         `json:"quiz"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"` // UTC
	UpdatedAt   time.Time    `json:"updated_at"` // UTC
}

func (d *Draft) clone() *Draft {
	c := *d
	c.Rubric.Items = append([]RubricItem(nil), d.Rubric.Items...)
	c.Quiz.Questions = make([]Question, len(d.Quiz.Questions))
	for i, q := range d.Quiz.Questions {
		q.Options = append([]Option(nil), q.Options...)
		c.Quiz.Questions[i] = q
	}
	c.Attachments = append([]Attachment(nil), d.Attachments...)
	if d.Details.DueDate != nil {
		due := *d.Details.DueDate
		c.Details.DueDate = &due
	}
	return &c
}

// Totals are derived from the live draft on every call.
type Totals struct {
	RubricPoints     float64 `json:"rubric_points"`
	QuizPoints       float64 `json:"quiz_points"`
	AssignmentPoints float64 `json:"assignment_points"`
	// OverAllocated warns that the rubric hands out more points than the assignment is worth.
	// It never blocks submission.
	OverAllocated bool `json:"over_allocated"`
}

func (d *Draft) Totals() Totals {
	return Totals{
		RubricPoints:     d.Rubric.TotalPoints(),
		QuizPoints:       d.Quiz.TotalPoints(),
		AssignmentPoints: d.Details.TotalPoints,
		OverAllocated:    d.Rubric.OverAllocated(d.Details.TotalPoints),
	}
}

// Assignment is a submitted draft.
type Assignment struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	Details                  // embedded: title, subject, grade, ...
	Rubric      []RubricItem `json:"rubric"`
	Questions   []Question   `json:"questions"`
	Attachments []Attachment `json:"attachments"`
	PublishedAt time.Time    `json:"published_at"` // UTC
}

func (a Assignment) RubricPoints() float64 {
	return SumPoints(a.Rubric, rubricPoints)
}

func (a Assignment) QuizPoints() float64 {
	return SumPoints(a.Questions, questionPoints)
}

type QueryFilter struct {
	Search   string          `query:"search"`
	Kind     Kind            `query:"kind"`
	Subject  string          `query:"subject"`
	Grade    string          `query:"grade"`
	Ordering core.DBOrdering `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Grade = core.CleanString(qf.Grade)
	if qf.Ordering.Field == "" {
		qf.Ordering = core.DBOrdering{Field: "published_at"}
	}
}
