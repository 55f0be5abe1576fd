package coursework

import (
	"github.com/trezcool/masomo-dashboard/core"
)

// true/false questions always carry these two options.
var trueFalseTexts = []string{"True", "False"}

// Quiz is the editable list of questions of a draft.
type Quiz struct {
	Questions []Question `json:"questions" validate:"dive"`
}

func (q *Quiz) index(id string) int {
	for i, qst := range q.Questions {
		if qst.ID == id {
			return i
		}
	}
	return -1
}

func defaultOptions(t QuestionType) []Option {
	switch t {
	case TrueFalse:
		opts := make([]Option, 0, len(trueFalseTexts))
		for _, text := range trueFalseTexts {
			opts = append(opts, Option{ID: NewID(), Text: text})
		}
		return opts
	case MultipleChoice:
		return []Option{{ID: NewID()}, {ID: NewID()}}
	default:
		return nil
	}
}

// AddQuestion appends a question of type t. Multiple choice questions start with two empty options.
func (q *Quiz) AddQuestion(t QuestionType) (Question, error) {
	if !t.Valid() {
		return Question{}, errInvalidType(t)
	}
	qst := Question{ID: NewID(), Type: t, Options: defaultOptions(t)}
	q.Questions = append(q.Questions, qst)
	return qst, nil
}

// UpdateQuestion replaces the question matching id with a patched copy.
// Changing the type resets what the new type cannot keep: options and correct answer.
func (q *Quiz) UpdateQuestion(id string, patch QuestionPatch) (Question, error) {
	idx := q.index(id)
	if idx < 0 {
		return Question{}, ErrItemNotFound
	}
	qst := q.Questions[idx]
	if patch.Type != nil && *patch.Type != qst.Type {
		t := *patch.Type
		if !t.Valid() {
			return Question{}, errInvalidType(t)
		}
		if t == TrueFalse || !qst.Type.HasOptions() || !t.HasOptions() {
			qst.Options = defaultOptions(t)
			qst.CorrectOptionID = ""
		}
		if t != ShortAnswer {
			qst.Answer = ""
		}
		qst.Type = t
	}
	if patch.Prompt != nil {
		qst.Prompt = core.CleanString(*patch.Prompt)
	}
	if patch.Points != nil {
		qst.Points = *patch.Points
	}
	if patch.Answer != nil {
		if qst.Type != ShortAnswer {
			return Question{}, core.NewValidationError(nil, core.FieldError{Field: "answer", Error: "only short answer questions have a model answer"})
		}
		qst.Answer = *patch.Answer
	}
	q.Questions[idx] = qst
	return qst, nil
}

func (q *Quiz) RemoveQuestion(id string) error {
	idx := q.index(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	q.Questions = append(q.Questions[:idx:idx], q.Questions[idx+1:]...)
	return nil
}

// editableOptions returns the index of question qid, if its options can be added or removed.
func (q *Quiz) editableOptions(qid string) (int, error) {
	idx := q.index(qid)
	if idx < 0 {
		return -1, ErrItemNotFound
	}
	if q.Questions[idx].Type != MultipleChoice {
		return -1, core.NewValidationError(nil, core.FieldError{Field: "options", Error: "only multiple choice questions have editable options"})
	}
	return idx, nil
}

func (q *Quiz) AddOption(qid string) (Option, error) {
	idx, err := q.editableOptions(qid)
	if err != nil {
		return Option{}, err
	}
	opt := Option{ID: NewID()}
	qst := q.Questions[idx]
	qst.Options = append(qst.Options[:len(qst.Options):len(qst.Options)], opt)
	q.Questions[idx] = qst
	return opt, nil
}

func (q *Quiz) UpdateOption(qid, oid, text string) (Option, error) {
	idx, err := q.editableOptions(qid)
	if err != nil {
		return Option{}, err
	}
	qst := q.Questions[idx]
	qst.Options = append([]Option(nil), qst.Options...)
	for i, opt := range qst.Options {
		if opt.ID == oid {
			opt.Text = core.CleanString(text)
			qst.Options[i] = opt
			q.Questions[idx] = qst
			return opt, nil
		}
	}
	return Option{}, ErrItemNotFound
}

// RemoveOption drops option oid. Removing the correct option leaves the question without an answer.
func (q *Quiz) RemoveOption(qid, oid string) error {
	idx, err := q.editableOptions(qid)
	if err != nil {
		return err
	}
	qst := q.Questions[idx]
	opts := make([]Option, 0, len(qst.Options))
	for _, opt := range qst.Options {
		if opt.ID != oid {
			opts = append(opts, opt)
		}
	}
	if len(opts) == len(qst.Options) {
		return ErrItemNotFound
	}
	qst.Options = opts
	if qst.CorrectOptionID == oid {
		qst.CorrectOptionID = ""
	}
	q.Questions[idx] = qst
	return nil
}

// SetCorrectOption marks oid as the answer of question qid, replacing any previous answer.
func (q *Quiz) SetCorrectOption(qid, oid string) (Question, error) {
	idx := q.index(qid)
	if idx < 0 {
		return Question{}, ErrItemNotFound
	}
	qst := q.Questions[idx]
	if !qst.Type.HasOptions() {
		return Question{}, core.NewValidationError(nil, core.FieldError{Field: "correct_option_id", Error: "this question has no options"})
	}
	for _, opt := range qst.Options {
		if opt.ID == oid {
			qst.CorrectOptionID = oid
			q.Questions[idx] = qst
			return qst, nil
		}
	}
	return Question{}, ErrItemNotFound
}

func (q Quiz) TotalPoints() float64 {
	return SumPoints(q.Questions, questionPoints)
}

func errInvalidType(t QuestionType) error {
	return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "invalid question type: " + string(t)})
}
