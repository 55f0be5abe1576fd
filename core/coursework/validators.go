package coursework

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	qTypeTag  = "qtype"
	qTypeText = "invalid question type"

	minOptionsTag  = "minoptions"
	minOptions     = 2
	minOptionsText = fmt.Sprintf("a multiple choice question needs at least %d options", minOptions)

	correctOptionTag  = "correctoption"
	correctOptionText = "select the correct option"

	dupPromptTag  = "dupprompt"
	dupPromptText = "this question is too similar to a previous one"
	dupPromptSim  = .9
)

// InitValidators registers the coursework validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(qTypeTag, questionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, qTypeTag, qTypeText)

	validate.RegisterStructValidation(draftStructValidation, Draft{})
	core.RegisterCustomTranslation(validate, translator, minOptionsTag, minOptionsText)
	core.RegisterCustomTranslation(validate, translator, correctOptionTag, correctOptionText)
	core.RegisterCustomTranslation(validate, translator, dupPromptTag, dupPromptText)
}

// Custom Validators

func questionTypeValidation(fl validator.FieldLevel) bool {
	return QuestionType(fl.Field().String()).Valid()
}

// draftStructValidation applies the submission rules that depend on the draft kind.
func draftStructValidation(sl validator.StructLevel) {
	d, ok := sl.Current().Interface().(Draft)
	if !ok || d.Kind != KindQuiz {
		return
	}
	if len(d.Quiz.Questions) == 0 {
		sl.ReportError(d.Quiz.Questions, "questions", "Questions", "required", "")
		return
	}

	prompts := make([][]string, 0, len(d.Quiz.Questions))
	for i, q := range d.Quiz.Questions {
		if q.Type == MultipleChoice && len(q.Options) < minOptions {
			sl.ReportError(q.Options, fmt.Sprintf("questions[%d].options", i), "Options", minOptionsTag, "")
		}
		if q.Type.HasOptions() && q.CorrectOptionID == "" {
			sl.ReportError(q.CorrectOptionID, fmt.Sprintf("questions[%d].correct_option_id", i), "CorrectOptionID", correctOptionTag, "")
		}

		prompt := strings.Split(strings.ToLower(q.Prompt), "")
		if q.Prompt != "" && similarToAny(prompt, prompts) {
			sl.ReportError(q.Prompt, fmt.Sprintf("questions[%d].prompt", i), "Prompt", dupPromptTag, "")
		}
		prompts = append(prompts, prompt)
	}
}

func similarToAny(prompt []string, previous [][]string) bool {
	for _, prev := range previous {
		if len(prev) == 0 {
			continue
		}
		m := difflib.NewMatcher(prompt, prev)
		if m.QuickRatio() >= dupPromptSim && m.Ratio() >= dupPromptSim {
			return true
		}
	}
	return false
}
