package coursework

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	// errors
	ErrDraftNotFound = errors.New("draft not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrNotFound      = errors.New("assignment not found")
)

const publishedTemplate = "assignment_published"

type (
	// Repository receives the submitted drafts.
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// QueryAssignments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the title or description.
		QueryAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error)
	}

	// FileStore accepts a blob and returns the URL it can be fetched from.
	FileStore interface {
		Put(ctx context.Context, name, contentType string, r io.Reader) (url string, err error)
	}

	Service struct {
		repo     Repository
		files    FileStore
		mailer   core.EmailService
		validate *validator.Validate
		conf     *core.Config
		logger   core.Logger

		mu     sync.RWMutex
		drafts map[string]*Draft
	}
)

var now = func() time.Time { return time.Now().UTC() } // mockable

func NewService(
	repo Repository,
	files FileStore,
	mailer core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		mailer:   mailer,
		validate: validate,
		conf:     conf,
		logger:   logger,
		drafts:   make(map[string]*Draft),
	}
}

// Open starts a new authoring session.
func (svc *Service) Open(kind Kind) (Draft, error) {
	if !kind.Valid() {
		return Draft{}, core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "invalid kind: " + string(kind)})
	}
	t := now()
	d := &Draft{ID: NewID(), Kind: kind, CreatedAt: t, UpdatedAt: t}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.drafts[d.ID] = d
	return *d.clone(), nil
}

func (svc *Service) Get(id string) (Draft, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	d, ok := svc.drafts[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	return *d.clone(), nil
}

func (svc *Service) Discard(id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(svc.drafts, id)
	return nil
}

// Edit runs fn on a copy of the draft and keeps the copy only if fn succeeds,
// so a failed edit never leaves the draft half changed.
func (svc *Service) Edit(id string, fn func(d *Draft) error) (Draft, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	d, ok := svc.drafts[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	c := d.clone()
	if err := fn(c); err != nil {
		return Draft{}, err
	}
	c.UpdatedAt = now()
	svc.drafts[id] = c
	return *c.clone(), nil
}

// Summary derives the draft totals from its current items.
func (svc *Service) Summary(id string) (Totals, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	d, ok := svc.drafts[id]
	if !ok {
		return Totals{}, ErrDraftNotFound
	}
	return d.Totals(), nil
}

func (svc *Service) UpdateDetails(id string, patch DetailsPatch) (Draft, error) {
	if err := svc.validate.Struct(patch); err != nil {
		return Draft{}, err
	}
	return svc.Edit(id, func(d *Draft) error {
		d.Details = patch.Apply(d.Details)
		return nil
	})
}

func requireKind(d *Draft, kind Kind, field string) error {
	if d.Kind != kind {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: fmt.Sprintf("only %s drafts have %s", kind, field)})
	}
	return nil
}

func (svc *Service) AddRubricItem(id string) (item RubricItem, err error) {
	_, err = svc.Edit(id, func(d *Draft) error {
		if err := requireKind(d, KindAssignment, "rubric"); err != nil {
			return err
		}
		item = d.Rubric.Add()
		return nil
	})
	return item, err
}

func (svc *Service) UpdateRubricItem(id, itemID string, patch RubricItemPatch) (item RubricItem, err error) {
	if err = svc.validate.Struct(patch); err != nil {
		return RubricItem{}, err
	}
	_, err = svc.Edit(id, func(d *Draft) error {
		var err error
		item, err = d.Rubric.Update(itemID, patch)
		return err
	})
	return item, err
}

func (svc *Service) RemoveRubricItem(id, itemID string) error {
	_, err := svc.Edit(id, func(d *Draft) error {
		return d.Rubric.Remove(itemID)
	})
	return err
}

func (svc *Service) AddQuestion(id string, t QuestionType) (q Question, err error) {
	_, err = svc.Edit(id, func(d *Draft) error {
		if err := requireKind(d, KindQuiz, "questions"); err != nil {
			return err
		}
		var err error
		q, err = d.Quiz.AddQuestion(t)
		return err
	})
	return q, err
}

func (svc *Service) UpdateQuestion(id, qid string, patch QuestionPatch) (q Question, err error) {
	if err = svc.validate.Struct(patch); err != nil {
		return Question{}, err
	}
	_, err = svc.Edit(id, func(d *Draft) error {
		var err error
		q, err = d.Quiz.UpdateQuestion(qid, patch)
		return err
	})
	return q, err
}

func (svc *Service) RemoveQuestion(id, qid string) error {
	_, err := svc.Edit(id, func(d *Draft) error {
		return d.Quiz.RemoveQuestion(qid)
	})
	return err
}

func (svc *Service) AddOption(id, qid string) (opt Option, err error) {
	_, err = svc.Edit(id, func(d *Draft) error {
		var err error
		opt, err = d.Quiz.AddOption(qid)
		return err
	})
	return opt, err
}

func (svc *Service) UpdateOption(id, qid, oid, text string) (opt Option, err error) {
	_, err = svc.Edit(id, func(d *Draft) error {
		var err error
		opt, err = d.Quiz.UpdateOption(qid, oid, text)
		return err
	})
	return opt, err
}

func (svc *Service) RemoveOption(id, qid, oid string) error {
	_, err := svc.Edit(id, func(d *Draft) error {
		return d.Quiz.RemoveOption(qid, oid)
	})
	return err
}

func (svc *Service) SetCorrectOption(id, qid, oid string) (q Question, err error) {
	_, err = svc.Edit(id, func(d *Draft) error {
		var err error
		q, err = d.Quiz.SetCorrectOption(qid, oid)
		return err
	})
	return q, err
}

// Attach stores r through the FileStore and references the returned URL on the draft.
func (svc *Service) Attach(ctx context.Context, id, name, contentType string, r io.Reader) (Attachment, error) {
	if _, err := svc.Get(id); err != nil {
		return Attachment{}, err
	}
	name = core.CleanString(name)
	if name == "" {
		return Attachment{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field cannot be blank"})
	}

	url, err := svc.files.Put(ctx, name, contentType, r)
	if err != nil {
		return Attachment{}, errors.Wrap(err, "storing attachment")
	}
	at := Attachment{ID: NewID(), Name: name, ContentType: contentType, URL: url}
	_, err = svc.Edit(id, func(d *Draft) error {
		d.Attachments = append(d.Attachments, at)
		return nil
	})
	return at, err
}

// Submit validates the draft and hands it over to the Repository.
// The draft is taken out of the session first, so concurrent submits & edits see it gone;
// it is put back if validation or saving fails. An over-allocated rubric is logged, not rejected.
func (svc *Service) Submit(ctx context.Context, id string) (Assignment, error) {
	svc.mu.Lock()
	d, ok := svc.drafts[id]
	if ok {
		delete(svc.drafts, id)
	}
	svc.mu.Unlock()
	if !ok {
		return Assignment{}, ErrDraftNotFound
	}

	a, err := svc.publish(ctx, d)
	if err != nil {
		svc.mu.Lock()
		svc.drafts[id] = d
		svc.mu.Unlock()
		return Assignment{}, err
	}

	svc.notify(a)
	return a, nil
}

func (svc *Service) publish(ctx context.Context, d *Draft) (Assignment, error) {
	if err := svc.validate.Struct(*d); err != nil {
		return Assignment{}, err
	}

	totals := d.Totals()
	if d.Kind == KindAssignment && totals.OverAllocated {
		svc.logger.Warn(
			"submitting an over-allocated rubric",
			map[string]interface{}{"draft": d.ID, "rubric_points": totals.RubricPoints, "total_points": totals.AssignmentPoints},
		)
	}

	a := Assignment{
		ID:          NewID(),
		Kind:        d.Kind,
		Details:     d.Details,
		Rubric:      d.Rubric.Items,
		Questions:   d.Quiz.Questions,
		Attachments: d.Attachments,
		PublishedAt: now(),
	}
	if a.Kind == KindQuiz && a.TotalPoints == 0 {
		a.TotalPoints = totals.QuizPoints
	}
	a, err := svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "saving assignment")
	}
	return a, nil
}

func (svc *Service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) QueryAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error) {
	filter.Clean()
	return svc.repo.QueryAssignments(ctx, filter)
}

// ClassAddress is the mailing list of a grade.
func ClassAddress(grade, domain string) mail.Address {
	local := strings.ToLower(strings.Join(strings.Fields("grade "+grade), "-"))
	return mail.Address{Name: "Grade " + grade, Address: local + "@" + domain}
}

func (svc *Service) notify(a Assignment) {
	if svc.mailer == nil || svc.conf.ClassMailDomain == "" {
		return
	}
	var due string
	if a.DueDate != nil {
		due = a.DueDate.Format("Mon, 02 Jan 2006 15:04 MST")
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{ClassAddress(a.Grade, svc.conf.ClassMailDomain)},
		Subject:      "New " + string(a.Kind) + ": " + a.Title,
		TemplateName: publishedTemplate,
		TemplateData: map[string]interface{}{
			"ID":          a.ID,
			"Kind":        string(a.Kind),
			"Title":       a.Title,
			"Subject":     a.Subject,
			"Grade":       a.Grade,
			"TotalPoints": a.TotalPoints,
			"DueDate":     due,
		},
	})
}
