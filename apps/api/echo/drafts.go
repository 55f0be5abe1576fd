package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/coursework"
)

type (
	NewDraftRequest struct {
		Kind coursework.Kind `json:"kind" validate:"required,oneof=assignment quiz"`
	}

	NewQuestionRequest struct {
		Type coursework.QuestionType `json:"type" validate:"required,qtype"`
		coursework.QuestionPatch
	}

	OptionRequest struct {
		Text *string `json:"text" validate:"omitempty,notblank"`
	}

	CorrectOptionRequest struct {
		OptionID string `json:"option_id" validate:"required"`
	}

	DraftResponse struct {
		coursework.Draft
		Totals coursework.Totals `json:"totals"`
	}
)

type draftApi struct {
	svc           *coursework.Service
	validate      *validator.Validate
	maxUploadSize int64
}

func registerDraftAPI(g *echo.Group, svc *coursework.Service, validate *validator.Validate, maxUploadSize int64) {
	api := draftApi{
		svc:           svc,
		validate:      validate,
		maxUploadSize: maxUploadSize,
	}

	dg := g.Group("/drafts", noStore)
	dg.POST("", api.create)
	dg.GET("/:id", api.retrieve)
	dg.PATCH("/:id", api.updateDetails)
	dg.DELETE("/:id", api.discard)
	dg.GET("/:id/totals", api.totals)
	dg.POST("/:id/submit", api.submit)
	dg.POST("/:id/attachments", api.attach)

	// rubric (assignment drafts)
	dg.POST("/:id/rubric", api.addRubricItem)
	dg.PATCH("/:id/rubric/:item", api.updateRubricItem)
	dg.DELETE("/:id/rubric/:item", api.removeRubricItem)

	// questions (quiz drafts)
	qg := dg.Group("/:id/questions")
	qg.POST("", api.addQuestion)
	qg.PATCH("/:q", api.updateQuestion)
	qg.DELETE("/:q", api.removeQuestion)
	qg.PUT("/:q/correct", api.setCorrectOption)
	qg.POST("/:q/options", api.addOption)
	qg.PATCH("/:q/options/:o", api.updateOption)
	qg.DELETE("/:q/options/:o", api.removeOption)
}

func draftResponse(d coursework.Draft) DraftResponse {
	return DraftResponse{Draft: d, Totals: d.Totals()}
}

func (api *draftApi) create(ctx echo.Context) error {
	var data NewDraftRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDraftRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	d, err := api.svc.Open(data.Kind)
	if err != nil {
		return errors.Wrap(err, "opening draft")
	}
	return ctx.JSON(http.StatusCreated, draftResponse(d))
}

func (api *draftApi) retrieve(ctx echo.Context) error {
	d, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting draft")
	}
	return ctx.JSON(http.StatusOK, draftResponse(d))
}

func (api *draftApi) updateDetails(ctx echo.Context) error {
	var data coursework.DetailsPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DetailsPatch")
	}
	d, err := api.svc.UpdateDetails(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating draft details")
	}
	return ctx.JSON(http.StatusOK, draftResponse(d))
}

func (api *draftApi) discard(ctx echo.Context) error {
	if err := api.svc.Discard(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "discarding draft")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *draftApi) totals(ctx echo.Context) error {
	t, err := api.svc.Summary(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "summing draft points")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *draftApi) submit(ctx echo.Context) error {
	a, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting draft")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *draftApi) attach(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	if api.maxUploadSize > 0 && fh.Size > api.maxUploadSize {
		return echo.ErrStatusRequestEntityTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	at, err := api.svc.Attach(ctx.Request().Context(), ctx.Param("id"), fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
	if err != nil {
		return errors.Wrap(err, "attaching file")
	}
	return ctx.JSON(http.StatusCreated, at)
}

// Rubric

func (api *draftApi) addRubricItem(ctx echo.Context) error {
	var data coursework.RubricItemPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RubricItemPatch")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	id := ctx.Param("id")
	item, err := api.svc.AddRubricItem(id)
	if err != nil {
		return errors.Wrap(err, "adding rubric item")
	}
	if data == (coursework.RubricItemPatch{}) {
		return ctx.JSON(http.StatusCreated, item)
	}
	updated, err := api.svc.UpdateRubricItem(id, item.ID, data)
	if err != nil {
		_ = api.svc.RemoveRubricItem(id, item.ID)
		return errors.Wrap(err, "updating rubric item")
	}
	return ctx.JSON(http.StatusCreated, updated)
}

func (api *draftApi) updateRubricItem(ctx echo.Context) error {
	var data coursework.RubricItemPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RubricItemPatch")
	}
	item, err := api.svc.UpdateRubricItem(ctx.Param("id"), ctx.Param("item"), data)
	if err != nil {
		return errors.Wrap(err, "updating rubric item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *draftApi) removeRubricItem(ctx echo.Context) error {
	if err := api.svc.RemoveRubricItem(ctx.Param("id"), ctx.Param("item")); err != nil {
		return errors.Wrap(err, "removing rubric item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *draftApi) addQuestion(ctx echo.Context) error {
	var data NewQuestionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestionRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	id := ctx.Param("id")
	q, err := api.svc.AddQuestion(id, data.Type)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	patch := data.QuestionPatch
	patch.Type = nil
	if patch == (coursework.QuestionPatch{}) {
		return ctx.JSON(http.StatusCreated, q)
	}
	updated, err := api.svc.UpdateQuestion(id, q.ID, patch)
	if err != nil {
		_ = api.svc.RemoveQuestion(id, q.ID)
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusCreated, updated)
}

func (api *draftApi) updateQuestion(ctx echo.Context) error {
	var data coursework.QuestionPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuestionPatch")
	}
	q, err := api.svc.UpdateQuestion(ctx.Param("id"), ctx.Param("q"), data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *draftApi) removeQuestion(ctx echo.Context) error {
	if err := api.svc.RemoveQuestion(ctx.Param("id"), ctx.Param("q")); err != nil {
		return errors.Wrap(err, "removing question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *draftApi) setCorrectOption(ctx echo.Context) error {
	var data CorrectOptionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CorrectOptionRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	q, err := api.svc.SetCorrectOption(ctx.Param("id"), ctx.Param("q"), data.OptionID)
	if err != nil {
		return errors.Wrap(err, "setting correct option")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *draftApi) addOption(ctx echo.Context) error {
	var data OptionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OptionRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	id, qid := ctx.Param("id"), ctx.Param("q")
	opt, err := api.svc.AddOption(id, qid)
	if err != nil {
		return errors.Wrap(err, "adding option")
	}
	if data.Text == nil {
		return ctx.JSON(http.StatusCreated, opt)
	}
	updated, err := api.svc.UpdateOption(id, qid, opt.ID, *data.Text)
	if err != nil {
		_ = api.svc.RemoveOption(id, qid, opt.ID)
		return errors.Wrap(err, "updating option")
	}
	return ctx.JSON(http.StatusCreated, updated)
}

func (api *draftApi) updateOption(ctx echo.Context) error {
	var data OptionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OptionRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if data.Text == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "text", Error: "this field is required"})
	}
	opt, err := api.svc.UpdateOption(ctx.Param("id"), ctx.Param("q"), ctx.Param("o"), *data.Text)
	if err != nil {
		return errors.Wrap(err, "updating option")
	}
	return ctx.JSON(http.StatusOK, opt)
}

func (api *draftApi) removeOption(ctx echo.Context) error {
	if err := api.svc.RemoveOption(ctx.Param("id"), ctx.Param("q"), ctx.Param("o")); err != nil {
		return errors.Wrap(err, "removing option")
	}
	return ctx.NoContent(http.StatusNoContent)
}
