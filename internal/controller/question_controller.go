package controller

import (
	"errors"
	"strconv"

	"examgen_backend/internal/service"
	"examgen_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QuestionController struct {
	RunService *service.RunService
}

func NewQuestionController(runService *service.RunService) *QuestionController {
	return &QuestionController{RunService: runService}
}

// Regenerate replaces one question in place, re-running generation and
// translation against the question's original blueprint.
func (c *QuestionController) Regenerate(ctx *gin.Context) {
	id, ok := questionID(ctx)
	if !ok {
		return
	}

	q, err := c.RunService.RegenerateQuestion(ctx.Request.Context(), id)
	if err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Translate retries the Hindi pass for one question.
func (c *QuestionController) Translate(ctx *gin.Context) {
	id, ok := questionID(ctx)
	if !ok {
		return
	}

	q, err := c.RunService.RetranslateQuestion(ctx.Request.Context(), id)
	if err != nil {
		respondQuestionError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

func questionID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return 0, false
	}
	return uint(id), true
}

func respondQuestionError(ctx *gin.Context, err error) {
	var genFail *util.GenerationFailure
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.As(err, &genFail):
		util.Error(ctx, 422, genFail.Error())
	case util.IsConfigurationError(err):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
