package controller

import (
	"errors"
	"strconv"

	"examgen_backend/internal/model"
	"examgen_backend/internal/service"
	"examgen_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RunController struct {
	RunService *service.RunService
}

func NewRunController(runService *service.RunService) *RunController {
	return &RunController{RunService: runService}
}

type CreateRunRequest struct {
	Name       string          `json:"name" binding:"required"`
	Subject    string          `json:"subject"`
	Topic      string          `json:"topic"`
	SourceText string          `json:"sourceText"`
	Blueprint  model.Blueprint `json:"blueprint"` // empty: use the default template
}

// CreateRun starts a generation run. The run executes in the background; the
// response carries the run code to poll.
func (c *RunController) CreateRun(ctx *gin.Context) {
	var req CreateRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	run, err := c.RunService.StartRun(service.CreateRunInput{
		Name:       req.Name,
		Subject:    req.Subject,
		Topic:      req.Topic,
		SourceText: req.SourceText,
		Blueprint:  req.Blueprint,
	})
	if err != nil {
		if util.IsConfigurationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, run)
}

// ListBlueprints returns the stored reusable blueprint templates.
func (c *RunController) ListBlueprints(ctx *gin.Context) {
	templates, err := c.RunService.ListTemplates()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, templates)
}

// ListRuns returns a page of runs, newest first.
func (c *RunController) ListRuns(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	runs, total, err := c.RunService.ListRuns(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  runs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetRun returns one run with its summary counters.
func (c *RunController) GetRun(ctx *gin.Context) {
	run, ok := c.findRun(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"run": run, "summary": run.Summary()})
}

// DeleteRun removes a run and all of its questions.
func (c *RunController) DeleteRun(ctx *gin.Context) {
	run, ok := c.findRun(ctx)
	if !ok {
		return
	}
	if err := c.RunService.DeleteRun(run.Code); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": run.Code})
}

// ListQuestions returns the stored questions of a run in paper order.
func (c *RunController) ListQuestions(ctx *gin.Context) {
	run, ok := c.findRun(ctx)
	if !ok {
		return
	}
	questions, err := c.RunService.ListQuestions(run.Code)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

func (c *RunController) findRun(ctx *gin.Context) (*model.Run, bool) {
	run, err := c.RunService.GetRun(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrRunNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}
	return run, true
}
