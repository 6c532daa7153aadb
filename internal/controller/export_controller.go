package controller

import (
	"errors"

	"examgen_backend/internal/service"
	"examgen_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExportController struct {
	RunService    *service.RunService
	ExportService *service.ExportService
}

func NewExportController(runService *service.RunService, exportService *service.ExportService) *ExportController {
	return &ExportController{
		RunService:    runService,
		ExportService: exportService,
	}
}

// Export renders a completed run as a bilingual DOCX paper, stores it, and
// records the URL on the run.
func (c *ExportController) Export(ctx *gin.Context) {
	run, err := c.RunService.GetRun(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrRunNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	questions, err := c.RunService.ListQuestions(run.Code)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.ExportService.Export(ctx.Request.Context(), run, questions)
	if err != nil {
		if errors.Is(err, util.ErrRunNotCompleted) {
			util.Error(ctx, 409, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	run.ExportURL = url
	if err := c.RunService.Runs.Update(run); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
