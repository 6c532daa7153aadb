package app

import (
	"examgen_backend/internal/middleware"
	"examgen_backend/internal/model"
	"examgen_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("/blueprints", c.run.ListBlueprints)

		authorized.POST("/runs", c.run.CreateRun)
		authorized.GET("/runs", c.run.ListRuns)
		authorized.GET("/runs/:code", c.run.GetRun)
		authorized.DELETE("/runs/:code", middleware.RoleMiddleware(model.Author), c.run.DeleteRun)
		authorized.GET("/runs/:code/questions", c.run.ListQuestions)
		authorized.POST("/runs/:code/export", c.export.Export)

		authorized.POST("/questions/:id/regenerate", c.question.Regenerate)
		authorized.POST("/questions/:id/translate", c.question.Translate)
	}
}
