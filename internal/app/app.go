package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examgen_backend/internal/config"
	"examgen_backend/internal/controller"
	"examgen_backend/internal/repository"
	"examgen_backend/internal/service"
	"examgen_backend/pkg/database"
	"examgen_backend/pkg/logger"
	"examgen_backend/pkg/monitoring"
	"examgen_backend/pkg/security"
	"examgen_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user     *repository.UserRepository
	run      *repository.RunRepository
	question *repository.QuestionRepository
	template *repository.BlueprintTemplateRepository
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	run     *service.RunService
	export  *service.ExportService
}

type controllers struct {
	auth     *controller.AuthController
	run      *controller.RunController
	question *controller.QuestionController
	export   *controller.ExportController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		run:      repository.NewRunRepository(db),
		question: repository.NewQuestionRepository(db, rdb),
		template: repository.NewBlueprintTemplateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	ai := service.NewAIService(cfg.AI)
	crafter := service.NewPromptCrafter()

	planner := service.NewPlannerService(ai, cfg.AI, cfg.Generation)
	generator := service.NewGeneratorService(ai, crafter, cfg.AI, cfg.Generation)
	translator := service.NewTranslatorService(ai, cfg.AI)
	researcher := service.NewResearcherService(ai, cfg.AI, cfg.Generation)

	storage := service.NewStorageService(cfg)

	return &services{
		auth:    service.NewAuthService(repos.user, cfg),
		storage: storage,
		run:     service.NewRunService(repos.run, repos.question, repos.template, planner, generator, translator, researcher, cfg.Generation),
		export:  service.NewExportService(storage),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		run:      controller.NewRunController(s.run),
		question: controller.NewQuestionController(s.run),
		export:   controller.NewExportController(s.run, s.export),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, blueprint history cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("examgen-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	return app
}

func ginMode(mode string) string {
	if mode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
