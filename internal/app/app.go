package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ananyakrishnaeemani/ai-learning/internal/config"
	"github.com/ananyakrishnaeemani/ai-learning/internal/controller"
	"github.com/ananyakrishnaeemani/ai-learning/internal/repository"
	"github.com/ananyakrishnaeemani/ai-learning/internal/service"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/database"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/monitoring"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/security"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dashboardCacheTTL = time.Minute

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	scoring        *service.ScoringPolicy
	tracerShutdown func(context.Context) error
}

type repositories struct {
	user     *repository.UserRepository
	topic    *repository.TopicRepository
	content  *repository.ContentRepository
	progress *repository.ProgressRepository
	exam     *repository.MockExamRepository
}

type services struct {
	auth      *service.AuthService
	content   *service.ContentService
	grading   *service.GradingService
	exam      *service.MockExamService
	dashboard *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	topic     *controller.TopicController
	learning  *controller.LearningController
	exam      *controller.MockExamController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		topic:    repository.NewTopicRepository(db),
		content:  repository.NewContentRepository(db),
		progress: repository.NewProgressRepository(db),
		exam:     repository.NewMockExamRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, scoring *service.ScoringPolicy) *services {
	generator := service.NewAIService(cfg.AI)
	cache := service.NewDashboardCache(rdb, dashboardCacheTTL)

	return &services{
		auth:      service.NewAuthService(repos.user, cfg.JWT),
		content:   service.NewContentService(repos.topic, repos.content, repos.progress, generator),
		grading:   service.NewGradingService(repos.topic, repos.content, repos.progress, repos.exam, cache, scoring),
		exam:      service.NewMockExamService(repos.exam, generator),
		dashboard: service.NewDashboardService(repos.topic, repos.progress, repos.exam, cache, generator, scoring),
	}
}

func initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		topic:     controller.NewTopicController(s.content),
		learning:  controller.NewLearningController(s.content, s.grading),
		exam:      controller.NewMockExamController(s.exam, s.grading),
		dashboard: controller.NewDashboardController(s.dashboard),
		health:    controller.NewHealthController(db),
	}
}

func setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
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
	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// The dashboard cache degrades to a no-op without redis.
		logger.Log.Warn("Redis unavailable, dashboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	app.scoring = service.NewScoringPolicy(cfg.Scoring.ExamXPPerPoint)

	repos := initRepositories(db)
	services := initServices(repos, cfg, rdb, app.scoring)
	controllers := initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("ai-learning", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func ginMode(serverMode string) string {
	if serverMode == "release" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

// Reload applies a hot-reloaded config. Only the scoring policy takes
// effect live; everything else is captured at wiring time and needs a
// restart.
func (a *App) Reload(cfg *config.Config) {
	a.scoring.SetExamXPPerPoint(cfg.Scoring.ExamXPPerPoint)
	logger.Log.Info("config reloaded",
		zap.Int("exam_xp_per_point", cfg.Scoring.ExamXPPerPoint))
}

func (a *App) Run() {
	defer logger.Log.Sync()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("server exited")
}
