package app

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/config"
	"github.com/ananyakrishnaeemani/ai-learning/internal/middleware"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		authGroup.GET("/profile", c.auth.Profile)

		authGroup.POST("/topics", c.topic.Create)
		authGroup.GET("/topics", c.topic.List)
		authGroup.GET("/topics/:id", c.topic.Detail)
		authGroup.DELETE("/topics/:id", c.topic.Delete)

		authGroup.GET("/modules/:id/content", c.learning.ModuleContent)
		authGroup.POST("/modules/:id/quiz", c.learning.SubmitQuiz)

		authGroup.POST("/mock-exams", c.exam.Generate)
		authGroup.GET("/mock-exams/history", c.exam.History)
		authGroup.GET("/mock-exams/:id", c.exam.Get)
		authGroup.POST("/mock-exams/:id/submit", c.exam.Submit)
		authGroup.GET("/mock-exams/attempts/:id", c.exam.Review)

		authGroup.GET("/dashboard", c.dashboard.Get)
		authGroup.GET("/progress/ai-insights", c.dashboard.Insights)
	}
}
