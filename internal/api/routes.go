package api

import (
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/container"
	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin engine with all middleware and endpoints.
func SetupRoutes(cfg *config.Config, c *container.Container) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	router.Use(ErrorHandlerMiddleware())

	healthController := NewHealthController(c.DB())
	router.GET("/health", healthController.Check)
	router.GET("/metrics", MetricsHandler)

	authController := NewAuthController(c.UserService())
	articleController := NewArticleController(c.ArticleService(), c.ExportService())
	commentController := NewCommentController(c.CommentService())
	userController := NewUserController(c.UserService())
	chartController := NewChartController(c.ChartService(), c.StatsService())
	newsController := NewNewsController(c.NewsService())
	imageController := NewImageController(c.ImageService())

	v1 := router.Group("/api/v1")
	v1.POST("/login", authController.Login)

	authed := v1.Group("")
	authed.Use(AuthMiddleware(c.Tokens()))
	{
		articles := authed.Group("/articles")
		{
			articles.POST("", articleController.Create)
			articles.GET("/status/:status", articleController.List)
			articles.GET("/status/:status/export", articleController.ExportCSV)
			articles.GET("/:id", articleController.Show)
			articles.PUT("/:id", articleController.Resubmit)
			articles.POST("/:id/decision", articleController.Decide)
			articles.POST("/:id/approve", articleController.Approve)
			articles.POST("/:id/disapprove", articleController.Disapprove)
			articles.POST("/:id/comments", commentController.Create)
		}

		images := authed.Group("/images")
		{
			images.POST("", imageController.Upload)
			images.GET("/:filename", imageController.Get)
		}

		charts := authed.Group("/charts")
		{
			charts.GET("/reports", chartController.Reports)
			charts.GET("/line", chartController.LineData)
			charts.GET("/stats", chartController.Stats)
		}

		users := authed.Group("/users")
		{
			users.GET("", userController.List)
			users.POST("", userController.Create)
			users.PUT("/:id", userController.Update)
			users.DELETE("/:id", userController.Delete)
		}

		authed.GET("/news", newsController.List)
	}

	return router
}
