package handlers

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/feria-api/docs" // Swagger docs
	"github.com/sjperalta/feria-api/internal/config"
	"github.com/sjperalta/feria-api/internal/middleware"
)

// SetupRouter builds the Gin engine with global middleware and all routes
func SetupRouter(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Cashiers and admins move money
			finance := protected.Group("")
			finance.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleFinance))
			{
				finance.POST("/installments/:installment_id/payments", h.Settlement.RecordPayment)
				finance.PATCH("/installments/:installment_id/due_date", h.Settlement.Reschedule)
				finance.POST("/purchases", h.Purchase.Create)
			}

			// Everyone in the back office can read
			readers := protected.Group("")
			readers.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleFinance, middleware.RoleAuditor))
			{
				readers.GET("/purchases/:purchase_id", h.Purchase.Show)
				readers.GET("/purchases/:purchase_id/statement", h.Purchase.Statement)
				readers.GET("/audits", h.Audit.Index)
				readers.GET("/audits/export", h.Audit.Export)
			}

			admin := protected.Group("/jobs")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.GET("/status", h.Job.Status)
				admin.POST("/:name/run", h.Job.Run)
			}
		}
	}

	return router
}
