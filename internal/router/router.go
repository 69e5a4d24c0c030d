package router

import (
	"github.com/gin-gonic/gin"

	"adpnorm/internal/handler"
	"adpnorm/internal/middleware"
	"adpnorm/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	jobH *handler.JobHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/token", authH.Token)

	jobs := v1.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware(authSvc))
	jobs.POST("", jobH.Submit)
	jobs.GET("", jobH.List)
	jobs.GET("/:id", jobH.Get)
	jobs.GET("/:id/fields", jobH.Fields)
	jobs.GET("/:id/pages/:page_id/layout", jobH.Layout)
	jobs.GET("/:id/export/:format", jobH.Export)

	return r
}
