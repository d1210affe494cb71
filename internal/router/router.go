package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/handler"
	"github.com/noah-isme/faculty-portal-api/internal/middleware"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/internal/service"
	"github.com/noah-isme/faculty-portal-api/pkg/config"
	"github.com/noah-isme/faculty-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-portal-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Account *handler.AccountHandler
	Faculty *handler.FacultyHandler
	Leave   *handler.LeaveHandler
	Task    *handler.TaskHandler
	Report  *handler.ReportHandler
	Metrics *handler.MetricsHandler
}

// Deps carries everything the router needs besides the handlers.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Verifier middleware.TokenVerifier
	Limiter  middleware.Limiter
	Metrics  *service.MetricsService
}

// Setup builds the gin engine with global middleware, operational routes and the API under cfg.APIPrefix.
func Setup(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(corsmiddleware.DefaultPolicy(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge)))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.RequestMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	window := cfg.RateLimit.Window
	if window <= 0 {
		window = time.Minute
	}
	limit := middleware.RateLimit(deps.Limiter, cfg.RateLimit.AuthRequests, window, log)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.Use(limit)
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWT(deps.Verifier))

		admin := authorized.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/users", h.Account.List)
			admin.POST("/users", h.Account.Create)
			admin.PUT("/users/:id", h.Account.Update)
			admin.DELETE("/users/:id", h.Account.Delete)
			admin.PUT("/users/:id/approve", h.Account.Approve)
			admin.PUT("/users/:id/disapprove", h.Account.Disapprove)
			admin.GET("/leaves", h.Leave.All)
			admin.PUT("/leaves/:id", h.Leave.Review)
			admin.POST("/reports", h.Report.System)
		}

		faculty := authorized.Group("/faculty")
		{
			faculty.GET("/profile", h.Faculty.Profile)
			faculty.PUT("/profile", h.Faculty.UpdateProfile)
			faculty.POST("/leave", h.Leave.Apply)
			faculty.GET("/leaves", h.Leave.Mine)
			faculty.GET("/all", h.Faculty.Directory)
			faculty.GET("/reports/:userId",
				middleware.RequireSelfOr("userId", models.Role.CanViewFacultyReports, "not authorized to view this report"),
				h.Report.Faculty)
		}

		tasks := authorized.Group("/tasks")
		{
			tasks.GET("", h.Task.List)
			tasks.POST("", h.Task.Create)
			tasks.PUT("/:id", h.Task.Update)
		}
	}

	return r
}
