package router

import (
	"time"

	"github.com/gin-gonic/gin"

	authHandler "github.com/anesteasy/api/internal/handler/auth"
	feedbackHandler "github.com/anesteasy/api/internal/handler/feedback"
	goalHandler "github.com/anesteasy/api/internal/handler/goal"
	healthHandler "github.com/anesteasy/api/internal/handler/health"
	notificationHandler "github.com/anesteasy/api/internal/handler/notification"
	procedureHandler "github.com/anesteasy/api/internal/handler/procedure"
	prometheusHandler "github.com/anesteasy/api/internal/handler/prometheus"
	reportHandler "github.com/anesteasy/api/internal/handler/report"
	secretaryHandler "github.com/anesteasy/api/internal/handler/secretary"
	shiftHandler "github.com/anesteasy/api/internal/handler/shift"
	subscriptionHandler "github.com/anesteasy/api/internal/handler/subscription"
	"github.com/anesteasy/api/internal/middleware"
	"github.com/anesteasy/api/internal/model"
)

type Handlers struct {
	Health       *healthHandler.Handler
	Metrics      *prometheusHandler.Handler
	Auth         *authHandler.Handler
	Shift        *shiftHandler.Handler
	Secretary    *secretaryHandler.Handler
	Procedure    *procedureHandler.Handler
	Feedback     *feedbackHandler.Handler
	Notification *notificationHandler.Handler
	Goal         *goalHandler.Handler
	Subscription *subscriptionHandler.Handler
	Report       *reportHandler.Handler
}

type RouterConfig struct {
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	h      Handlers
}

func NewRouter(auth *middleware.AuthMiddleware, h Handlers, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine: engine,
		auth:   auth,
		h:      h,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(),
	)
	if h.Metrics != nil {
		engine.Use(h.Metrics.Middleware())
	}

	timeout := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeout.Duration = config.RequestTimeout
	}
	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodySize
	}
	engine.Use(
		middleware.Timeout(timeout),
		middleware.BodyLimit(maxBody),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

// Setup mounts every route. Access is layered: public, any session, then
// sessions whose owner has a trial or subscription. Secretaries pass the last
// gate and are held to their links by the services.
func (r *Router) Setup() {
	if r.h.Metrics != nil {
		r.engine.GET("/metrics", r.h.Metrics.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.h.Health.RegisterRoutes(api)
	r.h.Auth.RegisterRoutes(api)
	r.h.Feedback.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.h.Auth.RegisterAccountRoutes(protected)

	owners := protected.Group("")
	owners.Use(r.auth.RequireKind(model.PrincipalAnesthesiologist))
	r.h.Subscription.RegisterRoutes(owners)

	entitled := protected.Group("")
	entitled.Use(r.auth.RequireEntitlement())
	r.h.Procedure.RegisterRoutes(entitled)
	r.h.Notification.RegisterRoutes(entitled)

	entitledOwners := entitled.Group("")
	entitledOwners.Use(r.auth.RequireKind(model.PrincipalAnesthesiologist))
	r.h.Shift.RegisterRoutes(entitledOwners)
	r.h.Feedback.RegisterProcedureRoutes(entitledOwners)
	r.h.Goal.RegisterRoutes(entitledOwners)
	r.h.Report.RegisterRoutes(entitledOwners)

	secretaries := protected.Group("")
	secretaries.Use(r.auth.RequireKind(model.PrincipalSecretary))
	r.h.Secretary.RegisterRoutes(entitledOwners, secretaries)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
