package http

import (
	"net/http"

	"github.com/geocoder89/fitlog/internal/http/handlers"
	"github.com/geocoder89/fitlog/internal/http/middlewares"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Env    string
	Driver string

	Auth     handlers.Authenticator
	Verifier middlewares.TokenVerifier
	Workouts *handlers.WorkoutsHandler
	Ping     handlers.Pinger

	// ShuttingDown flips /readyz to 503 during graceful shutdown.
	ShuttingDown func() bool

	// Limiter guards /register and /login; nil disables it.
	Limiter *middlewares.RateLimiter

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, _ any) {
		handlers.RespondError(ctx, http.StatusInternalServerError, handlers.CodeInternal, "Internal server error", nil)
	}))
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))

	// health
	h := handlers.NewHealthHandler(d.Ping, d.Env, d.Driver).WithShutdownSignal(d.ShuttingDown)
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// auth
	authHandler := handlers.NewAuthHandler(d.Auth)
	body := []gin.HandlerFunc{middlewares.RequireJSON(), middlewares.MaxBodyBytes(d.MaxBodyBytes)}

	public := r.Group("")
	if d.Limiter != nil {
		public.Use(d.Limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	}
	public.POST("/register", append(body, authHandler.Register)...)
	public.POST("/login", append(body, authHandler.Login)...)

	requireAuth := middlewares.NewAuthMiddleware(d.Verifier).RequireAuth()
	r.GET("/protected", requireAuth, authHandler.Protected)

	// workouts
	w := r.Group("/workouts", requireAuth)
	{
		w.POST("", append(body, d.Workouts.Create)...)
		w.GET("", d.Workouts.List)
		w.GET("/stats", d.Workouts.Stats)
		w.GET("/:id", d.Workouts.Get)
		w.PUT("/:id", append(body, d.Workouts.Replace)...)
		w.PATCH("/:id", append(body, d.Workouts.Patch)...)
		w.DELETE("/:id", d.Workouts.Delete)
	}

	r.NoRoute(handlers.NotFoundRoute)

	return r
}
