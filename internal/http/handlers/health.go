package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the configured store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping   Pinger
	env    string
	driver string
	now    func() time.Time

	shuttingDown func() bool
}

func NewHealthHandler(ping Pinger, env, driver string) *HealthHandler {
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return &HealthHandler{
		ping:         ping,
		env:          env,
		driver:       driver,
		now:          time.Now,
		shuttingDown: func() bool { return false },
	}
}

// WithShutdownSignal makes Readyz fail once isShuttingDown reports true, so
// load balancers stop routing before the listener closes.
func (h *HealthHandler) WithShutdownSignal(isShuttingDown func() bool) *HealthHandler {
	if isShuttingDown != nil {
		h.shuttingDown = isShuttingDown
	}
	return h
}

func (h *HealthHandler) database(ctx *gin.Context) (gin.H, bool) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
	defer cancel()

	if err := h.ping(cctx); err != nil {
		return gin.H{"status": "disconnected", "driver": h.driver, "error": "Database connection failed"}, false
	}
	return gin.H{"status": "connected", "driver": h.driver}, true
}

// Root is the service banner with the endpoint map.
func (h *HealthHandler) Root(ctx *gin.Context) {
	db, ok := h.database(ctx)

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{
		"success":     ok,
		"message":     "Fitlog API",
		"description": "Workout tracking API with JWT authentication",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"database":    db,
		"endpoints": gin.H{
			"health":    "/health",
			"register":  "POST /register",
			"login":     "POST /login",
			"protected": "GET /protected (requires token)",
			"workouts": gin.H{
				"create": "POST /workouts (requires token)",
				"list":   "GET /workouts (requires token)",
				"get":    "GET /workouts/:id (requires token)",
				"update": "PUT /workouts/:id (requires token)",
				"patch":  "PATCH /workouts/:id (requires token)",
				"delete": "DELETE /workouts/:id (requires token)",
				"stats":  "GET /workouts/stats (requires token)",
			},
		},
	})
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	db, ok := h.database(ctx)

	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"success":     false,
			"message":     "Service unavailable",
			"timestamp":   h.now().UTC().Format(time.RFC3339),
			"environment": h.env,
			"database":    db,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Server is running!",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"database":    db,
	})
}

// Healthz is liveness only; it never touches the store.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.shuttingDown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	if _, ok := h.database(ctx); !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
