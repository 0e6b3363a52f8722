package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/fitlog/internal/auth"
	"github.com/geocoder89/fitlog/internal/config"
	httpx "github.com/geocoder89/fitlog/internal/http"
	"github.com/geocoder89/fitlog/internal/http/handlers"
	"github.com/geocoder89/fitlog/internal/http/middlewares"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/geocoder89/fitlog/internal/redisclient"
	"github.com/geocoder89/fitlog/internal/security"
	"github.com/geocoder89/fitlog/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, observability.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	hasher := security.NewHasher(cfg.BcryptCost)

	st, err := openStores(ctx, cfg, hasher, prom)
	if err != nil {
		log.Error("database connection failed", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	log.Info("database connected", "driver", cfg.DBDriver)

	// rate limit counters live in redis when configured, in process otherwise
	var counter middlewares.Counter = middlewares.NewMemoryCounter()
	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unreachable, rate limiting falls back to memory", "addr", cfg.RedisAddr, "err", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			counter = rdb
		}
	}

	authSvc := service.NewAuthService(
		st.users,
		hasher,
		auth.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		service.WithGenericLoginErrors(cfg.GenericLoginErrors),
		service.WithMetrics(prom),
	)

	var shuttingDown atomic.Bool

	// set up routers
	router := httpx.NewRouter(httpx.Deps{
		Env:            cfg.Env,
		Driver:         cfg.DBDriver,
		Auth:           authSvc,
		Verifier:       authSvc,
		Workouts:       handlers.NewWorkoutsHandler(st.workouts),
		Ping:           st.ping,
		ShuttingDown:   shuttingDown.Load,
		Limiter:        middlewares.NewRateLimiter(counter, cfg.AuthRateLimit, cfg.AuthRateWindow, prom),
		Prom:           prom,
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DBDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	shuttingDown.Store(true)

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		st.close(ctx)

		if rdb != nil {
			_ = rdb.Close()
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
