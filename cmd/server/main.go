package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/anchorsync/anchorsync/internal/infrastructure/configs"
	"github.com/anchorsync/anchorsync/internal/infrastructure/ratelimiter"
	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"github.com/anchorsync/anchorsync/internal/infrastructure/tracing"
	"github.com/anchorsync/anchorsync/internal/infrastructure/ws"
	"github.com/anchorsync/anchorsync/internal/presentation/api"
	"github.com/anchorsync/anchorsync/internal/presentation/handler/health"
	"github.com/anchorsync/anchorsync/internal/presentation/handler/rooms"
	"github.com/anchorsync/anchorsync/internal/presentation/handler/sessions"
	"go.uber.org/zap"
)

const serviceName = "anchorsync"

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	store := session.NewStore()
	relay := ws.NewRelay(store, logger)

	sessionsHandler := sessions.NewHandler(relay, cfg.Relay, cfg.HTTP.AllowedOrigins, logger)
	roomsHandler := rooms.NewHandler(store)
	healthHandler := health.NewHandler()

	rl := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rl.Close()

	app := api.NewApplication(*cfg, sessionsHandler, roomsHandler, healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
