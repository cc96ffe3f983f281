package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anchorsync/anchorsync/internal/infrastructure/configs"
	"github.com/anchorsync/anchorsync/internal/infrastructure/ratelimiter"
	healthHandler "github.com/anchorsync/anchorsync/internal/presentation/handler/health"
	roomsHandler "github.com/anchorsync/anchorsync/internal/presentation/handler/rooms"
	sessionsHandler "github.com/anchorsync/anchorsync/internal/presentation/handler/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Application struct {
	config          configs.Config
	sessionsHandler *sessionsHandler.Handler
	roomsHandler    *roomsHandler.Handler
	healthHandler   *healthHandler.Handler
	logger          *zap.SugaredLogger
	ratelimiter     *ratelimiter.FixedWindowRateLimiter
}

func NewApplication(
	config configs.Config,
	sessions *sessionsHandler.Handler,
	rooms *roomsHandler.Handler,
	health *healthHandler.Handler,
	logger *zap.SugaredLogger,
	rl *ratelimiter.FixedWindowRateLimiter,
) *Application {
	return &Application{
		config:          config,
		sessionsHandler: sessions,
		roomsHandler:    rooms,
		healthHandler:   health,
		logger:          logger,
		ratelimiter:     rl,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.enableCors)

	// The relay socket: no request timeout, no rate limiting on frames.
	r.Get("/ws", app.sessionsHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(app.rateLimiterMiddleware)
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/rooms/{roomId}", app.roomsHandler.GetRoomHandler)
		r.Get("/stats", app.roomsHandler.GetStatsHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	return otelhttp.NewHandler(r, "anchorsync")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
