// Package server initializes and runs the engine process. It opens the
// store, builds the engine and serves Prometheus metrics until the process
// is asked to stop, then closes the store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/admin"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/metrics"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/services"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  *store.Store

	Engine *services.Engine
	Admin  *admin.Admin
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	st, err := store.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	engine := services.NewEngine(st.DB, st.Manager, c,
		services.WithLogger(logger),
		services.WithMetrics(metrics.Default()),
	)
	adm := admin.New(engine, admin.NewStaticAuthorizer(c.AdminIDs), logger)

	return &App{config: c, logger: logger, store: st, Engine: engine, Admin: adm}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.store.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc, ln net.Listener) {
	srv := &http.Server{Handler: app.handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	app.logger.Info(ctx, "metrics endpoint listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.MetricsAddr != "" {
		ln, err := net.Listen("tcp", app.config.MetricsAddr)
		if err != nil {
			_ = app.store.Close()
			return fmt.Errorf("metrics listen: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc, ln)
		}()
	}

	<-ctx.Done()
	wg.Wait()

	app.logger.Info(context.Background(), "Stopping app...")
	return app.store.Close()
}
