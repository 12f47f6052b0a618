package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EarningsPull/internal/domain/repository"
	"EarningsPull/internal/usecase"
	"EarningsPull/pkg/config"
	xhttp "EarningsPull/pkg/http"
	applogger "EarningsPull/pkg/logger"
)

// App encapsulates the entire application lifecycle: an initial refresh pass,
// an optional periodic refresh loop, and the HTTP query surface.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	info       *usecase.CompanyInfo
	refresher  *usecase.Refresher
	store      repository.SnapshotStore
	sink       repository.ReactionSink
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	info *usecase.CompanyInfo,
	refresher *usecase.Refresher,
	store repository.SnapshotStore,
	sink repository.ReactionSink,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		info:      info,
		refresher: refresher,
		store:     store,
		sink:      sink,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// first pass in the background so the query surface serves the loaded
	// snapshot immediately
	go a.refresh(ctx)

	if a.cfg.Refresh.Interval > 0 {
		go a.refreshLoop(ctx)
		a.log.Info("periodic refresh enabled",
			applogger.Duration("interval", a.cfg.Refresh.Interval))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Info("shutting down", applogger.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.sink.Close(); err != nil {
		a.log.Error("sink close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("snapshot store close error", applogger.Error(err))
	}
	return nil
}

func (a *App) refresh(ctx context.Context) {
	unlock := a.info.Lock()
	defer unlock()
	if err := a.refresher.Refresh(ctx, a.info.Snapshot()); err != nil {
		a.log.Error("refresh pass failed", applogger.Error(err))
	}
}

func (a *App) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Refresh.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh(ctx)
		}
	}
}
