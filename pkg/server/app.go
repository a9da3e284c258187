package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnshNarg/bit-coin/internal/domain/repository"
	"github.com/AnshNarg/bit-coin/internal/usecase"
	pkgch "github.com/AnshNarg/bit-coin/pkg/clickhouse"
	"github.com/AnshNarg/bit-coin/pkg/config"
	xhttp "github.com/AnshNarg/bit-coin/pkg/http"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	collector  *usecase.TickCollector
	handler    xhttp.Handler
	publisher  repository.SignalPublisher
	chClient   *pkgch.Client
	l          *applogger.Logger
	httpServer *xhttp.Server
	TickProc   *usecase.TickProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.TickCollector,
	handler xhttp.Handler,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		handler:   handler,
		publisher: publisher,
		chClient:  chClient,
		l:         l,
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

	// Live tick ingest is optional; forecasts serve from stored history either way.
	if a.cfg.MarketData.IngestEnabled && a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.l.Error("collector error", applogger.Error(err))
			}
		}()
		symbols := make([]string, 0, len(a.cfg.MarketData.Symbols))
		for _, s := range a.cfg.MarketData.Symbols {
			symbols = append(symbols, s.Symbol)
		}
		a.l.Info("collector started", applogger.Strings("symbols", symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.TickProc != nil {
		a.TickProc.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
