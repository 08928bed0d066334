package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bizdesk/internal/collection"
	"bizdesk/internal/config"
	"bizdesk/internal/event"
	"bizdesk/internal/handler"
	"bizdesk/internal/restclient"
	"bizdesk/internal/router"
	"bizdesk/internal/service"
	"bizdesk/internal/websocket"
)

type App struct {
	cfg          *config.Config
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	upstreams, err := restclient.NewSet(cfg.Upstreams(), httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to configure upstreams: %w", err)
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus, cfg.CORSOrigins)

	viewService := service.NewViewService(collection.DefaultCatalog(), upstreams, bus, cfg.ViewTTL)
	authService := service.NewAuthService(upstreams[collection.ServiceAuth], cfg.AuthLoginPath)

	appRouter := router.New(cfg, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Collections:   handler.NewCollectionHandler(viewService),
		Views:         handler.NewViewHandler(viewService),
		Notifications: handler.NewNotificationHandler(hub),
		Health:        handler.NewHealthHandler(viewService, hub),
		Docs:          handler.NewDocsHandler(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		cfg:    cfg,
		server: server,
		cleanupFuncs: []func(){
			viewService.Shutdown,
		},
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until SIGINT or SIGTERM, then unmounts every view and drains
// open requests.
func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("console starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.cleanup()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("console stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
