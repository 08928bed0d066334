package main

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bizdesk/internal/cli"
	"bizdesk/internal/collection"
	"bizdesk/internal/config"
	"bizdesk/internal/logger"
	"bizdesk/internal/restclient"
	"bizdesk/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so they never interleave with table output.
	slog.SetDefault(logger.New(os.Stderr, cfg.LogFormat, cfg.LogLevel))

	upstreams, err := restclient.NewSet(cfg.Upstreams(), &http.Client{Timeout: cfg.UpstreamTimeout})
	if err != nil {
		slog.Error("failed to configure upstreams", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth := service.NewAuthService(upstreams[collection.ServiceAuth], cfg.AuthLoginPath)
	app := cli.NewApp(collection.DefaultCatalog(), upstreams, auth, os.Stdout)
	app.Run(ctx, bufio.NewScanner(os.Stdin))
}
