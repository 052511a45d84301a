package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/deusflow/ainews/internal/app"
	"github.com/deusflow/ainews/internal/config"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/render"
	"github.com/deusflow/ainews/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("ainews", flag.ContinueOnError)
	category := fs.String("category", "", "news category: "+strings.Join(news.Categories, ", "))
	language := fs.String("language", "English", "output language")
	format := fs.String("format", "text", "output format: text, html or telegram")
	serve := fs.Bool("serve", false, "run the HTTP server instead of printing one digest")
	addr := fs.String("addr", "", "HTTP listen address (defaults to HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Load reads .env, which may set LOG_LEVEL or DEBUG.
	cfg, err := config.Load()
	logger.Init()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeFn, err := app.Build(ctx, cfg)
	defer closeFn()
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}

	if *serve {
		listen := cfg.HTTPAddr
		if *addr != "" {
			listen = *addr
		}
		if err := runServer(ctx, a, listen); err != nil {
			logger.Error("server error", "error", err)
			return 1
		}
		return 0
	}

	d := a.Digest(ctx, *category, *language)
	switch *format {
	case "html":
		fmt.Fprintln(stdout, d.Body())
	case "telegram":
		if err := a.Publish(ctx, d); err != nil {
			logger.Error("failed to publish digest", "error", err)
			return 1
		}
	default:
		if d.Message != "" {
			fmt.Fprint(stdout, render.TerminalMessage(d.Message))
			return 0
		}
		fmt.Fprint(stdout, render.Terminal(d.Category, d.Language, d.Result.Records))
	}
	return 0
}

func runServer(ctx context.Context, a *app.App, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a, logger.With("http")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
