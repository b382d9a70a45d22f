package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcafe/smartcafe-client/internal/kitchen"
	"github.com/smartcafe/smartcafe-client/internal/view"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/feed"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "kitchen"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "kitchen",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	apiClient, err := api.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	feedMetrics := metrics.NewFeedMetrics(registry)

	terminal := view.NewTerminal(os.Stdout)

	board, err := kitchen.NewBoard(kitchen.BoardParams{
		Orders:    apiClient,
		Scheduler: kitchen.NewScheduler(),
		Alerter:   terminal,
		Listener:  terminal,
		Metrics:   feedMetrics,
		Logger:    logg,
		Config:    cfg.Kitchen,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create board", err)
		os.Exit(1)
	}

	transport, err := feed.NewTransport(cfg.Feed, cfg.GCP)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed transport", err)
		os.Exit(1)
	}

	feedClient, err := feed.New(feed.Options{
		Transport:      transport,
		ReconnectDelay: cfg.Feed.ReconnectDelay,
		Logger:         logg,
		Metrics:        feedMetrics,
		OnOrder:        board.Apply,
		OnState:        board.SetConnection,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create feed client", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A seed failure is not fatal; the feed backfills the board as
	// snapshots arrive.
	if err := board.Seed(ctx); err != nil {
		logg.Warn(ctx, "failed to seed board from active orders: "+err.Error())
	}

	opsServer := newOpsServer(cfg.Kitchen.OpsPort, registry)
	go func() {
		logg.Info(ctx, "ops server listening on :"+cfg.Kitchen.OpsPort)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "ops server failed", err)
		}
	}()

	go func() {
		if err := feedClient.Run(ctx); err != nil {
			logg.Error(ctx, "feed client stopped", err)
		}
	}()

	go commandLoop(ctx, board, logg)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "ops server shutdown failed", err)
	}
}

func newOpsServer(port string, registry *prometheus.Registry) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{Addr: ":" + port, Handler: router}
}

// commandLoop reads order IDs from stdin and requests the next status for
// each. The board itself only moves when the change echoes over the feed.
func commandLoop(ctx context.Context, board *kitchen.Board, logg *logger.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Enter an order id to advance its status (Ctrl+C to quit)")
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		orderID, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			fmt.Printf("not an order id: %s\n", input)
			continue
		}
		if err := board.RequestStatusChange(ctx, orderID); err != nil {
			fmt.Printf("could not advance order #%d: %v\n", orderID, err)
			logg.Warn(ctx, "status change failed: "+err.Error())
		}
	}
}
