package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-insights/backend/analyzer"
	"github.com/seo-insights/backend/config"
	"github.com/seo-insights/backend/fetcher"
	"github.com/seo-insights/backend/history"
	"github.com/seo-insights/backend/keywords"
	"github.com/seo-insights/backend/logging"
	"github.com/seo-insights/backend/metrics"
	"github.com/seo-insights/backend/stats"
)

const (
	serviceName    = "seo-insights"
	serviceVersion = "1.2.0"
)

// Keyword data tiers in descending quality. The suggest provider and
// the deterministic estimator rank below these inside the keywords
// package.
const (
	premiumProvider  = "premium"
	premiumQuality   = 3
	freemiumProvider = "freemium"
	freemiumQuality  = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	m := metrics.New()

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open stats storage", "error", err)
		os.Exit(1)
	}
	usage := logging.NewStatistics(filepath.Join(cfg.DataDir, "statistics.json"))

	store, err := history.NewStore(cfg.Database)
	if err != nil {
		slog.Error("failed to open history database", "error", err)
		os.Exit(1)
	}

	pageFetcher := fetcher.New(cfg, m)
	seo := analyzer.New(pageFetcher, cfg, storage, m)

	budget := keywords.NewRateBudget()
	budget.Configure(keywords.SourceSuggest, cfg.SuggestMaxCalls, cfg.SuggestWindow)
	budget.Configure(premiumProvider, cfg.PremiumMaxCalls, cfg.PremiumWindow)
	budget.Configure(freemiumProvider, cfg.FreemiumMaxCalls, cfg.FreemiumWindow)

	suggest := keywords.NewSuggestClient(cfg.SuggestBaseURL, cfg.SuggestTimeout)
	research := keywords.NewAggregator(cfg, budget, suggest, storage, m,
		keywords.NewDataAPIProvider(premiumProvider, premiumQuality, cfg.PremiumAPIBaseURL, cfg.PremiumAPIKey, budget, cfg.ProviderTimeout, m),
		keywords.NewDataAPIProvider(freemiumProvider, freemiumQuality, cfg.FreemiumAPIBaseURL, cfg.FreemiumAPIKey, budget, cfg.ProviderTimeout, m),
		keywords.NewSuggestProvider(suggest, budget, m),
	)

	srv := newServer(cfg, seo, research, store, storage, usage, m)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "port", cfg.Port, "devMode", cfg.DevMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown incomplete", "error", err)
	}
	if err := storage.Shutdown(); err != nil {
		slog.Warn("failed to flush monthly stats", "error", err)
	}
	if err := usage.Save(); err != nil {
		slog.Warn("failed to flush usage statistics", "error", err)
	}
	if err := store.Close(); err != nil {
		slog.Warn("failed to close history database", "error", err)
	}
}
