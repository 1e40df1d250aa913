package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-insights/backend/analyzer"
	"github.com/seo-insights/backend/config"
	"github.com/seo-insights/backend/export"
	"github.com/seo-insights/backend/fetcher"
	"github.com/seo-insights/backend/history"
	"github.com/seo-insights/backend/keywords"
	"github.com/seo-insights/backend/logging"
	"github.com/seo-insights/backend/metrics"
	"github.com/seo-insights/backend/middleware"
	"github.com/seo-insights/backend/ranktracker"
	"github.com/seo-insights/backend/stats"
)

// server bundles the services behind the HTTP handlers.
type server struct {
	cfg      *config.Config
	seo      *analyzer.Analyzer
	research *keywords.Aggregator
	store    *history.Store
	storage  *stats.Storage
	usage    *logging.Statistics
	metrics  *metrics.Metrics
}

func newServer(cfg *config.Config, seo *analyzer.Analyzer, research *keywords.Aggregator, store *history.Store, storage *stats.Storage, usage *logging.Statistics, m *metrics.Metrics) *server {
	return &server{
		cfg:      cfg,
		seo:      seo,
		research: research,
		store:    store,
		storage:  storage,
		usage:    usage,
		metrics:  m,
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.NewRateLimiter(s.cfg.RateLimitPerSecond, s.cfg.RateLimitBurst).RateLimit())
	r.Use(middleware.UsageTracking(s.usage))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/analyze", s.analyze)
		api.GET("/history", s.listHistory)
		api.GET("/history/:id", s.getHistory)
		api.POST("/keywords/research", s.researchKeywords)
		api.POST("/keywords/track", s.trackKeyword)
		api.GET("/keywords/tracked", s.trackedKeywords)
		api.POST("/keywords/:id/check", s.checkRanking)
		api.GET("/export/:id", s.exportReport)
		api.GET("/statistics", s.statistics)
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (s *server) analyze(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}

	start := time.Now()
	report, err := s.seo.Analyze(c.Request.Context(), req.URL)
	s.usage.TrackAnalysis(req.URL, float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		s.writeFetchError(c, err)
		return
	}

	id, err := s.store.SaveAnalysis(report)
	if err != nil {
		slog.Warn("failed to persist analysis", "url", req.URL, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "report": report})
}

// writeFetchError maps the fetch error taxonomy onto HTTP statuses:
// invalid input 400, permanent upstream rejection 422, transient
// upstream failure 502.
func (s *server) writeFetchError(c *gin.Context, err error) {
	var ferr *fetcher.Error
	if !errors.As(err, &ferr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze URL"})
		return
	}

	switch {
	case ferr.Kind == fetcher.KindInvalidURL:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
	case !ferr.Transient():
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("The page could not be fetched: %s", ferr)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("The page is not reachable right now: %s", ferr)})
	}
}

func (s *server) researchKeywords(c *gin.Context) {
	var req struct {
		Keyword string `json:"keyword" binding:"required"`
		Limit   int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A seed keyword is required"})
		return
	}

	records, err := s.research.Research(c.Request.Context(), req.Keyword, req.Limit)
	s.usage.TrackResearch(req.Keyword, err != nil)
	if err != nil {
		var inputErr *keywords.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Keyword research is unavailable right now"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword": req.Keyword,
		"total":   len(records),
		"results": records,
	})
}

func (s *server) listHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	analyses, err := s.store.RecentAnalyses(limit)
	if err != nil {
		slog.Error("failed to list analyses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(analyses), "analyses": analyses})
}

func (s *server) getHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis id"})
		return
	}

	row, err := s.store.GetAnalysis(id)
	if err != nil {
		slog.Error("failed to load analysis", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *server) trackKeyword(c *gin.Context) {
	var req struct {
		Keyword string `json:"keyword" binding:"required"`
		Domain  string `json:"domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both keyword and domain are required"})
		return
	}

	tracked, err := s.store.TrackKeyword(req.Keyword, req.Domain)
	if err != nil {
		slog.Error("failed to track keyword", "keyword", req.Keyword, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track keyword"})
		return
	}

	position := ranktracker.Position(tracked.Keyword, tracked.Domain)
	sample, err := s.store.AddRanking(tracked.ID, position)
	if err != nil {
		slog.Error("failed to store ranking", "keywordId", tracked.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store ranking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keyword": tracked, "ranking": sample})
}

func (s *server) trackedKeywords(c *gin.Context) {
	tracked, err := s.store.TrackedKeywords()
	if err != nil {
		slog.Error("failed to list tracked keywords", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tracked keywords"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(tracked), "keywords": tracked})
}

func (s *server) checkRanking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid keyword id"})
		return
	}

	tracked, err := s.store.GetTrackedKeyword(id)
	if err != nil {
		slog.Error("failed to load tracked keyword", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tracked keyword"})
		return
	}
	if tracked == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tracked keyword not found"})
		return
	}

	position := ranktracker.Position(tracked.Keyword, tracked.Domain)
	sample, err := s.store.AddRanking(tracked.ID, position)
	if err != nil {
		slog.Error("failed to store ranking", "keywordId", tracked.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store ranking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keyword": tracked, "ranking": sample})
}

func (s *server) exportReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis id"})
		return
	}

	format := c.DefaultQuery("format", export.FormatCSV)
	contentType := export.ContentType(format)
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format"})
		return
	}

	row, err := s.store.GetAnalysis(id)
	if err != nil {
		slog.Error("failed to load analysis", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analysis"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	var report analyzer.Report
	if err := json.Unmarshal(row.Report, &report); err != nil {
		slog.Error("stored report is not decodable", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored report is corrupted"})
		return
	}

	filename := fmt.Sprintf("seo-report-%d.%s", id, format)
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.Write(c.Writer, format, &report); err != nil {
		slog.Error("failed to export report", "id", id, "format", format, "error", err)
	}
}

func (s *server) statistics(c *gin.Context) {
	snapshot := s.usage.Snapshot(s.cfg.DevMode)
	snapshot["monthly"] = s.storage.CurrentMonth()
	c.JSON(http.StatusOK, snapshot)
}
