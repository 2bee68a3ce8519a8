// File: api/handlers/search.go

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
	"github.com/XZXY-AI/reddit-crawler/internal/observability"
	"github.com/XZXY-AI/reddit-crawler/internal/services"
	"github.com/XZXY-AI/reddit-crawler/internal/session"
)

// Searcher runs one enriched Reddit search
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest, sessionToken string) ([]models.PostRecord, error)
}

// SnapshotWriter persists search results and returns where they went
type SnapshotWriter interface {
	Write(ctx context.Context, records []models.PostRecord, req models.SearchRequest) (string, error)
}

type SearchHandler struct {
	searcher  Searcher
	snapshots SnapshotWriter
	logger    *slog.Logger
}

func NewSearchHandler(searcher Searcher, snapshots SnapshotWriter, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	logger := observability.LoggerFromContext(c.Request.Context(), h.logger)

	// a client disconnect does not abort a search already in progress
	ctx := context.WithoutCancel(c.Request.Context())

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var token string
	if sess, ok := session.FromContext(c); ok {
		token, _ = sess.Get(session.KeyAccessToken)
	}

	startTime := time.Now()

	records, err := h.searcher.Search(ctx, req, token)
	if err != nil {
		logger.Error("search failed", "mode", req.Mode, "query", req.Query, "error", err)
		switch {
		case errors.Is(err, services.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的搜索模式"})
		case errors.Is(err, services.ErrEmptyQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Search query cannot be empty"})
		case errors.Is(err, services.ErrClientInitFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reddit初始化失败"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	location, err := h.snapshots.Write(ctx, records, req)
	if err != nil {
		logger.Error("failed to write snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logger.Info("search request served",
		"mode", req.Mode, "query", req.Query, "results", len(records),
		"elapsed", time.Since(startTime), "filepath", location)

	if records == nil {
		records = []models.PostRecord{}
	}
	c.JSON(http.StatusOK, models.SearchResponse{
		Success:  true,
		Data:     records,
		Total:    len(records),
		Filepath: location,
	})
}
