// File: internal/services/search.go

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
	"github.com/XZXY-AI/reddit-crawler/internal/observability"
)

// SearchService runs a search against Reddit and enriches each submission with its top comments
type SearchService struct {
	clients ClientFactory
	pacer   Pacer
	logger  *slog.Logger
}

// NewSearchService creates a search service. A nil pacer disables pacing.
func NewSearchService(clients ClientFactory, pacer Pacer, logger *slog.Logger) *SearchService {
	if pacer == nil {
		pacer = NoPacing{}
	}
	return &SearchService{
		clients: clients,
		pacer:   pacer,
		logger:  logger,
	}
}

// Search returns at most req.Limit records in the order Reddit listed them.
// A failure to fetch one submission's comments leaves that record without
// comments; any other upstream error aborts the whole search.
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest, sessionToken string) ([]models.PostRecord, error) {
	req = req.Normalize()

	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	logger := observability.LoggerFromContext(ctx, s.logger)

	client, err := s.clients.NewClient(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, ErrClientInitFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrClientInitFailed, err)
	}

	logger.Info("searching reddit",
		"mode", req.Mode, "query", req.Query, "limit", req.Limit,
		"time_filter", req.TimeFilter, "sort", req.Sort, "authenticated", sessionToken != "")

	submissions, err := s.listing(ctx, client, req)
	if err != nil {
		return nil, err
	}
	if len(submissions) > req.Limit {
		submissions = submissions[:req.Limit]
	}

	records := make([]models.PostRecord, 0, len(submissions))
	for i, submission := range submissions {
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		comments, err := client.TopComments(ctx, submission.ID, models.MaxComments)
		if err != nil {
			logger.Warn("failed to fetch comments", "submission", submission.ID, "error", err)
			comments = nil
		}
		if len(comments) > models.MaxComments {
			comments = comments[:models.MaxComments]
		}

		records = append(records, models.NewPostRecord(submission, comments))
	}

	logger.Info("search completed", "mode", req.Mode, "query", req.Query, "results", len(records))
	return records, nil
}

func (s *SearchService) listing(ctx context.Context, client ContentClient, req models.SearchRequest) ([]models.Submission, error) {
	switch req.Mode {
	case models.ModeKeyword:
		return client.SearchAll(ctx, req.Query, req.Limit, req.TimeFilter, req.Sort)
	case models.ModeUser:
		return client.UserSubmissions(ctx, req.Query, req.Limit)
	case models.ModeSubreddit:
		return client.SubredditListing(ctx, req.Query, req.Sort, req.Limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
}
