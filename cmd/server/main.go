// File: cmd/server/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/XZXY-AI/reddit-crawler/internal/app"
	"github.com/XZXY-AI/reddit-crawler/internal/config"
	"github.com/XZXY-AI/reddit-crawler/internal/models"
	"github.com/XZXY-AI/reddit-crawler/internal/observability"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the config and wires the application. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.App, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return nil, nil, nil, err
	}

	logger := observability.NewLogger(cfg.LogLevel)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return nil, nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, cfg, logger, nil
}

var rootCmd = &cobra.Command{
	Use:          "reddit-crawler",
	Short:        "Search Reddit and store the results as dated JSON snapshots",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search with the app-only token and write a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")
		timeFilter, _ := cmd.Flags().GetString("time-filter")
		sort, _ := cmd.Flags().GetString("sort")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, _, _, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		location, total, err := a.Search(ctx, models.SearchRequest{
			Mode:       models.Mode(mode),
			Query:      query,
			Limit:      limit,
			TimeFilter: timeFilter,
			Sort:       sort,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d posts to %s\n", total, location)
		return nil
	},
}

func serve(parent context.Context) error {
	// Set up context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cfg, logger, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: a.Router(),
	}

	// Start server in a goroutine so it doesn't block shutdown
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("failed to start server", "error", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server gracefully stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("mode", "m", string(models.ModeKeyword), "Search mode: keyword, user or subreddit")
	searchCmd.Flags().StringP("query", "q", "", "Keyword, user name or subreddit name")
	searchCmd.Flags().IntP("limit", "n", models.DefaultLimit, "Maximum number of posts")
	searchCmd.Flags().StringP("time-filter", "t", models.DefaultTimeFilter, "Time filter for keyword searches")
	searchCmd.Flags().StringP("sort", "s", models.DefaultSort, "Sort order")
	_ = searchCmd.MarkFlagRequired("query")
}
