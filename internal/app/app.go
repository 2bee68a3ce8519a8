package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/XZXY-AI/reddit-crawler/api"
	"github.com/XZXY-AI/reddit-crawler/internal/config"
	"github.com/XZXY-AI/reddit-crawler/internal/models"
	"github.com/XZXY-AI/reddit-crawler/internal/services"
	"github.com/XZXY-AI/reddit-crawler/internal/session"
	"github.com/XZXY-AI/reddit-crawler/internal/snapshot"
)

// App holds the wired services shared by the HTTP server and the CLI.
// The caller must call Close when done.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	sessions  session.Store
	auth      *services.RedditAuth
	search    *services.SearchService
	snapshots *snapshot.Writer

	closers []func() error
}

// New builds every dependency selected by cfg
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	sessions, err := a.newSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = sessions

	blobs, err := a.newBlobStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.snapshots = snapshot.NewWriter(blobs, snapshot.RealClock{})

	a.auth = services.NewRedditAuth(cfg.Reddit, services.DefaultEndpoints(), nil, logger)

	var pacer services.Pacer = services.NoPacing{}
	if cfg.PacingDelay > 0 {
		pacer = services.FixedPacer{Delay: cfg.PacingDelay}
	}
	a.search = services.NewSearchService(services.NewRedditClientFactory(a.auth), pacer, logger)

	return a, nil
}

func (a *App) newSessionStore(ctx context.Context) (session.Store, error) {
	cfg := a.cfg.Session

	switch cfg.Backend {
	case "redis":
		client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return session.NewRedisStore(client, cfg.TTL), nil
	default:
		store := session.NewMemoryStore(cfg.TTL)
		a.closers = append(a.closers, store.Close)
		a.logger.Info("using in-memory session store", "ttl", cfg.TTL)
		return store, nil
	}
}

func (a *App) newBlobStore(ctx context.Context) (snapshot.BlobStore, error) {
	cfg := a.cfg.Snapshot

	switch cfg.Backend {
	case "s3":
		store, err := snapshot.NewS3StoreFromEnv(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		a.logger.Info("writing snapshots to s3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return store, nil
	default:
		store, err := snapshot.NewFileSystemStore(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		a.logger.Info("writing snapshots to disk", "root", store.Root())
		return store, nil
	}
}

// Router returns the HTTP handler for the server
func (a *App) Router() *gin.Engine {
	return api.NewRouter(api.Dependencies{
		Config:       a.cfg,
		SessionStore: a.sessions,
		Auth:         a.auth,
		Searcher:     a.search,
		Snapshots:    a.snapshots,
		Logger:       a.logger,
	})
}

// Search runs one search with the app-only token and writes its snapshot
func (a *App) Search(ctx context.Context, req models.SearchRequest) (string, int, error) {
	records, err := a.search.Search(ctx, req, "")
	if err != nil {
		return "", 0, err
	}
	location, err := a.snapshots.Write(ctx, records, req)
	if err != nil {
		return "", 0, err
	}
	return location, len(records), nil
}

// Close releases the session store and its connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing app: %w", err)
	}
	return nil
}
