// Package app initializes and holds long-lived application services, acting
// as the composition root for the enrichment service.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/api"
	"github.com/refsignal/tourney-enrich/internal/clock/system"
	"github.com/refsignal/tourney-enrich/internal/config"
	"github.com/refsignal/tourney-enrich/internal/crawl"
	"github.com/refsignal/tourney-enrich/internal/enrich"
	collyfetcher "github.com/refsignal/tourney-enrich/internal/fetcher/colly"
	"github.com/refsignal/tourney-enrich/internal/hash/sha256"
	"github.com/refsignal/tourney-enrich/internal/id/uuid"
	"github.com/refsignal/tourney-enrich/internal/logging"
	"github.com/refsignal/tourney-enrich/internal/metrics"
	pubsubpublisher "github.com/refsignal/tourney-enrich/internal/publisher/pubsub"
	"github.com/refsignal/tourney-enrich/internal/ratelimit"
	"github.com/refsignal/tourney-enrich/internal/review"
	"github.com/refsignal/tourney-enrich/internal/scheduler"
	"github.com/refsignal/tourney-enrich/internal/storage/gcs"
	"github.com/refsignal/tourney-enrich/internal/storage/local"
	memoryblob "github.com/refsignal/tourney-enrich/internal/storage/memory"
	memorystore "github.com/refsignal/tourney-enrich/internal/store/memory"
	"github.com/refsignal/tourney-enrich/internal/store/postgres"
)

// App holds all shared, long-lived services. It is initialized once at
// startup and handed to the commands that need it.
type App struct {
	Cfg       config.Config
	Logger    *zap.Logger
	Jobs      enrich.JobStore
	Tourneys  enrich.TournamentStore
	Cands     enrich.CandidateStore
	Scheduler *scheduler.Scheduler
	Merger    *review.Merger
	Server    *api.Server

	closers []func()
}

// New builds the full service graph from config. It fails fast when a
// critical dependency (database, bucket, pubsub topic) cannot be initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	a := &App{Cfg: cfg, Logger: logger}

	if err := a.initStores(ctx); err != nil {
		return nil, err
	}

	blobs, err := a.initBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := a.initPublisher(ctx)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{MinInterval: cfg.MinInterval()})
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawl.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		MaxBytes:  cfg.Crawl.MaxBodyBytes,
	}, limiter, logger)

	orchestrator := crawl.New(fetcher, blobs, sha256.New(), crawl.Config{
		PageBudget:    cfg.Crawl.PageBudget,
		FrontierSlack: cfg.Crawl.FrontierSlack,
	}, logger)

	clk := system.New()
	a.Scheduler = scheduler.New(
		a.Jobs, a.Tourneys, a.Cands,
		orchestrator, publisher, clk, uuid.NewUUIDGenerator(),
		scheduler.Config{Topic: cfg.PubSub.TopicName},
		logger,
	)
	a.Merger = review.NewMerger(a.Cands, a.Tourneys, clk, logger)
	a.Server = api.NewServer(a.Jobs, a.Cands, a.Tourneys, a.Scheduler, a.Merger, cfg, logger)

	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	if a.Cfg.DB.DSN == "" {
		a.Logger.Info("no database configured, using in-memory stores")
		a.Jobs = memorystore.NewJobStore()
		a.Tourneys = memorystore.NewTournamentStore()
		a.Cands = memorystore.NewCandidateStore()
		return nil
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:      a.Cfg.DB.DSN,
		MaxConns: int32(a.Cfg.DB.MaxConns),
		MinConns: int32(a.Cfg.DB.MinConns),
	})
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	jobs, err := postgres.NewJobStore(pool)
	if err != nil {
		return err
	}
	tourneys, err := postgres.NewTournamentStore(pool)
	if err != nil {
		return err
	}
	cands, err := postgres.NewCandidateStore(pool)
	if err != nil {
		return err
	}
	a.Jobs, a.Tourneys, a.Cands = jobs, tourneys, cands
	return nil
}

func (a *App) initBlobStore(ctx context.Context) (enrich.BlobStore, error) {
	switch a.Cfg.Storage.Backend {
	case "local":
		return local.New(local.Config{BaseDir: a.Cfg.Storage.LocalDir})
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.closers = append(a.closers, func() {
			if cerr := client.Close(); cerr != nil {
				a.Logger.Warn("close gcs client", zap.Error(cerr))
			}
		})
		return gcs.New(client, gcs.Config{Bucket: a.Cfg.Storage.GCSBucket})
	default:
		return memoryblob.NewBlobStore(), nil
	}
}

func (a *App) initPublisher(ctx context.Context) (enrich.Publisher, error) {
	if a.Cfg.PubSub.ProjectID == "" || a.Cfg.PubSub.TopicName == "" {
		return nil, nil
	}
	client, err := pubsub.NewClient(ctx, a.Cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("init pubsub client: %w", err)
	}
	topic := client.Topic(a.Cfg.PubSub.TopicName)
	a.closers = append(a.closers, func() {
		topic.Stop()
		if cerr := client.Close(); cerr != nil {
			a.Logger.Warn("close pubsub client", zap.Error(cerr))
		}
	})
	return pubsubpublisher.New(topic), nil
}

// Close releases held resources in reverse order of construction.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
