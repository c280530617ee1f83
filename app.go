package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"aura_backend/api"
	"aura_backend/core"
	"aura_backend/db"
	"aura_backend/docparse"
	"aura_backend/extraction"
	"aura_backend/logging"
	"aura_backend/metrics"
	"aura_backend/shutdown"

	"go.uber.org/zap"
)

// App owns every long-lived component of the extraction service.
type App struct {
	config  *core.Config
	logger  *logging.Logger
	manager *shutdown.Manager

	database  *db.Database
	writer    *db.AsyncRunWriter
	collector *metrics.Collector
	parser    *docparse.Service
	server    *api.Server
}

// trackedParser refuses new parses once shutdown has begun and lets the
// shutdown manager drain the ones already running.
type trackedParser struct {
	manager *shutdown.Manager
	parser  api.Parser
}

func (p trackedParser) Parse(ctx context.Context, upload docparse.Upload) (*docparse.ParseResult, error) {
	var result *docparse.ParseResult
	err := p.manager.Track(ctx, "parse "+upload.Filename, func(ctx context.Context) error {
		var err error
		result, err = p.parser.Parse(ctx, upload)
		return err
	})
	return result, err
}

// NewApp builds the service from cfg. Cleanup steps for everything it opens
// are registered on manager, so the caller only has to call manager.Shutdown.
func NewApp(ctx context.Context, cfg *core.Config, logger *logging.Logger, manager *shutdown.Manager) (*App, error) {
	a := &App{config: cfg, logger: logger, manager: manager}
	manager.Register("logger", shutdown.PriorityLogs, func(context.Context) error {
		// stdout cannot be synced on some platforms; a flush failure is not a shutdown failure.
		_ = logger.Sync()
		return nil
	})

	pipeline, err := extraction.LoadPipeline(cfg.CatalogPath, cfg.RegexTimeout)
	if err != nil {
		return nil, fmt.Errorf("load field catalog: %w", err)
	}

	store := metrics.NewStore(metrics.StoreConfig{Version: version}, time.Now())
	a.collector = metrics.NewCollector(store)

	opts := []docparse.Option{
		docparse.WithLogger(logger),
		docparse.WithRecorder(a.collector),
	}

	var history api.HistoryReader
	if cfg.HistoryEnabled {
		repo, err := a.openHistory(ctx)
		if err != nil {
			return nil, err
		}
		history = repo
		opts = append(opts, docparse.WithHistory(a.writer))
	}

	parseConfig := docparse.DefaultConfig()
	parseConfig.MaxBytes = cfg.MaxUploadBytes
	a.parser = docparse.NewService(parseConfig, pipeline, opts...)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	serverConfig.ReadTimeout = cfg.ReadTimeout
	serverConfig.WriteTimeout = cfg.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	serverConfig.MaxUploadBytes = cfg.MaxUploadBytes
	serverConfig.DefaultLimit = cfg.HistoryLimit
	serverConfig.UploadsPerMinute = cfg.UploadsPerMinute
	serverConfig.Version = version

	a.server, err = api.NewServer(serverConfig, api.Dependencies{
		Parser:    trackedParser{manager: manager, parser: a.parser},
		History:   history,
		Collector: a.collector,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	manager.Register("http", shutdown.PriorityHTTP, a.server.Shutdown)
	if limiter := a.server.RateLimiter(); limiter != nil {
		limiter.StartCleanupTicker(manager.Context(), 5*time.Minute)
	}

	logger.Info("service configured",
		zap.String("config", cfg.String()),
		zap.Int("catalog_fields", len(pipeline.Catalog().Fields())),
		zap.String("version", version))
	return a, nil
}

// openHistory opens the database, prunes expired runs and starts the
// background writer.
func (a *App) openHistory(ctx context.Context) (*db.Repository, error) {
	database, err := db.Open(ctx, a.config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	a.database = database
	a.manager.Register("database", shutdown.PriorityStorage, func(context.Context) error {
		return database.Close()
	})

	repo := database.Repository()
	if days := a.config.HistoryRetentionDays; days > 0 {
		removed, err := repo.PruneRuns(ctx, days)
		if err != nil {
			a.logger.Warn("history pruning failed", zap.Error(err))
		} else if removed > 0 {
			a.logger.Infow("history pruned", "removed", removed, "retention_days", days)
		}
	}

	historyLog := a.logger.Named("history")
	a.writer = db.NewAsyncRunWriter(repo, db.AsyncRunWriterConfig{
		OnError: func(run db.ExtractionRun, err error) {
			historyLog.Warn("extraction run not recorded",
				zap.String("run_id", run.ID),
				zap.String("filename", run.Filename),
				zap.Error(err))
		},
	})
	a.writer.Start()
	a.manager.Register("history-writer", shutdown.PriorityWorkers, func(ctx context.Context) error {
		timeout := db.DefaultDrainTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if !a.writer.Stop(timeout) {
			return fmt.Errorf("%d runs not written", a.writer.Pending())
		}
		return nil
	})

	a.logger.Info("history enabled", zap.String("path", database.Path()))
	return repo, nil
}

// Serve accepts connections on ln until the server is shut down.
func (a *App) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

// Run listens on the configured address and serves until ctx is cancelled
// or the listener fails. It does not release resources; see NewApp.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.config.Addr(), err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
