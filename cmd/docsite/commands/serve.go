package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/events"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/scheduler"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/httpserver"
	"git.home.luguber.info/inful/docsite/internal/version"
	"git.home.luguber.info/inful/docsite/internal/watcher"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address, overrides server.address"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Address = s.Addr
	}
	g.setup(cfg, root)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, g.Logger)
}

// RunServe serves until ctx is canceled, then shuts down gracefully.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Starting docsite",
		slog.String("version", version.Version),
		logfields.DocsDir(cfg.Content.DocsDir))

	provider, err := newProvider(cfg, cacheEnumeration(cfg), logger)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	indexBuilder := search.NewBuilder(cfg.Search.MaxContentRunes)
	deps := httpserver.Dependencies{
		Provider:       provider,
		Manifest:       manifest.NewBuilder(),
		SearchIndex:    indexBuilder,
		Recorder:       recorder,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}

	var store *search.Store
	if cfg.Search.Enabled {
		store, err = search.OpenStore(cfg.Search.Database)
		if err != nil {
			return fmt.Errorf("open search store: %w", err)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("Failed to close search store", logfields.Error(cerr))
			}
		}()
		n, err := store.Sync(ctx, provider, indexBuilder)
		if err != nil {
			return fmt.Errorf("initial search sync: %w", err)
		}
		logger.Info("Search store ready", logfields.Count(n))
		deps.Searcher = store
	}

	var emitter *events.Emitter
	if cfg.Events.NATSURL != "" {
		conn, err := events.Connect(cfg.Events.NATSURL, logger)
		if err != nil {
			logger.Warn("Content events disabled", logfields.Error(err))
		} else {
			defer func() { _ = conn.Drain() }()
			emitter = events.NewEmitter(conn, cfg.Events.Subject, recorder, logger).WithRetry(retry.FromEvents(cfg.Events))
		}
	}

	r := &reindexer{provider: provider, store: store, builder: indexBuilder, emitter: emitter, recorder: recorder, logger: logger}

	if cfg.Content.Watch {
		w, err := watcher.New(provider.BaseDir(), provider, watcher.Options{
			Logger: logger,
			OnChange: func(ctx context.Context, paths []string) {
				if err := r.run(ctx, events.SourceWatch, paths); err != nil {
					logger.Warn("Reindex after change failed", logfields.Error(err))
				}
			},
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return err
		}
		defer func() { _ = w.Stop() }()
	}

	if interval := cfg.Content.RefreshIntervalDuration(); interval > 0 {
		sched, err := scheduler.New(recorder, logger)
		if err != nil {
			return err
		}
		if _, err := sched.Every("refresh", interval, func(ctx context.Context) error {
			return r.run(ctx, events.SourceRefresh, nil)
		}); err != nil {
			return err
		}
		sched.Start(ctx)
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	srv := httpserver.New(cfg, deps)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server")

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeoutDuration())
	defer stopCancel()
	return srv.Stop(stopCtx)
}

// cacheEnumeration reports whether the provider may cache its document
// listing. Only the watcher and the refresh job invalidate that cache, so
// without either every manifest request must walk the tree again.
func cacheEnumeration(cfg *config.Config) bool {
	return cfg.Content.Watch || cfg.Content.RefreshIntervalDuration() > 0
}

// reindexer re-reads the content tree and propagates the result to the
// search store and subscribers.
type reindexer struct {
	provider *content.FileSystemProvider
	store    *search.Store
	builder  *search.Builder
	emitter  *events.Emitter
	recorder metrics.Recorder
	logger   *slog.Logger
}

func (r *reindexer) run(ctx context.Context, source string, paths []string) error {
	if err := r.provider.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh content: %w", err)
	}
	metas, err := r.provider.ListAllMetadata(ctx)
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}
	r.recorder.SetDocuments(len(metas))

	if r.store != nil {
		n, err := r.store.Sync(ctx, r.provider, r.builder)
		if err != nil {
			return fmt.Errorf("sync search store: %w", err)
		}
		r.logger.Debug("Search store synced", logfields.Count(n))
	}

	if err := r.emitter.ContentChanged(ctx, source, paths, len(metas)); err != nil {
		r.logger.Debug("Content change not published", slog.String("source", source), logfields.Error(err))
	}
	return nil
}
