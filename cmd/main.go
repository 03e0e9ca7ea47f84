package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/cache"
	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/mq/queue"
	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/mq/worker"
	"github.com/wiaanjvr/fluency-next-sub011/internal/adapters/repository"
	"github.com/wiaanjvr/fluency-next-sub011/internal/app"
	"github.com/wiaanjvr/fluency-next-sub011/internal/config"
	"github.com/wiaanjvr/fluency-next-sub011/internal/digest"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/dedupe"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/model"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/srs"
	"github.com/wiaanjvr/fluency-next-sub011/internal/domain/stage"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
	"github.com/wiaanjvr/fluency-next-sub011/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development reads a .env file; missing is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open word store", logger.Error(err))
		return
	}
	defer closeStore()

	snapshots, err := cache.NewKnownWords(
		cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		cache.WithMaxEntries(cfg.CacheMaxEntries),
	)
	if err != nil {
		log.Error(ctx, "failed to build known-words cache", logger.Error(err))
		return
	}
	defer snapshots.Close()

	engine, err := app.New(store, engineOptions(cfg, newGuard(cfg), snapshots)...)
	if err != nil {
		log.Error(ctx, "failed to build engine", logger.Error(err))
		return
	}

	// Asynchronous ingestion path: modules enqueue, workers record.
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize), queue.WithBufferSize(cfg.QueueSize))
	pool := worker.NewPool(cfg.WorkerCount, q, worker.RecorderFunc(
		func(ctx context.Context, userID string, e model.ReviewEvent) error {
			_, err := engine.RecordReview(ctx, userID, e)
			return err
		},
	))
	pool.Start(ctx)

	if cfg.DigestIntervalMinutes > 0 {
		d := digest.New(engine, logNotifier(log),
			digest.WithInterval(time.Duration(cfg.DigestIntervalMinutes)*time.Minute),
			digest.WithDueLimit(cfg.DigestDueLimit),
		)
		if err := d.Start(ctx); err != nil {
			log.Error(ctx, "failed to start digest", logger.Error(err))
			return
		}
		defer d.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "stopped")
}

// newStore builds the configured store backend. The returned closer is a
// no-op for the in-memory backend.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return repository.NewMemStore(), func() {}, nil

	case "sqlite3", "postgres":
		db, err := repository.Open(cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		s := repository.NewSQLStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newGuard picks the deduplication guard: Redis when configured, so the
// suppression window survives restarts and spans replicas.
func newGuard(cfg *config.Config) dedupe.Guard {
	window := time.Duration(cfg.DedupeWindowMinutes) * time.Minute

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return dedupe.NewRedisGuard(client, dedupe.WithRedisWindow(window))
	}

	return dedupe.NewInMemoryGuard(
		dedupe.WithWindow(window),
		dedupe.WithShardCount(cfg.DedupeShardCount),
	)
}

// engineOptions maps the flat config onto engine options.
func engineOptions(cfg *config.Config, guard dedupe.Guard, snapshots *cache.KnownWords) []app.Option {
	opts := []app.Option{
		app.WithGuard(guard),
		app.WithCache(snapshots),
		app.WithHistoryLimit(cfg.HistoryLimit),
		app.WithMaxDueLimit(cfg.MaxDueLimit),
		app.WithScheduler(srs.New(
			srs.WithKnownThreshold(cfg.KnownMinRepetitions, cfg.KnownMinIntervalDays),
			srs.WithMasteredThreshold(cfg.MasteredMinRepetitions, cfg.MasteredMinIntervalDays),
		)),
		app.WithClassifier(stage.New(
			stage.WithDevelopingAt(cfg.StageDevelopingAt),
			stage.WithProficientAt(cfg.StageProficientAt),
		)),
	}

	for module, ms := range cfg.SlowResponseMs {
		opts = append(opts, app.WithRatingPolicy(
			model.ModuleSource(module),
			app.RatingPolicy{SlowResponseMs: ms},
		))
	}

	return opts
}

// logNotifier reports due words through the log until a delivery channel
// is wired in.
func logNotifier(log logger.Logger) digest.Notifier {
	return digest.NotifierFunc(func(ctx context.Context, learner repository.Learner, due []model.WordKnowledgeRecord) error {
		log.Info(ctx, "reviews due",
			logger.String("user_id", learner.UserID),
			logger.String("language", learner.Language),
			logger.Int("due", len(due)),
		)
		return nil
	})
}
