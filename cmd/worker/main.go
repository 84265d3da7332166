package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"Tasker/internal/app"
	"Tasker/internal/cache"
	"Tasker/internal/config"
	"Tasker/internal/logger"
	"Tasker/internal/repo"
	"Tasker/internal/schedule"
	"Tasker/internal/service"

	"go.uber.org/zap"
)

// The worker binary drains the delayed reminder queue, materializing due-date
// notifications, and runs the periodic retention sweep for completed todos.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := app.NewPostgres(cfg.PG.DSN)
	if err != nil {
		zl.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	rdb, err := app.NewRedis(cfg.Redis)
	if err != nil {
		zl.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	queue := schedule.NewRedisQueue(rdb)
	notificationSvc := service.NewNotificationService(repo.NewPGNotificationRepo(db))
	worker := schedule.NewWorker(queue, notificationSvc, schedule.WorkerConfig{
		PollInterval: cfg.Queue.PollInterval.Duration(),
		MaxAttempts:  cfg.Queue.MaxAttempts,
		RetryBackoff: cfg.Queue.RetryBackoff.Duration(),
	}, zl)

	todoSvc := service.NewTodoService(
		repo.NewPGTodoRepo(db),
		repo.NewPGCategoryRepo(db),
		repo.NewPGEventStore(db),
		schedule.NewScheduler(queue, zl),
		cache.New(rdb, cfg.Redis.DefaultTTL.Duration()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runSweep(ctx, zl, todoSvc, cfg.Cleanup)

	zl.Info("worker started", zap.Duration("poll_interval", cfg.Queue.PollInterval.Duration()))
	worker.Run(ctx)
	zl.Info("worker stopped")
}

func runSweep(ctx context.Context, zl *zap.Logger, todos *service.TodoService, cfg config.CleanupConfig) {
	ticker := time.NewTicker(cfg.Interval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-cfg.Retention.Duration())
			n, err := todos.DeleteCompletedOlderThan(ctx, cutoff)
			if err != nil {
				zl.Error("retention sweep", zap.Int("deleted", n), zap.Error(err))
				continue
			}
			zl.Info("retention sweep done", zap.Int("deleted", n), zap.Time("cutoff", cutoff))
		}
	}
}
