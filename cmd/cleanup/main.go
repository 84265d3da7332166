package main

import (
	"context"
	"fmt"
	"log"
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

// One-shot retention sweep: soft-deletes completed todos older than the
// configured retention window and cancels their pending reminders.
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
	todoSvc := service.NewTodoService(
		repo.NewPGTodoRepo(db),
		repo.NewPGCategoryRepo(db),
		repo.NewPGEventStore(db),
		schedule.NewScheduler(queue, zl),
		cache.New(rdb, cfg.Redis.DefaultTTL.Duration()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-cfg.Cleanup.Retention.Duration())
	n, err := todoSvc.DeleteCompletedOlderThan(ctx, cutoff)
	if err != nil {
		zl.Fatal("retention sweep", zap.Int("deleted", n), zap.Error(err))
	}
	fmt.Printf("deleted %d completed todos older than %s\n", n, cutoff.Format(time.RFC3339))
}
