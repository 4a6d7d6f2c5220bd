package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"actionflow/backend/internal/bootstrap"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, "console", "actionflow-admin")
	defer log.Sync()

	a := &app{
		cfg: cfg,
		log: log,
		out: os.Stdout,
		openDB: func() (*gorm.DB, error) {
			return bootstrap.Database(cfg)
		},
		openRedis: func(ctx context.Context) (*redis.Client, error) {
			return bootstrap.Redis(ctx, cfg)
		},
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
