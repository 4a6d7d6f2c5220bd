// Package bootstrap builds the infrastructure shared by the API server and
// the admin CLI from a loaded Config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/database"
	"actionflow/backend/internal/filestore"
	"actionflow/backend/internal/notify"
	"actionflow/backend/internal/telegram"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Database opens the PostgreSQL pool and sizes it.
func Database(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Redis connects and pings.
func Redis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

func UploadRules(cfg config.Config) filestore.Rules {
	rules := filestore.DefaultRules()
	if cfg.MaxUploadBytes > 0 {
		rules.MaxBytes = cfg.MaxUploadBytes
	}
	if len(cfg.ImageExtensions) > 0 {
		rules.Extensions = cfg.ImageExtensions
	}
	return rules
}

// FileStore picks Cloudinary when CLOUDINARY_URL is set and the local upload
// directory otherwise. localDir is "" for Cloudinary.
func FileStore(cfg config.Config) (store filestore.Store, localDir string, err error) {
	rules := UploadRules(cfg)
	if cfg.CloudinaryURL != "" {
		cld, err := filestore.NewCloudinary(cfg.CloudinaryURL, rules)
		if err != nil {
			return nil, "", fmt.Errorf("cloudinary: %w", err)
		}
		return cld, "", nil
	}
	return filestore.NewLocal(cfg.UploadDir, rules), cfg.UploadDir, nil
}

// Senders returns the configured delivery channels. SMTP needs
// MAIL_USERNAME; the Telegram mirror needs both token and chat id. A
// Telegram token that fails to authorise is logged and skipped.
func Senders(cfg config.Config, logger *zap.Logger) []notify.Sender {
	var out []notify.Sender
	if cfg.MailUsername != "" {
		out = append(out, notify.NewSMTPSender(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSenderName))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := telegram.NewSender(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram mirror disabled", zap.Error(err))
		} else {
			out = append(out, tg)
		}
	}
	if len(out) == 0 {
		logger.Warn("no notification senders configured; queued notifications will be dropped")
	}
	return out
}
