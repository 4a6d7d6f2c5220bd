package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"actionflow/backend/internal/api"
	"actionflow/backend/internal/api/handler"
	"actionflow/backend/internal/bootstrap"
	"actionflow/backend/internal/complaint"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/database"
	"actionflow/backend/internal/eventhub"
	"actionflow/backend/internal/logger"
	"actionflow/backend/internal/notify"
	"actionflow/backend/internal/storage"
	"actionflow/backend/internal/sweeper"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "actionflow-api")
	defer log.Sync()
	if envErr != nil {
		log.Info("no .env file loaded", zap.Error(envErr))
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, err := bootstrap.Database(cfg)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	rdb, err := bootstrap.Redis(ctx, cfg)
	if err != nil {
		log.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()

	files, uploadDir, err := bootstrap.FileStore(cfg)
	if err != nil {
		log.Fatal("file store unavailable", zap.Error(err))
	}

	s := storage.NewStorageService(db, rdb)

	// 2. Notifications
	renderer, err := notify.NewRenderer()
	if err != nil {
		log.Fatal("notification templates", zap.Error(err))
	}
	queue := notify.NewQueue(rdb, log)
	dispatcher := notify.NewDispatcher(rdb, renderer, log, bootstrap.Senders(cfg, log)...)

	// 3. Event hub, fed from Redis so every API instance sees every event
	hub := eventhub.NewManagerService(log)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()
	if err := hub.StartPubSubListener(ctx, rdb); err != nil {
		log.Fatal("event subscription failed", zap.Error(err))
	}

	// 4. Background workers
	dispatchDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(dispatchDone)
	}()

	sw := sweeper.New(s, log, cfg.AutoCloseAfter, cfg.AutoCloseInterval)
	sw.Start(ctx)

	limiter := api.DefaultFilingLimiter()
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Cleanup(time.Hour)
			}
		}
	}()

	// 5. HTTP
	svc := complaint.NewService(s, queue, log)
	h := handler.NewHandler(svc, s, files, hub, log)
	router := api.NewRouter(h, api.Options{
		JWTSecret:     []byte(cfg.JWTSecret),
		CORSOrigin:    cfg.CORSOrigin,
		UploadDir:     uploadDir,
		FilingLimiter: limiter,
	}, log)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	sw.Stop()
	queue.Wait()
	<-dispatchDone
	<-hubDone
	log.Info("stopped")
}
