package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/guji3/ping/internal/emergency"
	"github.com/guji3/ping/internal/handler"
	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/auth"
	"github.com/guji3/ping/pkg/cache"
	"github.com/guji3/ping/pkg/config"
	"github.com/guji3/ping/pkg/logger"
	"github.com/guji3/ping/pkg/notification"
	"github.com/guji3/ping/pkg/scheduler"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	slog := logger.S()

	db, err := openDB(cfg.DBDriver, cfg.DSN)
	if err != nil {
		slog.Fatalw("database open failed", "driver", cfg.DBDriver, "err", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmergencyContact{}, &models.EmergencyLog{}); err != nil {
		slog.Fatalw("migration failed", "err", err)
	}

	store := emergency.NewStore(db)
	analyzer := emergency.NewOpenAIAnalyzer(emergency.AnalyzerConfig{
		APIKey:        cfg.OpenAIAPIKey,
		BaseURL:       cfg.OpenAIBaseURL,
		WhisperModel:  cfg.WhisperModel,
		AnalysisModel: cfg.AnalysisModel,
		Language:      cfg.AudioLanguage,
	}, slog)
	geocoder := emergency.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, nil, slog)

	var sender notification.SMSSender
	switch cfg.SMSProvider {
	case "aliyun":
		// real SDK client is injected at deploy time; without one the
		// sender reports every send as failed, which the pipeline records
		sender = notification.NewAliyunSMS(cfg.Aliyun, nil)
	default:
		sender = notification.NewConsoleSMS(slog)
	}
	notifier := emergency.NewSMSNotifier(sender, slog)
	pipeline := emergency.NewPipeline(store, store, analyzer, geocoder, notifier, store, slog)

	jwtMgr := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)

	dedupStore, err := cache.NewCache(cfg.Cache)
	if err != nil {
		slog.Fatalw("cache init failed", "err", err)
	}
	defer dedupStore.Close()

	h := handler.New(db, jwtMgr, pipeline, slog)
	router := handler.NewRouter(h, jwtMgr, handler.RouterOptions{
		Mode:        cfg.Mode,
		RateLimit:   cfg.RateLimit,
		DedupWindow: cfg.AlertDedupWindow,
		DedupStore:  dedupStore,
	})

	cr := scheduler.NewCron(time.Local)
	if _, err := cr.Add(cfg.StatsSchedule, emergency.NewStatsJob(store, slog)); err != nil {
		slog.Warnw("stats job not scheduled", "spec", cfg.StatsSchedule, "err", err)
	}
	cr.Start()
	defer cr.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Infow("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Fatalw("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Errorw("shutdown incomplete", "err", err)
	}
	slog.Infow("server stopped")
}

func openDB(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}
