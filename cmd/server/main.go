package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/siege-spider/spider-backend/internal/api"
	"github.com/siege-spider/spider-backend/internal/config"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/internal/websocket"
	"github.com/siege-spider/spider-backend/pkg/alert"
	"github.com/siege-spider/spider-backend/pkg/cache"
	"github.com/siege-spider/spider-backend/pkg/database"
	"github.com/siege-spider/spider-backend/pkg/distributed"
	jwtutil "github.com/siege-spider/spider-backend/pkg/jwt"
	"github.com/siege-spider/spider-backend/pkg/logger"
	"github.com/siege-spider/spider-backend/pkg/profile"
)

func main() {
	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 로거 초기화
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting Spider Backend",
		"port", cfg.Port,
		"env", cfg.Env,
	)

	// 데이터베이스 연결
	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetime:  time.Hour,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	// Redis (선택)
	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	alerter := alert.NewDiscordWebhook(cfg.AlertWebhookURL)

	// Repository 초기화
	matchRepo := repository.NewMatchRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)

	// WebSocket Hub 초기화 및 시작
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Service 초기화
	ingestService := service.NewIngestService(db, matchRepo, cfg.SignatureWindowHours)
	ingestService.SetNotifier(wsHub)
	if cfg.IngestLockEnabled {
		if redisClient == nil {
			logger.Warn("INGEST_LOCK_ENABLED is set but REDIS_URL is empty, ingesting without signature lock")
		} else {
			locks := distributed.NewRedisLockManager(redisClient, "spider:ingest:", distributed.DefaultLockOptions())
			ingestService.SetLocker(service.NewRedisSignatureLocker(locks))
			logger.Info("Signature lock enabled")
		}
	}

	var profileService *service.ProfileService
	if cfg.ProfileServiceURL != "" {
		profileService = service.NewProfileService(
			profile.NewClient(cfg.ProfileServiceURL, cfg.ProfileServiceToken),
			cache.NewRedisCache(redisClient, "spider:cache:"),
			cfg.ProfileCacheTTL,
			matchRepo,
		)
	} else {
		logger.Warn("PROFILE_SERVICE_URL is empty, lookup endpoints are disabled")
	}

	router := api.SetupRouter(cfg, db, api.Services{
		Ingest:   ingestService,
		Grouping: service.NewGroupingService(matchRepo, cfg.GroupingMinMatches),
		History:  service.NewHistoryService(matchRepo),
		Profile:  profileService,
		User:     service.NewUserService(userRepo),
		Client:   service.NewClientService(clientRepo),
		Hub:      wsHub,
		Alerter:  alerter,
		JWT:      jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
	})

	// 서버 설정
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 서버 시작 (고루틴)
	go func() {
		logger.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown 대기
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 10초 타임아웃으로 종료
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	stop()

	logger.Info("Server exited")
}

// connectRedis url 이 비어 있거나 연결에 실패하면 nil (캐시/락 없이 동작)
func connectRedis(url string) *redis.Client {
	if url == "" {
		logger.Info("REDIS_URL is empty, cache and signature lock disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, cache and signature lock disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, continuing without it", "error", err)
	}

	logger.Info("Redis client configured", "addr", opts.Addr)
	return client
}
