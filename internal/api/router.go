package api

import (
	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/internal/api/handlers"
	"github.com/siege-spider/spider-backend/internal/api/middleware"
	"github.com/siege-spider/spider-backend/internal/config"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/internal/websocket"
	"github.com/siege-spider/spider-backend/pkg/alert"
	"github.com/siege-spider/spider-backend/pkg/database"
	jwtutil "github.com/siege-spider/spider-backend/pkg/jwt"
)

// Services 라우터가 사용하는 서비스 묶음. main 에서 조립한다.
type Services struct {
	Ingest   *service.IngestService
	Grouping *service.GroupingService
	History  *service.HistoryService
	Profile  *service.ProfileService // nil 이면 조회 엔드포인트 503
	User     *service.UserService
	Client   *service.ClientService
	Hub      *websocket.Hub
	Alerter  alert.Alerter
	JWT      *jwtutil.JWTManager
}

// SetupRouter API 라우터 설정
func SetupRouter(cfg *config.Config, db *database.DB, svc Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if svc.Alerter == nil {
		svc.Alerter = alert.Nop{}
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Handler 초기화
	matchHandler := handlers.NewMatchHandler(svc.Ingest, svc.Grouping, svc.History, svc.Alerter)
	lookupHandler := handlers.NewLookupHandler(svc.Profile, svc.Alerter)
	authHandler := handlers.NewAuthHandler(svc.User, svc.JWT, svc.Alerter)
	userHandler := handlers.NewUserHandler(svc.User, svc.Alerter)
	clientHandler := handlers.NewClientHandler(svc.Client, svc.Alerter)
	wsHandler := handlers.NewWebSocketHandler(svc.Hub, cfg.CORSAllowedOrigins)

	auth := middleware.Auth(svc.JWT)

	// Health check
	router.GET("/health", handlers.HealthCheck(db))

	// API v1
	v1 := router.Group("/api/v1")
	{
		// 게임 클라이언트가 보고하는 매치
		v1.POST("/ingest/match", middleware.IngestRateLimit(cfg.IngestRateLimit, cfg.IngestRateRefill), matchHandler.IngestMatch)

		// Lookup routes
		lookup := v1.Group("/lookup")
		{
			lookup.POST("/match", lookupHandler.LookupMatchPlayers)
			lookup.POST("/match/team_relationships", matchHandler.GetTeamRelationships)
			lookup.GET("/profile_id/:id", auth, lookupHandler.LookupByProfileID)
			lookup.GET("/uplay/:handle", auth, lookupHandler.LookupByUplay)
		}

		// Player routes
		v1.GET("/players/:id/matches", auth, matchHandler.GetPlayerHistory)

		// Auth / user routes
		v1.POST("/token", authHandler.Token)
		v1.GET("/users/me", auth, userHandler.GetCurrentUser)

		v1.GET("/client/version", clientHandler.GetVersion)

		// WebSocket route
		v1.GET("/ws", auth, wsHandler.HandleWebSocket)
	}

	return router
}
