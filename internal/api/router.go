package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/codeduel/codeduel-backend/internal/api/handlers"
	"github.com/codeduel/codeduel-backend/internal/api/middleware"
	"github.com/codeduel/codeduel-backend/internal/battle"
	"github.com/codeduel/codeduel-backend/internal/config"
	"github.com/codeduel/codeduel-backend/internal/repository"
	"github.com/codeduel/codeduel-backend/internal/service"
	"github.com/codeduel/codeduel-backend/internal/websocket"
	"github.com/codeduel/codeduel-backend/pkg/database"
	jwtutil "github.com/codeduel/codeduel-backend/pkg/jwt"
	"github.com/codeduel/codeduel-backend/pkg/logger"
	"github.com/codeduel/codeduel-backend/pkg/ratelimit"
	"github.com/codeduel/codeduel-backend/pkg/sandbox"
)

// SetupRouter wires repositories, services, the battle manager and all HTTP
// routes. The returned manager is already started; the caller stops it on
// shutdown.
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client) (*gin.Engine, *battle.Manager) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	battleRepo := repository.NewBattleRepository(db, userRepo)

	// Services
	eloService := service.NewELOService()
	userService := service.NewUserService(userRepo, redisClient)
	sandboxClient := sandbox.NewClient(cfg.SandboxURL, cfg.SandboxCaseTimeout)
	evaluator := service.NewEvaluatorService(sandboxClient)

	// Battle engine
	problemBank := battle.NewProblemBank()
	manager := battle.NewManager(
		battle.NewRegistry(),
		eloService,
		evaluator,
		battleRepo,
		problemBank,
		cfg.MaxRatingDifference,
		cfg.BattleTimeLimit,
		cfg.SweepInterval,
	)
	manager.Start()
	logger.Info("Battle manager started", "sweepInterval", cfg.SweepInterval)

	// WebSocket hub
	wsHub := websocket.NewHub(manager, cfg.CORSAllowedOrigins)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	jwtManager := jwtutil.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	limiter := ratelimit.New(redisClient, ratelimit.Config{KeyPrefix: "ratelimit:"})

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, jwtManager)
	userHandler := handlers.NewUserHandler(userService)
	leaderboardHandler := handlers.NewLeaderboardHandler(userService)
	battleHandler := handlers.NewBattleHandler(battleRepo)
	problemHandler := handlers.NewProblemHandler(problemBank)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIRateLimit(limiter))
	{
		// WebSocket endpoint
		v1.GET("/ws", middleware.Auth(jwtManager), wsHandler.HandleWebSocket)

		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit(limiter))
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		// Problem routes
		problems := v1.Group("/problems")
		{
			problems.GET("", problemHandler.ListProblems)
			problems.GET("/:id", problemHandler.GetProblem)
		}

		// Battle history routes
		battles := v1.Group("/battles")
		{
			battles.GET("/my", middleware.Auth(jwtManager), battleHandler.ListMyBattles)
			battles.GET("/:id", battleHandler.GetBattle)
		}

		// Leaderboard routes
		v1.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.Auth(jwtManager))
		{
			users.GET("/me", userHandler.GetCurrentUser)
		}
	}

	return router, manager
}
