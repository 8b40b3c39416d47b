package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/config"
	"github.com/homehub/panel/internal/handler"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/pkg/cache"
	"github.com/homehub/panel/internal/pkg/database"
	"github.com/homehub/panel/internal/pkg/utils"
	"github.com/homehub/panel/internal/repository"
	"github.com/homehub/panel/internal/service"
	"github.com/homehub/panel/internal/ws"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// @title           Home Hub Panel API
// @version         1.0
// @description     Self-hosted home hub backend: rooms, membership, messaging, and admin surfaces.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(&cfg.Log)
	defer logger.Sync()

	logger.Info("Starting hub panel",
		zap.String("mode", cfg.Server.Mode),
		zap.Int("port", cfg.Server.Port),
	)

	gin.SetMode(cfg.Server.Mode)

	db, err := database.NewSQLite(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db, logger)

	// Redis is optional on a single-box hub; rate limiting and presence
	// degrade to in-process state without it.
	redisClient, err := cache.NewRedis(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process fallbacks", zap.Error(err))
		redisClient = nil
	} else {
		defer cache.Close(redisClient, logger)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Services
	aiService := service.NewAIService(connRepo, &cfg.AI, logger)
	authService := service.NewAuthService(userRepo, inviteRepo, settingRepo, deviceRepo, jwtManager, logger)
	userService := service.NewUserService(userRepo, logger)
	roomService := service.NewRoomService(roomRepo, userRepo, messageRepo, logger)
	messageService := service.NewMessageService(roomRepo, messageRepo, userRepo, aiService, logger)
	inviteService := service.NewInviteService(inviteRepo, logger)
	settingsService := service.NewSettingsService(settingRepo, logger)
	networkService := service.NewNetworkService(&cfg.Network, logger)
	storageService := service.NewStorageService(&cfg.Storage, logger)

	// WebSocket hub
	hub := ws.NewHub(roomService, messageService, userService, redisClient, logger)
	go hub.Run()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	roomHandler := handler.NewRoomHandler(roomService)
	messageHandler := handler.NewMessageHandler(messageService)
	inviteHandler := handler.NewInviteHandler(inviteService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	aiHandler := handler.NewAIHandler(aiService)
	networkHandler := handler.NewNetworkHandler(networkService)
	storageHandler := handler.NewStorageHandler(storageService)
	wsHandler := ws.NewHandler(hub, jwtManager, logger)

	router := setupRouter(
		logger,
		jwtManager,
		redisClient,
		authHandler,
		userHandler,
		roomHandler,
		messageHandler,
		inviteHandler,
		settingsHandler,
		aiHandler,
		networkHandler,
		storageHandler,
		wsHandler,
	)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(cfg *config.LogConfig) *zap.Logger {
	var zapLevel zapcore.Level
	switch cfg.Level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

func setupRouter(
	logger *zap.Logger,
	jwtManager *utils.JWTManager,
	redisClient *redis.Client,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	roomHandler *handler.RoomHandler,
	messageHandler *handler.MessageHandler,
	inviteHandler *handler.InviteHandler,
	settingsHandler *handler.SettingsHandler,
	aiHandler *handler.AIHandler,
	networkHandler *handler.NetworkHandler,
	storageHandler *handler.StorageHandler,
	wsHandler *ws.Handler,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	apiLimiter, authLimiter, messageLimiter := buildRateLimiters(redisClient)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/ws", wsHandler.ServeWS)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(apiLimiter))
	{
		// Public
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit(authLimiter))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}
		v1.GET("/invites/:code", inviteHandler.Check)

		// Authenticated
		authProtected := v1.Group("/auth")
		authProtected.Use(middleware.Auth(jwtManager))
		{
			authProtected.POST("/logout", authHandler.Logout)
			authProtected.GET("/me", authHandler.Me)
			authProtected.PUT("/password", authHandler.ChangePassword)
			authProtected.GET("/devices", authHandler.ListDevices)
			authProtected.DELETE("/devices/:id", authHandler.RevokeDevice)
		}

		users := v1.Group("/users")
		users.Use(middleware.Auth(jwtManager))
		{
			users.GET("", userHandler.List)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("/:id", userHandler.GetByID)
			users.PUT("/:id/role", userHandler.SetRole)
			users.POST("/:id/suspend", userHandler.Suspend)
			users.POST("/:id/unsuspend", userHandler.Unsuspend)
			users.DELETE("/:id", userHandler.Delete)
		}

		rooms := v1.Group("/rooms")
		rooms.Use(middleware.Auth(jwtManager))
		{
			rooms.GET("", roomHandler.List)
			rooms.POST("", roomHandler.Create)
			rooms.GET("/slug/:slug", roomHandler.GetBySlug)
			rooms.GET("/:id", roomHandler.GetByID)
			rooms.PUT("/:id/settings", roomHandler.UpdateSettings)
			rooms.POST("/:id/self-destruct", roomHandler.ScheduleSelfDestruct)
			rooms.DELETE("/:id/self-destruct", roomHandler.CancelSelfDestruct)
			rooms.DELETE("/:id", roomHandler.Delete)
			rooms.POST("/:id/leave", roomHandler.Leave)
			rooms.GET("/:id/members", roomHandler.ListMembers)
			rooms.POST("/:id/members", roomHandler.AddMember)
			rooms.PUT("/:id/members/:user_id/role", roomHandler.UpdateMemberRole)
			rooms.DELETE("/:id/members/:user_id", roomHandler.RemoveMember)

			rooms.GET("/:id/messages", messageHandler.List)
			rooms.POST("/:id/messages", middleware.MessageRateLimit(messageLimiter), messageHandler.Post)
		}

		// Administration
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(jwtManager), middleware.RequireGlobalAdmin())
		{
			admin.GET("/rooms", roomHandler.ListAll)

			admin.POST("/invites", inviteHandler.Create)
			admin.GET("/invites", inviteHandler.List)
			admin.POST("/invites/:id/revoke", inviteHandler.Revoke)
			admin.DELETE("/invites/:id", inviteHandler.Delete)

			admin.GET("/settings", settingsHandler.Get)
			admin.PUT("/settings", settingsHandler.Update)

			admin.GET("/ai/status", aiHandler.Status)
			admin.PUT("/ai/configure", aiHandler.Configure)

			admin.GET("/network", networkHandler.Status)

			admin.GET("/storage", storageHandler.Browse)
			admin.DELETE("/storage", storageHandler.Delete)
		}

		wsStats := v1.Group("/ws")
		wsStats.Use(middleware.Auth(jwtManager))
		{
			wsStats.GET("/stats", wsHandler.GetStats)
			wsStats.GET("/online", wsHandler.GetOnlineUsers)
			wsStats.GET("/online/:user_id", wsHandler.IsUserOnline)
		}
	}

	return router
}

func buildRateLimiters(redisClient *redis.Client) (api, auth, message middleware.RateLimiter) {
	if redisClient != nil {
		return middleware.NewRedisRateLimiter(redisClient, 100, time.Minute),
			middleware.NewRedisRateLimiter(redisClient, 10, time.Minute),
			middleware.NewRedisRateLimiter(redisClient, 60, time.Minute)
	}
	return middleware.NewInMemoryRateLimiter(rate.Every(600*time.Millisecond), 100),
		middleware.NewInMemoryRateLimiter(rate.Every(6*time.Second), 10),
		middleware.NewInMemoryRateLimiter(rate.Every(time.Second), 60)
}
