package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pixelspin/pixelspin/internal/config"
	"github.com/pixelspin/pixelspin/internal/handler"
	"github.com/pixelspin/pixelspin/internal/middleware"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/pixelspin/pixelspin/internal/service"
	"github.com/pixelspin/pixelspin/pkg/counterstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log zerolog.Logger) *Server {
	quotaRepo := repository.NewQuotaRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	spinRepo := repository.NewSpinRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var counters counterstore.Store
	if redisClient != nil {
		counters = counterstore.NewRedisStore(redisClient)
	}

	limiter := service.NewRateLimiter(counters, cfg.RateLimitRequests, cfg.RateLimitWindow, log)

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient, log)
	quotaSvc := service.NewQuotaTracker(quotaRepo, cfg.DailySpinLimit, log)
	streakSvc := service.NewStreakEngine(streakRepo)
	achievementSvc := service.NewAchievementEngine(achievementRepo, quotaSvc, notificationSvc, log)
	spinSvc := service.NewSpinService(spinRepo, quotaSvc, streakSvc, achievementSvc, notificationSvc, log)
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo)

	spinHandler := handler.NewSpinHandler(spinSvc)
	quotaHandler := handler.NewQuotaHandler(quotaSvc)
	achievementHandler := handler.NewAchievementHandler(achievementSvc, streakSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient, log)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter)

	api := router.Group("/api")
	api.Use(rateLimitMiddleware.Limit())

	// Spins accept anonymous callers: the rate limiter still applies, but
	// quota and progression are bypassed without an account.
	api.POST("/spins", authMiddleware.OptionalAuth(), spinHandler.CreateSpin)

	// Public read surfaces
	api.GET("/spins/recent", spinHandler.Recent)
	api.GET("/leaderboard/votes", leaderboardHandler.TopByVotes)
	api.GET("/leaderboard/streaks", leaderboardHandler.TopByStreak)
	api.GET("/leaderboard/spins", leaderboardHandler.TopBySpins)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/spins/:id/vote", spinHandler.Vote)
		protected.POST("/spins/:id/share", spinHandler.Share)

		protected.GET("/quota", quotaHandler.GetQuota)
		protected.GET("/streak", achievementHandler.GetStreak)
		protected.GET("/achievements", achievementHandler.GetAchievements)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
