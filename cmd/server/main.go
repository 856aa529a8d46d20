package main

import (
	"github.com/pixelspin/pixelspin/internal/config"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/server"
	"github.com/pixelspin/pixelspin/pkg/database"
	"github.com/pixelspin/pixelspin/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
	} else {
		// Without redis the rate limiter fails open and live notification
		// pushes are skipped; the durable paths keep working.
		log.Warn().Msg("REDIS_URL not set, rate limiting disabled")
	}

	srv := server.NewServer(cfg, db, redisClient, log)

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting server")
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.QuotaRecord{},
		&model.StreakRecord{},
		&model.AchievementUnlock{},
		&model.SpinRecord{},
		&model.VoteRecord{},
		&model.Notification{},
	)
}
