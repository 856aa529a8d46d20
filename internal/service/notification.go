package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pixelspin/pixelspin/internal/model"
	"github.com/pixelspin/pixelspin/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type NotificationService interface {
	// Notify persists the notification and, when redis is available, pushes
	// it onto the account's channel for live websocket delivery. Push
	// failures are logged, not surfaced; the durable row is the record.
	Notify(ctx context.Context, notification *model.Notification)

	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error
	UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// NotificationChannel is the redis pub/sub channel for one account's pushes.
func NotificationChannel(accountID string) string {
	return fmt.Sprintf("account_notifications:%s", accountID)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
	log         zerolog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, log zerolog.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log.With().Str("component", "notifications").Logger(),
	}
}

func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.log.Error().Err(err).Str("account_id", notification.AccountID.String()).Msg("failed to persist notification")
		return
	}

	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, NotificationChannel(notification.AccountID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish notification")
	}
}

func (s *notificationService) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.repo.GetByAccountID(ctx, accountID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

func (s *notificationService) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}
