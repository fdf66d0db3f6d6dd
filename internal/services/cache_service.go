package services

import (
	"context"
	"fmt"
	"time"

	"rapidaid/internal/models"
	"rapidaid/pkg/cache"
	"rapidaid/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// CheckRateLimit counts calls against key within window and reports
	// whether this call is still under limit.
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)

	SetDriverLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, expiration time.Duration) error
	GetDriverLocation(ctx context.Context, driverID primitive.ObjectID) (*models.Location, error)

	GetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) (int64, bool)
	SetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, count int64) error
	InvalidateUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) error
}

type cacheService struct {
	redis  *cache.RedisCache
	logger *logger.Logger
}

func NewCacheService(redis *cache.RedisCache, logger *logger.Logger) CacheService {
	return &cacheService{
		redis:  redis,
		logger: logger,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redis.Set(ctx, key, value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

func (s *cacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *cacheService) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rateKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := s.redis.Increment(ctx, rateKey)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// First hit in the window owns the expiry.
	if count == 1 {
		if err := s.redis.Expire(ctx, rateKey, window); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit expiry")
		}
	}

	return count <= limit, nil
}

func driverLocationKey(driverID primitive.ObjectID) string {
	return fmt.Sprintf("driver:location:%s", driverID.Hex())
}

func (s *cacheService) SetDriverLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, expiration time.Duration) error {
	return s.redis.Set(ctx, driverLocationKey(driverID), location, expiration)
}

func (s *cacheService) GetDriverLocation(ctx context.Context, driverID primitive.ObjectID) (*models.Location, error) {
	var location models.Location
	if err := s.redis.Get(ctx, driverLocationKey(driverID), &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func unreadCountKey(kind models.ActorRole, recipientID primitive.ObjectID) string {
	return fmt.Sprintf("notifications:unread:%s:%s", kind, recipientID.Hex())
}

func (s *cacheService) GetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) (int64, bool) {
	var count int64
	if err := s.redis.Get(ctx, unreadCountKey(kind, recipientID), &count); err != nil {
		return 0, false
	}
	return count, true
}

func (s *cacheService) SetUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, count int64) error {
	return s.redis.Set(ctx, unreadCountKey(kind, recipientID), count, 5*time.Minute)
}

func (s *cacheService) InvalidateUnreadCount(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) error {
	return s.redis.Delete(ctx, unreadCountKey(kind, recipientID))
}
