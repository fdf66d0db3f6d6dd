package services

import (
	"context"
	"fmt"

	"rapidaid/internal/models"
	"rapidaid/internal/repositories/interfaces"
	"rapidaid/internal/utils"
	"rapidaid/pkg/logger"
	"rapidaid/pkg/push"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RealtimePublisher delivers events to connected dashboard clients. Delivery
// is best-effort; a recipient without an open connection simply misses the
// live event and catches up from the notification list.
type RealtimePublisher interface {
	PublishToActor(kind models.ActorRole, recipientID primitive.ObjectID, event string, payload interface{})
}

type NotificationService interface {
	// Notify persists a notification record and then attempts push and
	// websocket delivery. Only the persist step can fail the call; delivery
	// failures are logged and swallowed.
	Notify(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, message string, requestID, assignmentID *primitive.ObjectID) error

	List(ctx context.Context, actor models.Actor, limit int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, actor models.Actor, notificationID primitive.ObjectID) error
	CountUnread(ctx context.Context, actor models.Actor) (int64, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	driverRepo       interfaces.DriverRepository
	hospitalRepo     interfaces.HospitalRepository
	pushProvider     push.PushProvider
	publisher        RealtimePublisher
	cache            CacheService
	logger           *logger.Logger
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	driverRepo interfaces.DriverRepository,
	hospitalRepo interfaces.HospitalRepository,
	pushProvider push.PushProvider,
	publisher RealtimePublisher,
	cache CacheService,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		driverRepo:       driverRepo,
		hospitalRepo:     hospitalRepo,
		pushProvider:     pushProvider,
		publisher:        publisher,
		cache:            cache,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, message string, requestID, assignmentID *primitive.ObjectID) error {
	notification := &models.Notification{
		RecipientKind: kind,
		RecipientID:   recipientID,
		RequestID:     requestID,
		AssignmentID:  assignmentID,
		Message:       message,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if err := s.cache.InvalidateUnreadCount(ctx, kind, recipientID); err != nil {
		s.logger.WithError(err).Debug("Failed to invalidate unread count cache")
	}

	delivered := s.deliverPush(ctx, kind, recipientID, message, notification)

	if s.publisher != nil {
		s.publisher.PublishToActor(kind, recipientID, "notification", notification)
	}

	s.logger.LogNotificationEvent(string(kind), recipientID, delivered)
	return nil
}

func (s *notificationService) deliverPush(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, message string, notification *models.Notification) bool {
	if s.pushProvider == nil {
		return false
	}

	token := s.lookupPushToken(ctx, kind, recipientID)
	if token == "" {
		return false
	}

	data := map[string]string{"notification_id": notification.ID.Hex()}
	if notification.RequestID != nil {
		data["request_id"] = notification.RequestID.Hex()
	}

	_, err := s.pushProvider.SendNotification(ctx, &push.NotificationRequest{
		Token: token,
		Title: utils.AppName,
		Body:  message,
		Data:  data,
	})
	if err != nil {
		s.logger.WithError(err).
			WithField("recipient_id", recipientID.Hex()).
			Warn("Push delivery failed")
		return false
	}
	return true
}

func (s *notificationService) lookupPushToken(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) string {
	switch kind {
	case models.ActorRoleDriver:
		driver, err := s.driverRepo.GetByID(ctx, recipientID)
		if err != nil {
			return ""
		}
		return driver.PushToken
	case models.ActorRoleHospital:
		hospital, err := s.hospitalRepo.GetByID(ctx, recipientID)
		if err != nil {
			return ""
		}
		return hospital.PushToken
	}
	// Patients follow their requests through the web client.
	return ""
}

func (s *notificationService) List(ctx context.Context, actor models.Actor, limit int64) ([]*models.Notification, error) {
	if actor.IsZero() {
		return nil, utils.ErrUnauthenticated
	}
	if limit <= 0 || limit > utils.NotificationListLimit {
		limit = utils.NotificationListLimit
	}
	return s.notificationRepo.ListForRecipient(ctx, actor.Role, actor.ID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, actor models.Actor, notificationID primitive.ObjectID) error {
	if actor.IsZero() {
		return utils.ErrUnauthenticated
	}

	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientKind != actor.Role || notification.RecipientID != actor.ID {
		return utils.ErrNotFound
	}

	// Already read is a no-op, not an error.
	if notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return err
	}

	if err := s.cache.InvalidateUnreadCount(ctx, actor.Role, actor.ID); err != nil {
		s.logger.WithError(err).Debug("Failed to invalidate unread count cache")
	}
	return nil
}

func (s *notificationService) CountUnread(ctx context.Context, actor models.Actor) (int64, error) {
	if actor.IsZero() {
		return 0, utils.ErrUnauthenticated
	}

	if count, ok := s.cache.GetUnreadCount(ctx, actor.Role, actor.ID); ok {
		return count, nil
	}

	count, err := s.notificationRepo.CountUnread(ctx, actor.Role, actor.ID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.SetUnreadCount(ctx, actor.Role, actor.ID, count); err != nil {
		s.logger.WithError(err).Debug("Failed to cache unread count")
	}
	return count, nil
}
