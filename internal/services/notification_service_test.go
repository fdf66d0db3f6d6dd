package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rapidaid/internal/models"
	"rapidaid/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type notificationFixture struct {
	svc       NotificationService
	repo      *fakeNotificationRepo
	publisher *fakePublisher
	cache     *fakeCache
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		repo:      newFakeNotificationRepo(),
		publisher: &fakePublisher{},
		cache:     newFakeCache(),
	}
	f.svc = NewNotificationService(
		f.repo, newFakeDriverRepo(), newFakeHospitalRepo(),
		nil, f.publisher, f.cache, newTestLogger(),
	)
	return f
}

func TestNotifyPersistsAndPublishes(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	recipientID := primitive.NewObjectID()

	// Seed a cached unread count so the invalidation is observable.
	_ = f.cache.SetUnreadCount(ctx, models.ActorRoleDriver, recipientID, 3)

	requestID := primitive.NewObjectID()
	err := f.svc.Notify(ctx, models.ActorRoleDriver, recipientID, "New emergency request 1.2 km away", &requestID, nil)
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(f.repo.notifications) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(f.repo.notifications))
	}
	stored := f.repo.notifications[0]
	if stored.RecipientKind != models.ActorRoleDriver || stored.RecipientID != recipientID {
		t.Error("notification stored with wrong recipient")
	}
	if stored.RequestID == nil || *stored.RequestID != requestID {
		t.Error("notification should reference the request")
	}

	if _, ok := f.cache.GetUnreadCount(ctx, models.ActorRoleDriver, recipientID); ok {
		t.Error("unread count cache should be invalidated")
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 realtime event, got %d", len(f.publisher.events))
	}
	if f.publisher.events[0].Event != "notification" || f.publisher.events[0].RecipientID != recipientID {
		t.Error("realtime event should target the recipient")
	}
}

func TestNotifyFailsWhenStoreUnavailable(t *testing.T) {
	f := newNotificationFixture()
	f.repo.failCreate = true

	err := f.svc.Notify(context.Background(), models.ActorRolePatient, primitive.NewObjectID(), "hello", nil, nil)
	if !errors.Is(err, utils.ErrStoreUnavailable) {
		t.Fatalf("expected persist failure to surface, got %v", err)
	}
	if len(f.publisher.events) != 0 {
		t.Error("nothing should be published when the persist fails")
	}
}

func TestListClampsLimit(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	recipientID := primitive.NewObjectID()
	actor := models.Actor{ID: recipientID, Role: models.ActorRolePatient}

	for i := 0; i < utils.NotificationListLimit+5; i++ {
		_ = f.svc.Notify(ctx, models.ActorRolePatient, recipientID, fmt.Sprintf("message %d", i), nil, nil)
	}

	list, err := f.svc.List(ctx, actor, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != utils.NotificationListLimit {
		t.Errorf("zero limit should clamp to %d, got %d", utils.NotificationListLimit, len(list))
	}
	if list[0].Message != fmt.Sprintf("message %d", utils.NotificationListLimit+4) {
		t.Errorf("list should be newest first, got %q", list[0].Message)
	}

	list, err = f.svc.List(ctx, actor, 5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("expected 5 notifications, got %d", len(list))
	}

	if _, err := f.svc.List(ctx, models.Actor{}, 5); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Errorf("anonymous list should fail, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	recipientID := primitive.NewObjectID()
	actor := models.Actor{ID: recipientID, Role: models.ActorRoleDriver}

	_ = f.svc.Notify(ctx, models.ActorRoleDriver, recipientID, "hello", nil, nil)
	notificationID := f.repo.notifications[0].ID

	if err := f.svc.MarkRead(ctx, actor, notificationID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !f.repo.notifications[0].Read || f.repo.notifications[0].ReadAt == nil {
		t.Error("notification should be marked read with a timestamp")
	}

	// Marking again is a no-op.
	if err := f.svc.MarkRead(ctx, actor, notificationID); err != nil {
		t.Errorf("repeat MarkRead should succeed, got %v", err)
	}

	stranger := models.Actor{ID: primitive.NewObjectID(), Role: models.ActorRoleDriver}
	if err := f.svc.MarkRead(ctx, stranger, notificationID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("stranger mark should report not found, got %v", err)
	}

	wrongRole := models.Actor{ID: recipientID, Role: models.ActorRolePatient}
	if err := f.svc.MarkRead(ctx, wrongRole, notificationID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("role mismatch should report not found, got %v", err)
	}

	if err := f.svc.MarkRead(ctx, models.Actor{}, notificationID); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Errorf("anonymous mark should fail, got %v", err)
	}
}

func TestCountUnreadPrefersCache(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	recipientID := primitive.NewObjectID()
	actor := models.Actor{ID: recipientID, Role: models.ActorRoleHospital}

	_ = f.svc.Notify(ctx, models.ActorRoleHospital, recipientID, "one", nil, nil)
	_ = f.svc.Notify(ctx, models.ActorRoleHospital, recipientID, "two", nil, nil)

	count, err := f.svc.CountUnread(ctx, actor)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// The first call should have populated the cache; subsequent calls read
	// it without touching the store.
	if cached, ok := f.cache.GetUnreadCount(ctx, models.ActorRoleHospital, recipientID); !ok || cached != 2 {
		t.Errorf("cache should hold the count, got %d (present=%v)", cached, ok)
	}
	_ = f.cache.SetUnreadCount(ctx, models.ActorRoleHospital, recipientID, 99)
	count, err = f.svc.CountUnread(ctx, actor)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 99 {
		t.Errorf("cached count should win, got %d", count)
	}

	if err := f.svc.MarkRead(ctx, actor, f.repo.notifications[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	count, err = f.svc.CountUnread(ctx, actor)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after read = %d, want 1", count)
	}
}
