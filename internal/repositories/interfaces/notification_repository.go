package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListForRecipient(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID, limit int64) ([]*models.Notification, error)

	// MarkAsRead is idempotent: marking an already-read notification
	// succeeds and leaves read == true.
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error

	CountUnread(ctx context.Context, kind models.ActorRole, recipientID primitive.ObjectID) (int64, error)
}
