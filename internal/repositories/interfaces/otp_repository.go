package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTPVerification) error

	// GetActive returns the newest unverified, unexpired code for the phone
	// number matching code, or ErrNotFound.
	GetActive(ctx context.Context, phoneNumber, code string) (*models.OTPVerification, error)

	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}
