package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Hospital, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	List(ctx context.Context) ([]*models.Hospital, error)

	// UpsertService creates or updates one named service flag. Services are
	// never deleted.
	UpsertService(ctx context.Context, id primitive.ObjectID, service models.HospitalService) error
}
