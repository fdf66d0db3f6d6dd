package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.AmbulanceDriver) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AmbulanceDriver, error)
	GetByLicenseNumber(ctx context.Context, licenseNumber string) (*models.AmbulanceDriver, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error

	// ClaimForDispatch flips availability true -> false as a conditional
	// write. Zero matched documents means the driver was already busy and
	// the call fails with ErrDriverBusy.
	ClaimForDispatch(ctx context.Context, id primitive.ObjectID) error

	// Release makes the driver available again after completion or
	// cancellation.
	Release(ctx context.Context, id primitive.ObjectID) error

	GetAvailable(ctx context.Context, limit int64) ([]*models.AmbulanceDriver, error)
}
