package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error)

	// GetActiveByDriver returns the driver's non-terminal assignment, or
	// ErrNotFound when the driver is idle.
	GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Assignment, error)

	GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Assignment, error)

	// UpdateStatusIf performs the transition from -> to as a single
	// conditional update, stamping extra $set fields in the same write.
	// Zero matched documents fails with ErrConcurrentModification.
	UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.AssignmentStatus, extra map[string]interface{}) error

	ListEnRouteByHospital(ctx context.Context, hospitalID primitive.ObjectID) ([]*models.Assignment, error)
}
