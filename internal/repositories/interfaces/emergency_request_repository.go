package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyRequestRepository interface {
	Create(ctx context.Context, request *models.EmergencyRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error)

	// UpdateStatusIf performs the transition from -> to as a single
	// conditional update (compare-and-set on the current status) and applies
	// extra $set fields in the same write. Zero matched documents fails with
	// ErrConcurrentModification.
	UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus, extra map[string]interface{}) error

	ListPendingAmbulance(ctx context.Context, limit int64) ([]*models.EmergencyRequest, error)
	ListByPatient(ctx context.Context, patientID primitive.ObjectID, limit int64) ([]*models.EmergencyRequest, error)
}
