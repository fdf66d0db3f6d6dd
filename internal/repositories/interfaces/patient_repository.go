package interfaces

import (
	"context"

	"rapidaid/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*models.Patient, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	AddMedicalHistory(ctx context.Context, id primitive.ObjectID, entry models.MedicalHistoryEntry) error
}
