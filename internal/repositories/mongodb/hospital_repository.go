package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rapidaid/internal/models"
	"rapidaid/internal/repositories/interfaces"
	"rapidaid/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type hospitalRepository struct {
	collection *mongo.Collection
}

func NewHospitalRepository(db *mongo.Database) interfaces.HospitalRepository {
	return &hospitalRepository{
		collection: db.Collection("hospitals"),
	}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	hospital.ID = primitive.NewObjectID()
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()

	if hospital.Services == nil {
		hospital.Services = []models.HospitalService{}
	}

	_, err := r.collection.InsertOne(ctx, hospital)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("hospital with registration %s already exists", hospital.RegistrationNumber)
		}
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.collection.FindOne(ctx, bson.M{"registration_number": registrationNumber}).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hospital by registration: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]*models.Hospital, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	var hospitals []*models.Hospital
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) UpsertService(ctx context.Context, id primitive.ObjectID, service models.HospitalService) error {
	// Try updating an existing entry first.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "services.name": service.Name},
		bson.M{"$set": bson.M{
			"services.$.is_available": service.IsAvailable,
			"updated_at":              time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital service: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	result, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"services": service},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add hospital service: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
