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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type emergencyRequestRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRequestRepository(db *mongo.Database) interfaces.EmergencyRequestRepository {
	return &emergencyRequestRepository{
		collection: db.Collection("emergency_requests"),
	}
}

func (r *emergencyRequestRepository) Create(ctx context.Context, request *models.EmergencyRequest) error {
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	request.Status = models.RequestStatusPending

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create emergency request: %w", err)
	}
	return nil
}

func (r *emergencyRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	var request models.EmergencyRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get emergency request: %w", err)
	}
	return &request, nil
}

func (r *emergencyRequestRepository) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus, extra map[string]interface{}) error {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrConcurrentModification
	}
	return nil
}

func (r *emergencyRequestRepository) ListPendingAmbulance(ctx context.Context, limit int64) ([]*models.EmergencyRequest, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"status": models.RequestStatusPending,
		"kind":   models.RequestKindAmbulance,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.EmergencyRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}

func (r *emergencyRequestRepository) ListByPatient(ctx context.Context, patientID primitive.ObjectID, limit int64) ([]*models.EmergencyRequest, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.EmergencyRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}
