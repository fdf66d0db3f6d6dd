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

type assignmentRepository struct {
	collection *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) interfaces.AssignmentRepository {
	return &assignmentRepository{
		collection: db.Collection("ambulance_assignments"),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = primitive.NewObjectID()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	assignment.Status = models.AssignmentStatusAssigned
	assignment.AssignedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) GetActiveByDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.collection.FindOne(ctx, bson.M{
		"driver_id": driverID,
		"status": bson.M{"$nin": []models.AssignmentStatus{
			models.AssignmentStatusCompleted,
			models.AssignmentStatusCanceled,
		}},
	}, options.FindOne().SetSort(bson.M{"created_at": -1})).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) GetByRequest(ctx context.Context, requestID primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestID},
		options.FindOne().SetSort(bson.M{"created_at": -1})).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment by request: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.AssignmentStatus, extra map[string]interface{}) error {
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
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrConcurrentModification
	}
	return nil
}

func (r *assignmentRepository) ListEnRouteByHospital(ctx context.Context, hospitalID primitive.ObjectID) ([]*models.Assignment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"hospital_id": hospitalID,
		"status":      models.AssignmentStatusEnRoute,
	}, options.Find().SetSort(bson.M{"hospital_selected_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list en-route assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var assignments []*models.Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode assignments: %w", err)
	}
	return assignments, nil
}
