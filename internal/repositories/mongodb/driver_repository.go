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

type driverRepository struct {
	collection *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("ambulance_drivers"),
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.AmbulanceDriver) error {
	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	driver.IsAvailable = true

	_, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("driver with license %s already exists", driver.LicenseNumber)
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AmbulanceDriver, error) {
	var driver models.AmbulanceDriver
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) GetByLicenseNumber(ctx context.Context, licenseNumber string) (*models.AmbulanceDriver, error) {
	var driver models.AmbulanceDriver
	err := r.collection.FindOne(ctx, bson.M{"license_number": licenseNumber}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver by license: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *driverRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error {
	now := time.Now()
	location.Timestamp = now

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"current_location":     location,
		"last_location_update": now,
		"updated_at":           now,
	}})
	if err != nil {
		return fmt.Errorf("failed to update driver location: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *driverRepository) ClaimForDispatch(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_available": true},
		bson.M{"$set": bson.M{"is_available": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to claim driver: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a busy driver from a missing one.
		count, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if cerr == nil && count == 0 {
			return utils.ErrNotFound
		}
		return utils.ErrDriverBusy
	}
	return nil
}

func (r *driverRepository) Release(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_available": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to release driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *driverRepository) GetAvailable(ctx context.Context, limit int64) ([]*models.AmbulanceDriver, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"is_available": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list available drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.AmbulanceDriver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}
	return drivers, nil
}
