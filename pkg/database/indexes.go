package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the dispatch workload depends on. Safe to
// run at every startup; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"patients": {
			{
				Keys:    bson.D{{Key: "phone_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"ambulance_drivers": {
			{
				Keys:    bson.D{{Key: "license_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "ambulance_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "current_location", Value: "2dsphere"}},
			},
			{
				Keys: bson.D{{Key: "is_available", Value: 1}},
			},
		},
		"hospitals": {
			{
				Keys:    bson.D{{Key: "registration_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "location", Value: "2dsphere"}},
			},
		},
		"emergency_requests": {
			{
				Keys: bson.D{{Key: "status", Value: 1}, {Key: "kind", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		"ambulance_assignments": {
			{
				Keys: bson.D{{Key: "request_id", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "status", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "hospital_id", Value: 1}, {Key: "status", Value: 1}},
			},
		},
		"notifications": {
			{
				Keys: bson.D{{Key: "recipient_kind", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		"otp_verifications": {
			{
				Keys: bson.D{{Key: "phone_number", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
	}

	for collection, models := range indexes {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
