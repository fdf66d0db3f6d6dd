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

type otpRepository struct {
	collection *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) interfaces.OTPRepository {
	return &otpRepository{
		collection: db.Collection("otp_verifications"),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *models.OTPVerification) error {
	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now()
	otp.IsVerified = false

	_, err := r.collection.InsertOne(ctx, otp)
	if err != nil {
		return fmt.Errorf("failed to create otp: %w", err)
	}
	return nil
}

func (r *otpRepository) GetActive(ctx context.Context, phoneNumber, code string) (*models.OTPVerification, error) {
	var otp models.OTPVerification
	err := r.collection.FindOne(ctx, bson.M{
		"phone_number": phoneNumber,
		"code":         code,
		"is_verified":  false,
		"expires_at":   bson.M{"$gt": time.Now()},
	}, options.FindOne().SetSort(bson.M{"created_at": -1})).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_verified": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
