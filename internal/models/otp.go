package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OTPVerification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PhoneNumber string             `json:"phone_number" bson:"phone_number" validate:"required,phone"`
	Code        string             `json:"-" bson:"code"`
	ExpiresAt   time.Time          `json:"expires_at" bson:"expires_at"`
	IsVerified  bool               `json:"is_verified" bson:"is_verified" default:"false"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

func (o *OTPVerification) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
