package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID             primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Name           string                `json:"name" bson:"name" validate:"required"`
	Age            int                   `json:"age" bson:"age" validate:"gte=0,lte=150"`
	PhoneNumber    string                `json:"phone_number" bson:"phone_number" validate:"required,phone"`
	IsVerified     bool                  `json:"is_verified" bson:"is_verified" default:"false"`
	MedicalHistory []MedicalHistoryEntry `json:"medical_history,omitempty" bson:"medical_history,omitempty"`
	CreatedAt      time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" bson:"updated_at"`
}

type MedicalHistoryEntry struct {
	Condition        string    `json:"condition" bson:"condition"`
	Notes            string    `json:"notes,omitempty" bson:"notes,omitempty"`
	OperationDetails string    `json:"operation_details,omitempty" bson:"operation_details,omitempty"`
	RecordedAt       time.Time `json:"recorded_at" bson:"recorded_at"`
}
