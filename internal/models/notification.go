package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RecipientKind ActorRole           `json:"recipient_kind" bson:"recipient_kind" validate:"required"`
	RecipientID   primitive.ObjectID  `json:"recipient_id" bson:"recipient_id" validate:"required"`
	RequestID     *primitive.ObjectID `json:"request_id,omitempty" bson:"request_id,omitempty"`
	AssignmentID  *primitive.ObjectID `json:"assignment_id,omitempty" bson:"assignment_id,omitempty"`
	Message       string              `json:"message" bson:"message" validate:"required"`
	Read          bool                `json:"read" bson:"read" default:"false"`
	ReadAt        *time.Time          `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}
