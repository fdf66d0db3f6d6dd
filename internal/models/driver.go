package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AmbulanceDriver struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name" validate:"required"`
	Age                int                `json:"age" bson:"age" validate:"gte=18,lte=100"`
	LicenseNumber      string             `json:"license_number" bson:"license_number" validate:"required"`
	AmbulanceNumber    string             `json:"ambulance_number" bson:"ambulance_number" validate:"required"`
	PasswordHash       string             `json:"-" bson:"password_hash"`
	AmbulanceImageURL  string             `json:"ambulance_image_url,omitempty" bson:"ambulance_image_url,omitempty"`
	CurrentLocation    *Location          `json:"current_location,omitempty" bson:"current_location,omitempty"`
	LastLocationUpdate *time.Time         `json:"last_location_update,omitempty" bson:"last_location_update,omitempty"`
	IsAvailable        bool               `json:"is_available" bson:"is_available" default:"false"`
	PushToken          string             `json:"-" bson:"push_token,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasFreshLocation reports whether the driver's last known position is recent
// enough to be trusted for dispatch ranking.
func (d *AmbulanceDriver) HasFreshLocation(staleAfter time.Duration) bool {
	if d.CurrentLocation == nil || d.LastLocationUpdate == nil {
		return false
	}
	return time.Since(*d.LastLocationUpdate) <= staleAfter
}
