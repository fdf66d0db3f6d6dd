package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hospital struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name" validate:"required"`
	RegistrationNumber string             `json:"registration_number" bson:"registration_number" validate:"required"`
	PasswordHash       string             `json:"-" bson:"password_hash"`
	Address            string             `json:"address" bson:"address"`
	EmergencyContact   string             `json:"emergency_contact" bson:"emergency_contact"`
	Location           Location           `json:"location" bson:"location" validate:"required"`
	Services           []HospitalService  `json:"services" bson:"services"`
	PushToken          string             `json:"-" bson:"push_token,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

type HospitalService struct {
	Name        string `json:"name" bson:"name"`
	IsAvailable bool   `json:"is_available" bson:"is_available"`
}

// AvailableServices filters the service list down to what the hospital can
// currently offer.
func (h *Hospital) AvailableServices() []string {
	var names []string
	for _, s := range h.Services {
		if s.IsAvailable {
			names = append(names, s.Name)
		}
	}
	return names
}
