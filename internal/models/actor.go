package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ActorRole string

const (
	ActorRolePatient  ActorRole = "patient"
	ActorRoleDriver   ActorRole = "ambulance_driver"
	ActorRoleHospital ActorRole = "hospital"
)

// Actor is the identity resolved at the HTTP boundary and passed explicitly
// into every service operation. Services never read ambient session state.
type Actor struct {
	ID   primitive.ObjectID `json:"id"`
	Role ActorRole          `json:"role"`
}

func (a Actor) IsZero() bool {
	return a.ID.IsZero()
}
