package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string
type RequestKind string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusPickedUp  RequestStatus = "picked_up"
	RequestStatusEnRoute   RequestStatus = "en_route_to_hospital"
	RequestStatusArrived   RequestStatus = "arrived"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCanceled  RequestStatus = "canceled"

	RequestKindAmbulance      RequestKind = "ambulance"
	RequestKindHospitalSearch RequestKind = "hospital_search"
)

type EmergencyRequest struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PatientID   *primitive.ObjectID `json:"patient_id,omitempty" bson:"patient_id,omitempty"`
	Kind        RequestKind         `json:"kind" bson:"kind" validate:"required"`
	Location    Location            `json:"location" bson:"location" validate:"required"`
	Status      RequestStatus       `json:"status" bson:"status" default:"pending"`
	HospitalID  *primitive.ObjectID `json:"hospital_id,omitempty" bson:"hospital_id,omitempty"`
	AcceptedAt  *time.Time          `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CanceledAt  *time.Time          `json:"canceled_at,omitempty" bson:"canceled_at,omitempty"`
	CanceledBy  string              `json:"canceled_by,omitempty" bson:"canceled_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// requestSuccessor is the legal forward transition graph for ambulance
// requests. canceled is reachable separately from pending and accepted.
var requestSuccessor = map[RequestStatus]RequestStatus{
	RequestStatusPending:  RequestStatusAccepted,
	RequestStatusAccepted: RequestStatusPickedUp,
	RequestStatusPickedUp: RequestStatusEnRoute,
	RequestStatusEnRoute:  RequestStatusArrived,
	RequestStatusArrived:  RequestStatusCompleted,
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCanceled
}

// CanAdvanceTo reports whether next is the immediate forward successor of s.
func (s RequestStatus) CanAdvanceTo(next RequestStatus) bool {
	return requestSuccessor[s] == next
}

// CanCancel reports whether a request in this state may still be canceled.
func (s RequestStatus) CanCancel() bool {
	return s == RequestStatusPending || s == RequestStatusAccepted
}
