package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusPickedUp  AssignmentStatus = "picked_up"
	AssignmentStatusEnRoute   AssignmentStatus = "en_route_to_hospital"
	AssignmentStatusArrived   AssignmentStatus = "arrived"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCanceled  AssignmentStatus = "canceled"
)

// Assignment binds one ambulance driver to one emergency request. The request
// is the source of truth for whether the case is closed; the assignment tracks
// what this particular driver has done.
type Assignment struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RequestID          primitive.ObjectID  `json:"request_id" bson:"request_id" validate:"required"`
	DriverID           primitive.ObjectID  `json:"driver_id" bson:"driver_id" validate:"required"`
	HospitalID         *primitive.ObjectID `json:"hospital_id,omitempty" bson:"hospital_id,omitempty"`
	Status             AssignmentStatus    `json:"status" bson:"status" default:"assigned"`
	AssignedAt         time.Time           `json:"assigned_at" bson:"assigned_at"`
	PickedUpAt         *time.Time          `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	HospitalSelectedAt *time.Time          `json:"hospital_selected_at,omitempty" bson:"hospital_selected_at,omitempty"`
	ArrivedAt          *time.Time          `json:"arrived_at,omitempty" bson:"arrived_at,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" bson:"updated_at"`
}

var assignmentSuccessor = map[AssignmentStatus]AssignmentStatus{
	AssignmentStatusAssigned: AssignmentStatusPickedUp,
	AssignmentStatusPickedUp: AssignmentStatusEnRoute,
	AssignmentStatusEnRoute:  AssignmentStatusArrived,
	AssignmentStatusArrived:  AssignmentStatusCompleted,
}

func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCompleted || s == AssignmentStatusCanceled
}

// CanAdvanceTo reports whether next is the immediate forward successor of s.
// Transitions are strictly sequential, no skipping.
func (s AssignmentStatus) CanAdvanceTo(next AssignmentStatus) bool {
	return assignmentSuccessor[s] == next
}

// MilestoneField maps an assignment status to the timestamp field stamped
// when that status is reached.
func (s AssignmentStatus) MilestoneField() string {
	switch s {
	case AssignmentStatusPickedUp:
		return "picked_up_at"
	case AssignmentStatusEnRoute:
		return "hospital_selected_at"
	case AssignmentStatusArrived:
		return "arrived_at"
	case AssignmentStatusCompleted:
		return "completed_at"
	}
	return ""
}

// RequestStatusFor returns the request status kept in lockstep with an
// assignment status.
func (s AssignmentStatus) RequestStatusFor() RequestStatus {
	switch s {
	case AssignmentStatusAssigned:
		return RequestStatusAccepted
	case AssignmentStatusPickedUp:
		return RequestStatusPickedUp
	case AssignmentStatusEnRoute:
		return RequestStatusEnRoute
	case AssignmentStatusArrived:
		return RequestStatusArrived
	case AssignmentStatusCompleted:
		return RequestStatusCompleted
	case AssignmentStatusCanceled:
		return RequestStatusCanceled
	}
	return RequestStatusPending
}
