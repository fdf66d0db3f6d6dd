package validators

// Coordinate fields carry only the range validators: `required` on a float64
// would reject the zero value, and latitude 0 / longitude 0 are real places.
type CreateEmergencyRequest struct {
	Kind      string  `json:"kind" validate:"required,oneof=ambulance hospital_search"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address" validate:"omitempty,max=500"`
}

type AdvanceAssignmentRequest struct {
	Status string `json:"status" validate:"required,oneof=picked_up arrived completed"`
}

type SelectHospitalRequest struct {
	HospitalID string `json:"hospital_id" validate:"required,object_id"`
}

type NearbyHospitalsRequest struct {
	Latitude  float64 `form:"lat" validate:"latitude"`
	Longitude float64 `form:"lng" validate:"longitude"`
}
