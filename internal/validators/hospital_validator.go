package validators

type HospitalServiceRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	IsAvailable *bool  `json:"is_available" validate:"required"`
}
