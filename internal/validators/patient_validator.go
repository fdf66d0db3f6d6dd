package validators

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"omitempty,min=2,max=100"`
	Age  int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

type MedicalHistoryRequest struct {
	Condition        string `json:"condition" validate:"required,min=2,max=200"`
	Notes            string `json:"notes" validate:"omitempty,max=2000"`
	OperationDetails string `json:"operation_details" validate:"omitempty,max=2000"`
}
