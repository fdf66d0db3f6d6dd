package validators

type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_number"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_number"`
	Code        string `json:"code" validate:"required,len=4,numeric"`
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Age         int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

type RegisterDriverRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Age             int    `json:"age" validate:"required,gte=18,lte=100"`
	LicenseNumber   string `json:"license_number" validate:"required,min=4,max=32"`
	AmbulanceNumber string `json:"ambulance_number" validate:"required,min=2,max=32"`
	Password        string `json:"password" validate:"required,strong_password"`
}

type LoginDriverRequest struct {
	LicenseNumber string `json:"license_number" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

type RegisterHospitalRequest struct {
	Name               string                   `json:"name" validate:"required,min=2,max=200"`
	RegistrationNumber string                   `json:"registration_number" validate:"required,min=4,max=32"`
	Password           string                   `json:"password" validate:"required,strong_password"`
	Address            string                   `json:"address" validate:"omitempty,max=500"`
	EmergencyContact   string                   `json:"emergency_contact" validate:"omitempty,phone_number"`
	Latitude           float64                  `json:"latitude" validate:"latitude"`
	Longitude          float64                  `json:"longitude" validate:"longitude"`
	Services           []HospitalServiceRequest `json:"services" validate:"omitempty,max=50,dive"`
}

type LoginHospitalRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Password           string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PushTokenRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}
