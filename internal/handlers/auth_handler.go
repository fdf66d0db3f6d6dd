package handlers

import (
	"rapidaid/internal/middleware"
	"rapidaid/internal/models"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RequestOTP sends a verification code to a patient's phone.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var request validators.RequestOTPRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	if err := h.authService.RequestPatientOTP(c.Request.Context(), services.RequestOTPCommand{
		PhoneNumber: request.PhoneNumber,
	}); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Verification code sent", nil)
}

// VerifyOTP logs a patient in, registering them on first use.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var request validators.VerifyOTPRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	result, err := h.authService.VerifyPatientOTP(c.Request.Context(), services.VerifyOTPCommand{
		PhoneNumber: request.PhoneNumber,
		Code:        request.Code,
		Name:        request.Name,
		Age:         request.Age,
	})
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Logged in", result)
}

func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	var request validators.RegisterDriverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	result, err := h.authService.RegisterDriver(c.Request.Context(), services.RegisterDriverCommand{
		Name:            request.Name,
		Age:             request.Age,
		LicenseNumber:   request.LicenseNumber,
		AmbulanceNumber: request.AmbulanceNumber,
		Password:        request.Password,
	})
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, "Driver registered", result)
}

func (h *AuthHandler) LoginDriver(c *gin.Context) {
	var request validators.LoginDriverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	result, err := h.authService.LoginDriver(c.Request.Context(), request.LicenseNumber, request.Password)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	utils.SuccessResponse(c, "Logged in", result)
}

func (h *AuthHandler) RegisterHospital(c *gin.Context) {
	var request validators.RegisterHospitalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	cmd := services.RegisterHospitalCommand{
		Name:               request.Name,
		RegistrationNumber: request.RegistrationNumber,
		Password:           request.Password,
		Address:            request.Address,
		EmergencyContact:   request.EmergencyContact,
		Latitude:           request.Latitude,
		Longitude:          request.Longitude,
	}
	for _, s := range request.Services {
		cmd.Services = append(cmd.Services, models.HospitalService{
			Name:        s.Name,
			IsAvailable: s.IsAvailable != nil && *s.IsAvailable,
		})
	}

	result, err := h.authService.RegisterHospital(c.Request.Context(), cmd)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, "Hospital registered", result)
}

func (h *AuthHandler) LoginHospital(c *gin.Context) {
	var request validators.LoginHospitalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	result, err := h.authService.LoginHospital(c.Request.Context(), request.RegistrationNumber, request.Password)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	utils.SuccessResponse(c, "Logged in", result)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var request validators.RefreshTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	tokens, err := h.authService.RefreshTokens(c.Request.Context(), request.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	utils.SuccessResponse(c, "Tokens refreshed", tokens)
}

func (h *AuthHandler) UpdatePushToken(c *gin.Context) {
	var request validators.PushTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.authService.UpdatePushToken(c.Request.Context(), actor, request.Token); err != nil {
		utils.DomainErrorResponse(c, err, "account")
		return
	}

	utils.SuccessResponse(c, "Push token updated", nil)
}
