package handlers

import (
	"rapidaid/internal/middleware"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/internal/validators"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService services.PatientService
}

func NewPatientHandler(patientService services.PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
	}
}

func (h *PatientHandler) GetProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	patient, err := h.patientService.GetProfile(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "patient")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", patient)
}

func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	var request validators.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	patient, err := h.patientService.UpdateProfile(c.Request.Context(), actor, request.Name, request.Age)
	if err != nil {
		utils.DomainErrorResponse(c, err, "patient")
		return
	}

	utils.SuccessResponse(c, "Profile updated", patient)
}

func (h *PatientHandler) AddMedicalHistory(c *gin.Context) {
	var request validators.MedicalHistoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	err := h.patientService.AddMedicalHistory(c.Request.Context(), actor, services.MedicalHistoryCommand{
		Condition:        request.Condition,
		Notes:            request.Notes,
		OperationDetails: request.OperationDetails,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err, "patient")
		return
	}

	utils.CreatedResponse(c, "Medical history added", nil)
}

func (h *PatientHandler) ListMedicalHistory(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	entries, err := h.patientService.ListMedicalHistory(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "patient")
		return
	}

	utils.SuccessResponseWithMeta(c, "Medical history retrieved", entries, &utils.Meta{Count: len(entries)})
}
