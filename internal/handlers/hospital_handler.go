package handlers

import (
	"rapidaid/internal/middleware"
	"rapidaid/internal/models"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/internal/validators"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	dispatchService services.DispatchService
}

func NewHospitalHandler(dispatchService services.DispatchService) *HospitalHandler {
	return &HospitalHandler{
		dispatchService: dispatchService,
	}
}

// ListIncomingPatients shows ambulances currently en route to this hospital.
func (h *HospitalHandler) ListIncomingPatients(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	incoming, err := h.dispatchService.ListIncomingPatients(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "incoming patients")
		return
	}

	utils.SuccessResponseWithMeta(c, "Incoming patients retrieved", incoming, &utils.Meta{Count: len(incoming)})
}

// UpdateService flips availability of one named service, creating it when
// new.
func (h *HospitalHandler) UpdateService(c *gin.Context) {
	var request validators.HospitalServiceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	err := h.dispatchService.UpdateHospitalService(c.Request.Context(), actor, models.HospitalService{
		Name:        request.Name,
		IsAvailable: *request.IsAvailable,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err, "hospital")
		return
	}

	utils.SuccessResponse(c, "Service updated", nil)
}
