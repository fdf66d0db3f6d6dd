package handlers

import (
	"rapidaid/internal/middleware"
	"rapidaid/internal/models"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverHandler struct {
	dispatchService services.DispatchService
	mediaService    services.MediaService
}

func NewDriverHandler(dispatchService services.DispatchService, mediaService services.MediaService) *DriverHandler {
	return &DriverHandler{
		dispatchService: dispatchService,
		mediaService:    mediaService,
	}
}

// ListOpenRequests shows pending emergencies the driver can take.
func (h *DriverHandler) ListOpenRequests(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	requests, err := h.dispatchService.ListOpenRequests(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "open requests")
		return
	}

	utils.SuccessResponseWithMeta(c, "Open requests retrieved", requests, &utils.Meta{Count: len(requests)})
}

// AcceptRequest claims a pending request for this driver.
func (h *DriverHandler) AcceptRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	actor := middleware.ActorFromContext(c)
	assignment, err := h.dispatchService.AcceptRequest(c.Request.Context(), actor, requestID)
	if err != nil {
		utils.DomainErrorResponse(c, err, "emergency request")
		return
	}

	utils.SuccessResponse(c, "Request accepted", assignment)
}

func (h *DriverHandler) GetActiveAssignment(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	assignment, err := h.dispatchService.GetActiveAssignment(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "assignment")
		return
	}

	utils.SuccessResponse(c, "Assignment retrieved", assignment)
}

// AdvanceAssignment moves the assignment one lifecycle step forward.
func (h *DriverHandler) AdvanceAssignment(c *gin.Context) {
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID")
		return
	}

	var request validators.AdvanceAssignmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	assignment, err := h.dispatchService.AdvanceAssignment(c.Request.Context(), actor, assignmentID, models.AssignmentStatus(request.Status))
	if err != nil {
		utils.DomainErrorResponse(c, err, "assignment")
		return
	}

	utils.SuccessResponse(c, "Assignment updated", assignment)
}

// SelectHospital records the destination and marks the ambulance en route.
func (h *DriverHandler) SelectHospital(c *gin.Context) {
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID")
		return
	}

	var request validators.SelectHospitalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}
	hospitalID, err := primitive.ObjectIDFromHex(request.HospitalID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid hospital ID")
		return
	}

	actor := middleware.ActorFromContext(c)
	assignment, err := h.dispatchService.SelectHospital(c.Request.Context(), actor, assignmentID, hospitalID)
	if err != nil {
		utils.DomainErrorResponse(c, err, "assignment")
		return
	}

	utils.SuccessResponse(c, "Hospital selected", assignment)
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var request validators.UpdateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.dispatchService.UpdateDriverLocation(c.Request.Context(), actor, request.Latitude, request.Longitude, request.Address); err != nil {
		utils.DomainErrorResponse(c, err, "driver")
		return
	}

	utils.SuccessResponse(c, "Location updated", nil)
}

func (h *DriverHandler) UpdateAvailability(c *gin.Context) {
	var request validators.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.dispatchService.UpdateDriverAvailability(c.Request.Context(), actor, *request.IsAvailable); err != nil {
		utils.DomainErrorResponse(c, err, "driver")
		return
	}

	utils.SuccessResponse(c, "Availability updated", nil)
}

// UploadAmbulanceImage accepts a multipart photo of the vehicle.
func (h *DriverHandler) UploadAmbulanceImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file required")
		return
	}
	defer file.Close()

	actor := middleware.ActorFromContext(c)
	url, err := h.mediaService.UploadAmbulanceImage(c.Request.Context(), actor, file, header.Size)
	if err != nil {
		utils.DomainErrorResponse(c, err, "driver")
		return
	}

	utils.SuccessResponse(c, "Image uploaded", gin.H{"url": url})
}
