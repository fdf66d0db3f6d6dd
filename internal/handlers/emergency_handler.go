package handlers

import (
	"strconv"

	"rapidaid/internal/middleware"
	"rapidaid/internal/models"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyHandler struct {
	dispatchService services.DispatchService
}

func NewEmergencyHandler(dispatchService services.DispatchService) *EmergencyHandler {
	return &EmergencyHandler{
		dispatchService: dispatchService,
	}
}

// CreateRequest opens a new emergency request. Works for both logged-in
// patients and anonymous callers.
func (h *EmergencyHandler) CreateRequest(c *gin.Context) {
	var request validators.CreateEmergencyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	actor := middleware.ActorFromContext(c)
	result, err := h.dispatchService.CreateRequest(c.Request.Context(), actor, services.CreateRequestCommand{
		Kind:      models.RequestKind(request.Kind),
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		Address:   request.Address,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err, "emergency request")
		return
	}

	utils.CreatedResponse(c, "Emergency request created", result)
}

// GetRequest returns the current state of one request for status polling.
func (h *EmergencyHandler) GetRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	actor := middleware.ActorFromContext(c)
	view, err := h.dispatchService.GetRequestStatus(c.Request.Context(), actor, requestID)
	if err != nil {
		utils.DomainErrorResponse(c, err, "emergency request")
		return
	}

	utils.SuccessResponse(c, "Request retrieved", view)
}

func (h *EmergencyHandler) CancelRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.dispatchService.CancelRequest(c.Request.Context(), actor, requestID); err != nil {
		utils.DomainErrorResponse(c, err, "emergency request")
		return
	}

	utils.SuccessResponse(c, "Request canceled", nil)
}

func (h *EmergencyHandler) ListMyRequests(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	requests, err := h.dispatchService.ListMyRequests(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "emergency requests")
		return
	}

	utils.SuccessResponseWithMeta(c, "Requests retrieved", requests, &utils.Meta{Count: len(requests)})
}

// NearbyHospitals ranks hospitals around a point without opening a request.
func (h *EmergencyHandler) NearbyHospitals(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid longitude")
		return
	}

	hospitals, err := h.dispatchService.ListNearbyHospitals(c.Request.Context(), lat, lng)
	if err != nil {
		utils.DomainErrorResponse(c, err, "hospitals")
		return
	}

	utils.SuccessResponseWithMeta(c, "Hospitals retrieved", hospitals, &utils.Meta{Count: len(hospitals)})
}
