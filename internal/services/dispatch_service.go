package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rapidaid/internal/models"
	"rapidaid/internal/repositories/interfaces"
	"rapidaid/internal/utils"
	"rapidaid/pkg/logger"
	"rapidaid/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateRequestCommand struct {
	Kind      models.RequestKind `json:"kind" validate:"required"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Address   string             `json:"address,omitempty"`
}

type HospitalCandidate struct {
	Hospital   *models.Hospital `json:"hospital"`
	DistanceKM float64          `json:"distance_km"`
	Distance   string           `json:"distance"`
}

type CreateRequestResult struct {
	Request   *models.EmergencyRequest `json:"request"`
	Hospitals []HospitalCandidate      `json:"hospitals,omitempty"`
}

// OpenRequestView is one pending request as shown to a driver browsing work.
type OpenRequestView struct {
	Request  *models.EmergencyRequest `json:"request"`
	Distance string                   `json:"distance,omitempty"`
	Age      string                   `json:"age"`
}

// IncomingPatientView is one en-route ambulance as shown on a hospital
// dashboard.
type IncomingPatientView struct {
	Assignment *models.Assignment       `json:"assignment"`
	Request    *models.EmergencyRequest `json:"request"`
	Patient    *models.Patient          `json:"patient,omitempty"`
	Driver     *models.AmbulanceDriver  `json:"driver"`
	DistanceKM float64                  `json:"distance_km"`
	ETAMinutes int                      `json:"eta_minutes"`
}

// RequestStatusView is the patient-facing polling payload for one request.
type RequestStatusView struct {
	Request    *models.EmergencyRequest `json:"request"`
	Assignment *models.Assignment       `json:"assignment,omitempty"`
	Driver     *models.AmbulanceDriver  `json:"driver,omitempty"`
	Hospital   *models.Hospital         `json:"hospital,omitempty"`
}

type DispatchService interface {
	// CreateRequest opens an emergency request at the given location. For
	// hospital_search the request completes immediately and the result
	// carries the nearest hospitals; for ambulance the request stays pending
	// and nearby available drivers are notified.
	CreateRequest(ctx context.Context, actor models.Actor, cmd CreateRequestCommand) (*CreateRequestResult, error)

	// AcceptRequest claims a pending ambulance request for the acting
	// driver. Exactly one driver wins; losers get ErrConcurrentModification
	// or ErrDriverBusy.
	AcceptRequest(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) (*models.Assignment, error)

	// AdvanceAssignment moves the acting driver's assignment one step
	// forward. The en-route step must go through SelectHospital instead.
	AdvanceAssignment(ctx context.Context, actor models.Actor, assignmentID primitive.ObjectID, next models.AssignmentStatus) (*models.Assignment, error)

	// SelectHospital records the destination hospital and moves the
	// assignment from picked_up to en_route_to_hospital.
	SelectHospital(ctx context.Context, actor models.Actor, assignmentID, hospitalID primitive.ObjectID) (*models.Assignment, error)

	// CancelRequest cancels the acting patient's own request while it is
	// still pending or accepted.
	CancelRequest(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) error

	GetRequestStatus(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) (*RequestStatusView, error)
	ListMyRequests(ctx context.Context, actor models.Actor) ([]*models.EmergencyRequest, error)
	ListOpenRequests(ctx context.Context, actor models.Actor) ([]*OpenRequestView, error)
	ListIncomingPatients(ctx context.Context, actor models.Actor) ([]*IncomingPatientView, error)
	ListNearbyHospitals(ctx context.Context, lat, lng float64) ([]HospitalCandidate, error)

	GetActiveAssignment(ctx context.Context, actor models.Actor) (*models.Assignment, error)
	UpdateDriverLocation(ctx context.Context, actor models.Actor, lat, lng float64, address string) error
	UpdateDriverAvailability(ctx context.Context, actor models.Actor, available bool) error
	UpdateHospitalService(ctx context.Context, actor models.Actor, service models.HospitalService) error
}

type dispatchService struct {
	requestRepo  interfaces.EmergencyRequestRepository
	assignRepo   interfaces.AssignmentRepository
	driverRepo   interfaces.DriverRepository
	hospitalRepo interfaces.HospitalRepository
	patientRepo  interfaces.PatientRepository
	notifier     NotificationService
	mapsProvider maps.MapsProvider
	cache        CacheService
	logger       *logger.Logger
}

func NewDispatchService(
	requestRepo interfaces.EmergencyRequestRepository,
	assignRepo interfaces.AssignmentRepository,
	driverRepo interfaces.DriverRepository,
	hospitalRepo interfaces.HospitalRepository,
	patientRepo interfaces.PatientRepository,
	notifier NotificationService,
	mapsProvider maps.MapsProvider,
	cache CacheService,
	logger *logger.Logger,
) DispatchService {
	return &dispatchService{
		requestRepo:  requestRepo,
		assignRepo:   assignRepo,
		driverRepo:   driverRepo,
		hospitalRepo: hospitalRepo,
		patientRepo:  patientRepo,
		notifier:     notifier,
		mapsProvider: mapsProvider,
		cache:        cache,
		logger:       logger,
	}
}

func (s *dispatchService) CreateRequest(ctx context.Context, actor models.Actor, cmd CreateRequestCommand) (*CreateRequestResult, error) {
	if !utils.IsValidCoordinates(cmd.Latitude, cmd.Longitude) {
		return nil, utils.ErrInvalidCoordinate
	}
	if cmd.Kind != models.RequestKindAmbulance && cmd.Kind != models.RequestKindHospitalSearch {
		return nil, fmt.Errorf("unknown request kind %q: %w", cmd.Kind, utils.ErrInvalidTransition)
	}

	request := &models.EmergencyRequest{
		Kind:     cmd.Kind,
		Location: models.NewLocation(cmd.Latitude, cmd.Longitude),
	}
	request.Location.Address = cmd.Address
	if request.Location.Address == "" {
		request.Location.Address = s.resolveAddress(ctx, cmd.Latitude, cmd.Longitude)
	}
	if actor.Role == models.ActorRolePatient && !actor.IsZero() {
		id := actor.ID
		request.PatientID = &id
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.LogDispatchEvent(request.ID, "request_created", map[string]interface{}{
		"kind": string(cmd.Kind),
	})

	result := &CreateRequestResult{Request: request}

	if cmd.Kind == models.RequestKindHospitalSearch {
		hospitals, err := s.ListNearbyHospitals(ctx, cmd.Latitude, cmd.Longitude)
		if err != nil {
			return nil, err
		}
		result.Hospitals = hospitals

		// A hospital search has no lifecycle to track; close it out as soon
		// as the candidates are returned.
		now := time.Now()
		if err := s.requestRepo.UpdateStatusIf(ctx, request.ID, models.RequestStatusPending, models.RequestStatusCompleted,
			map[string]interface{}{"completed_at": now}); err != nil {
			return nil, err
		}
		request.Status = models.RequestStatusCompleted
		request.CompletedAt = &now
		return result, nil
	}

	s.notifyNearbyDrivers(ctx, request, cmd.Latitude, cmd.Longitude)
	return result, nil
}

// notifyNearbyDrivers fans out to the closest available drivers with a fresh
// location. Failures are logged; the request is already persisted and a
// driver who got no notification can still find it in the open list.
func (s *dispatchService) notifyNearbyDrivers(ctx context.Context, request *models.EmergencyRequest, lat, lng float64) {
	drivers, err := s.driverRepo.GetAvailable(ctx, 0)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load available drivers for fan-out")
		return
	}

	var candidates []utils.Point
	var eligible []*models.AmbulanceDriver
	for _, d := range drivers {
		if !d.HasFreshLocation(utils.DriverLocationStaleAfter) {
			continue
		}
		candidates = append(candidates, utils.Point{
			Lat: d.CurrentLocation.Latitude(),
			Lng: d.CurrentLocation.Longitude(),
		})
		eligible = append(eligible, d)
	}

	ranked, err := utils.RankByDistance(utils.Point{Lat: lat, Lng: lng}, candidates, utils.DriverCandidateLimit)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to rank drivers for fan-out")
		return
	}

	requestID := request.ID
	for _, r := range ranked {
		driver := eligible[r.Index]
		message := fmt.Sprintf("New emergency request %s away", utils.FormatDistanceKM(r.DistanceKM))
		if err := s.notifier.Notify(ctx, models.ActorRoleDriver, driver.ID, message, &requestID, nil); err != nil {
			s.logger.WithError(err).
				WithField("driver_id", driver.ID.Hex()).
				Warn("Driver fan-out notification failed")
		}
	}
}

func (s *dispatchService) AcceptRequest(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) (*models.Assignment, error) {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.assignRepo.GetActiveByDriver(ctx, driver.ID); err == nil {
		return nil, utils.ErrDriverBusy
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Kind != models.RequestKindAmbulance {
		return nil, utils.ErrInvalidTransition
	}
	if request.Status.IsTerminal() {
		return nil, utils.ErrAlreadyFinalized
	}
	if request.Status != models.RequestStatusPending {
		return nil, utils.ErrInvalidTransition
	}

	// Claim the driver before touching the request so a concurrent accept
	// from the same driver cannot hold two assignments.
	if err := s.driverRepo.ClaimForDispatch(ctx, driver.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.requestRepo.UpdateStatusIf(ctx, requestID, models.RequestStatusPending, models.RequestStatusAccepted,
		map[string]interface{}{"accepted_at": now})
	if err != nil {
		if rerr := s.driverRepo.Release(ctx, driver.ID); rerr != nil {
			s.logger.WithError(rerr).
				WithField("driver_id", driver.ID.Hex()).
				Error("Failed to release driver after lost accept race")
		}
		if errors.Is(err, utils.ErrConcurrentModification) {
			// Re-read to tell a finished request apart from a lost race.
			if current, gerr := s.requestRepo.GetByID(ctx, requestID); gerr == nil && current.Status.IsTerminal() {
				return nil, utils.ErrAlreadyFinalized
			}
		}
		return nil, err
	}

	assignment := &models.Assignment{
		RequestID: requestID,
		DriverID:  driver.ID,
	}
	if err := s.assignRepo.Create(ctx, assignment); err != nil {
		// Undo the accept so the request goes back on the board instead of
		// sitting claimed with no assignment behind it.
		if rerr := s.requestRepo.UpdateStatusIf(ctx, requestID, models.RequestStatusAccepted, models.RequestStatusPending, nil); rerr != nil {
			s.logger.WithError(rerr).
				WithEmergencyID(requestID).
				Error("Failed to return request to pending after assignment write failure")
		}
		if rerr := s.driverRepo.Release(ctx, driver.ID); rerr != nil {
			s.logger.WithError(rerr).
				WithField("driver_id", driver.ID.Hex()).
				Error("Failed to release driver after assignment write failure")
		}
		return nil, err
	}

	s.logger.LogDispatchEvent(requestID, "request_accepted", map[string]interface{}{
		"driver_id":     driver.ID.Hex(),
		"assignment_id": assignment.ID.Hex(),
	})

	if request.PatientID != nil {
		message := fmt.Sprintf("Ambulance %s is on the way", driver.AmbulanceNumber)
		if err := s.notifier.Notify(ctx, models.ActorRolePatient, *request.PatientID, message, &requestID, &assignment.ID); err != nil {
			s.logger.WithError(err).Warn("Patient accept notification failed")
		}
	}

	return assignment, nil
}

func (s *dispatchService) AdvanceAssignment(ctx context.Context, actor models.Actor, assignmentID primitive.ObjectID, next models.AssignmentStatus) (*models.Assignment, error) {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.DriverID != driver.ID {
		return nil, utils.ErrNotFound
	}
	if assignment.Status.IsTerminal() {
		return nil, utils.ErrAlreadyFinalized
	}
	if next == models.AssignmentStatusEnRoute {
		// The en-route step carries the hospital choice and has its own
		// operation.
		return nil, utils.ErrInvalidTransition
	}
	if !assignment.Status.CanAdvanceTo(next) {
		return nil, utils.ErrInvalidTransition
	}

	now := time.Now()
	extra := map[string]interface{}{}
	if field := next.MilestoneField(); field != "" {
		extra[field] = now
	}

	if err := s.assignRepo.UpdateStatusIf(ctx, assignmentID, assignment.Status, next, extra); err != nil {
		return nil, err
	}

	requestExtra := map[string]interface{}{}
	if next == models.AssignmentStatusCompleted {
		requestExtra["completed_at"] = now
	}
	if err := s.requestRepo.UpdateStatusIf(ctx, assignment.RequestID, assignment.Status.RequestStatusFor(), next.RequestStatusFor(), requestExtra); err != nil {
		// The assignment write already landed; the request catches up on the
		// next transition or stays one step behind for the audit trail.
		s.logger.WithError(err).
			WithEmergencyID(assignment.RequestID).
			Error("Request status lagged behind assignment")
	}

	if next == models.AssignmentStatusCompleted {
		if err := s.driverRepo.Release(ctx, driver.ID); err != nil {
			s.logger.WithError(err).
				WithField("driver_id", driver.ID.Hex()).
				Error("Failed to release driver after completion")
		}
	}

	s.logger.LogDispatchEvent(assignment.RequestID, "assignment_advanced", map[string]interface{}{
		"assignment_id": assignmentID.Hex(),
		"from":          string(assignment.Status),
		"to":            string(next),
	})

	s.notifyMilestone(ctx, assignment, next)

	updated, err := s.assignRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *dispatchService) notifyMilestone(ctx context.Context, assignment *models.Assignment, next models.AssignmentStatus) {
	request, err := s.requestRepo.GetByID(ctx, assignment.RequestID)
	if err != nil {
		s.logger.WithError(err).Warn("Milestone notification skipped, request unreadable")
		return
	}

	var patientMsg string
	switch next {
	case models.AssignmentStatusPickedUp:
		patientMsg = "You have been picked up by the ambulance"
	case models.AssignmentStatusArrived:
		patientMsg = "You have arrived at the hospital"
	case models.AssignmentStatusCompleted:
		patientMsg = "Your emergency request has been completed"
	}

	if patientMsg != "" && request.PatientID != nil {
		if err := s.notifier.Notify(ctx, models.ActorRolePatient, *request.PatientID, patientMsg, &assignment.RequestID, &assignment.ID); err != nil {
			s.logger.WithError(err).Warn("Patient milestone notification failed")
		}
	}

	if assignment.HospitalID == nil {
		return
	}
	var hospitalMsg string
	switch next {
	case models.AssignmentStatusArrived:
		hospitalMsg = "An ambulance has arrived with a patient"
	case models.AssignmentStatusCompleted:
		hospitalMsg = "Patient handover completed"
	}
	if hospitalMsg != "" {
		if err := s.notifier.Notify(ctx, models.ActorRoleHospital, *assignment.HospitalID, hospitalMsg, &assignment.RequestID, &assignment.ID); err != nil {
			s.logger.WithError(err).Warn("Hospital milestone notification failed")
		}
	}
}

func (s *dispatchService) SelectHospital(ctx context.Context, actor models.Actor, assignmentID, hospitalID primitive.ObjectID) (*models.Assignment, error) {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.DriverID != driver.ID {
		return nil, utils.ErrNotFound
	}
	if assignment.Status.IsTerminal() {
		return nil, utils.ErrAlreadyFinalized
	}
	if assignment.Status != models.AssignmentStatusPickedUp {
		return nil, utils.ErrInvalidTransition
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.assignRepo.UpdateStatusIf(ctx, assignmentID, models.AssignmentStatusPickedUp, models.AssignmentStatusEnRoute,
		map[string]interface{}{
			"hospital_id":          hospitalID,
			"hospital_selected_at": now,
		})
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateStatusIf(ctx, assignment.RequestID, models.RequestStatusPickedUp, models.RequestStatusEnRoute,
		map[string]interface{}{"hospital_id": hospitalID}); err != nil {
		s.logger.WithError(err).
			WithEmergencyID(assignment.RequestID).
			Error("Request status lagged behind assignment")
	}

	s.logger.LogDispatchEvent(assignment.RequestID, "hospital_selected", map[string]interface{}{
		"assignment_id": assignmentID.Hex(),
		"hospital_id":   hospitalID.Hex(),
	})

	message := fmt.Sprintf("Ambulance %s is inbound with a patient", driver.AmbulanceNumber)
	if err := s.notifier.Notify(ctx, models.ActorRoleHospital, hospitalID, message, &assignment.RequestID, &assignmentID); err != nil {
		s.logger.WithError(err).Warn("Hospital inbound notification failed")
	}

	request, err := s.requestRepo.GetByID(ctx, assignment.RequestID)
	if err == nil && request.PatientID != nil {
		patientMsg := fmt.Sprintf("You are being taken to %s", hospital.Name)
		if err := s.notifier.Notify(ctx, models.ActorRolePatient, *request.PatientID, patientMsg, &assignment.RequestID, &assignmentID); err != nil {
			s.logger.WithError(err).Warn("Patient hospital notification failed")
		}
	}

	updated, err := s.assignRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *dispatchService) CancelRequest(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) error {
	if actor.IsZero() || actor.Role != models.ActorRolePatient {
		return utils.ErrUnauthenticated
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.PatientID == nil || *request.PatientID != actor.ID {
		return utils.ErrNotFound
	}
	if request.Status.IsTerminal() {
		return utils.ErrAlreadyFinalized
	}
	if !request.Status.CanCancel() {
		return utils.ErrInvalidTransition
	}

	now := time.Now()
	if err := s.requestRepo.UpdateStatusIf(ctx, requestID, request.Status, models.RequestStatusCanceled,
		map[string]interface{}{
			"canceled_at": now,
			"canceled_by": string(models.ActorRolePatient),
		}); err != nil {
		return err
	}

	s.logger.LogDispatchEvent(requestID, "request_canceled", map[string]interface{}{
		"from": string(request.Status),
	})

	if request.Status != models.RequestStatusAccepted {
		return nil
	}

	// A driver was already attached; cancel their assignment and free them.
	assignment, err := s.assignRepo.GetByRequest(ctx, requestID)
	if err != nil {
		s.logger.WithError(err).
			WithEmergencyID(requestID).
			Error("Canceled request has no readable assignment")
		return nil
	}

	if err := s.assignRepo.UpdateStatusIf(ctx, assignment.ID, models.AssignmentStatusAssigned, models.AssignmentStatusCanceled, nil); err != nil {
		s.logger.WithError(err).
			WithAssignmentID(assignment.ID).
			Error("Failed to cancel assignment after request cancel")
		return nil
	}
	if err := s.driverRepo.Release(ctx, assignment.DriverID); err != nil {
		s.logger.WithError(err).
			WithField("driver_id", assignment.DriverID.Hex()).
			Error("Failed to release driver after cancel")
	}

	if err := s.notifier.Notify(ctx, models.ActorRoleDriver, assignment.DriverID, "The patient canceled the emergency request", &requestID, &assignment.ID); err != nil {
		s.logger.WithError(err).Warn("Driver cancel notification failed")
	}
	return nil
}

func (s *dispatchService) GetRequestStatus(ctx context.Context, actor models.Actor, requestID primitive.ObjectID) (*RequestStatusView, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.PatientID != nil && (actor.IsZero() || *request.PatientID != actor.ID) {
		return nil, utils.ErrNotFound
	}

	view := &RequestStatusView{Request: request}

	assignment, err := s.assignRepo.GetByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.Assignment = assignment

	if driver, err := s.driverRepo.GetByID(ctx, assignment.DriverID); err == nil {
		view.Driver = driver
	}
	if assignment.HospitalID != nil {
		if hospital, err := s.hospitalRepo.GetByID(ctx, *assignment.HospitalID); err == nil {
			view.Hospital = hospital
		}
	}
	return view, nil
}

func (s *dispatchService) ListMyRequests(ctx context.Context, actor models.Actor) ([]*models.EmergencyRequest, error) {
	if actor.IsZero() || actor.Role != models.ActorRolePatient {
		return nil, utils.ErrUnauthenticated
	}
	return s.requestRepo.ListByPatient(ctx, actor.ID, int64(utils.DefaultPageSize))
}

func (s *dispatchService) ListOpenRequests(ctx context.Context, actor models.Actor) ([]*OpenRequestView, error) {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListPendingAmbulance(ctx, utils.OpenRequestLimit)
	if err != nil {
		return nil, err
	}

	views := make([]*OpenRequestView, 0, len(requests))
	for _, request := range requests {
		view := &OpenRequestView{
			Request: request,
			Age:     utils.FormatRelativeAge(request.CreatedAt),
		}
		if driver.HasFreshLocation(utils.DriverLocationStaleAfter) {
			km := utils.CalculateDistance(
				driver.CurrentLocation.Latitude(), driver.CurrentLocation.Longitude(),
				request.Location.Latitude(), request.Location.Longitude(),
			)
			view.Distance = utils.FormatDistanceKM(km)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *dispatchService) ListIncomingPatients(ctx context.Context, actor models.Actor) ([]*IncomingPatientView, error) {
	if actor.IsZero() || actor.Role != models.ActorRoleHospital {
		return nil, utils.ErrUnauthenticated
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignRepo.ListEnRouteByHospital(ctx, hospital.ID)
	if err != nil {
		return nil, err
	}

	views := make([]*IncomingPatientView, 0, len(assignments))
	for _, assignment := range assignments {
		driver, err := s.driverRepo.GetByID(ctx, assignment.DriverID)
		if err != nil {
			s.logger.WithError(err).
				WithAssignmentID(assignment.ID).
				Warn("Incoming list skipped assignment with missing driver")
			continue
		}

		view := &IncomingPatientView{
			Assignment: assignment,
			Driver:     driver,
		}

		if request, err := s.requestRepo.GetByID(ctx, assignment.RequestID); err == nil {
			view.Request = request
			if request.PatientID != nil {
				if patient, err := s.patientRepo.GetByID(ctx, *request.PatientID); err == nil {
					view.Patient = patient
				}
			}
		}

		if driver.CurrentLocation != nil {
			view.DistanceKM = utils.CalculateDistance(
				driver.CurrentLocation.Latitude(), driver.CurrentLocation.Longitude(),
				hospital.Location.Latitude(), hospital.Location.Longitude(),
			)
			view.ETAMinutes = s.estimateETA(ctx, driver.CurrentLocation, &hospital.Location, view.DistanceKM)
		}

		views = append(views, view)
	}
	return views, nil
}

// resolveAddress fills in a street address for the incident so responders
// are not navigating by raw coordinates. Best effort, an empty address is
// acceptable.
func (s *dispatchService) resolveAddress(ctx context.Context, lat, lng float64) string {
	if s.mapsProvider == nil {
		return ""
	}
	resp, err := s.mapsProvider.ReverseGeocode(ctx, lat, lng)
	if err != nil || len(resp.Results) == 0 {
		if err != nil {
			s.logger.WithError(err).Debug("Reverse geocode failed")
		}
		return ""
	}
	return resp.Results[0].Address
}

// estimateETA asks the maps provider for a driving estimate and falls back to
// a fixed average speed over the great-circle distance.
func (s *dispatchService) estimateETA(ctx context.Context, from, to *models.Location, distanceKM float64) int {
	if s.mapsProvider != nil {
		resp, err := s.mapsProvider.GetDirections(ctx, &maps.DirectionsRequest{
			Origin:      maps.Location{Latitude: from.Latitude(), Longitude: from.Longitude()},
			Destination: maps.Location{Latitude: to.Latitude(), Longitude: to.Longitude()},
			Mode:        "driving",
		})
		if err == nil && len(resp.Routes) > 0 && resp.Routes[0].Duration.Value > 0 {
			return (resp.Routes[0].Duration.Value + 59) / 60
		}
		if err != nil {
			s.logger.WithError(err).Debug("Directions lookup failed, using haversine ETA")
		}
	}
	return utils.EstimateETAMinutes(distanceKM, utils.AmbulanceAverageSpeedKMH)
}

func (s *dispatchService) ListNearbyHospitals(ctx context.Context, lat, lng float64) ([]HospitalCandidate, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, utils.ErrInvalidCoordinate
	}

	hospitals, err := s.hospitalRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]utils.Point, len(hospitals))
	for i, h := range hospitals {
		points[i] = utils.Point{Lat: h.Location.Latitude(), Lng: h.Location.Longitude()}
	}

	ranked, err := utils.RankByDistance(utils.Point{Lat: lat, Lng: lng}, points, utils.HospitalCandidateLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]HospitalCandidate, 0, len(ranked))
	for _, r := range ranked {
		candidates = append(candidates, HospitalCandidate{
			Hospital:   hospitals[r.Index],
			DistanceKM: r.DistanceKM,
			Distance:   utils.FormatDistanceKM(r.DistanceKM),
		})
	}
	return candidates, nil
}

func (s *dispatchService) GetActiveAssignment(ctx context.Context, actor models.Actor) (*models.Assignment, error) {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.assignRepo.GetActiveByDriver(ctx, driver.ID)
}

func (s *dispatchService) UpdateDriverLocation(ctx context.Context, actor models.Actor, lat, lng float64, address string) error {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return err
	}
	if !utils.IsValidCoordinates(lat, lng) {
		return utils.ErrInvalidCoordinate
	}

	location := models.NewLocation(lat, lng)
	location.Address = address

	if err := s.driverRepo.UpdateLocation(ctx, driver.ID, location); err != nil {
		return err
	}

	if err := s.cache.SetDriverLocation(ctx, driver.ID, &location, utils.DriverLocationStaleAfter); err != nil {
		s.logger.WithError(err).Debug("Failed to cache driver location")
	}
	return nil
}

func (s *dispatchService) UpdateDriverAvailability(ctx context.Context, actor models.Actor, available bool) error {
	driver, err := s.requireDriver(ctx, actor)
	if err != nil {
		return err
	}

	if available {
		// A driver mid-assignment cannot advertise as free.
		if _, err := s.assignRepo.GetActiveByDriver(ctx, driver.ID); err == nil {
			return utils.ErrDriverBusy
		} else if !errors.Is(err, utils.ErrNotFound) {
			return err
		}
	}

	return s.driverRepo.Update(ctx, driver.ID, map[string]interface{}{
		"is_available": available,
	})
}

func (s *dispatchService) UpdateHospitalService(ctx context.Context, actor models.Actor, service models.HospitalService) error {
	if actor.IsZero() || actor.Role != models.ActorRoleHospital {
		return utils.ErrUnauthenticated
	}
	if service.Name == "" {
		return errors.New("service name required")
	}
	return s.hospitalRepo.UpsertService(ctx, actor.ID, service)
}

func (s *dispatchService) requireDriver(ctx context.Context, actor models.Actor) (*models.AmbulanceDriver, error) {
	if actor.IsZero() || actor.Role != models.ActorRoleDriver {
		return nil, utils.ErrUnauthenticated
	}
	return s.driverRepo.GetByID(ctx, actor.ID)
}
