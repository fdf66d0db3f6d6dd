package services

import (
	"context"
	"errors"

	"rapidaid/internal/models"
	"rapidaid/internal/repositories/interfaces"
	"rapidaid/internal/utils"
	"rapidaid/pkg/logger"
)

type MedicalHistoryCommand struct {
	Condition        string `json:"condition" validate:"required"`
	Notes            string `json:"notes,omitempty"`
	OperationDetails string `json:"operation_details,omitempty"`
}

type PatientService interface {
	GetProfile(ctx context.Context, actor models.Actor) (*models.Patient, error)
	UpdateProfile(ctx context.Context, actor models.Actor, name string, age int) (*models.Patient, error)
	AddMedicalHistory(ctx context.Context, actor models.Actor, cmd MedicalHistoryCommand) error
	ListMedicalHistory(ctx context.Context, actor models.Actor) ([]models.MedicalHistoryEntry, error)
}

type patientService struct {
	patientRepo interfaces.PatientRepository
	logger      *logger.Logger
}

func NewPatientService(patientRepo interfaces.PatientRepository, logger *logger.Logger) PatientService {
	return &patientService{
		patientRepo: patientRepo,
		logger:      logger,
	}
}

func (s *patientService) requirePatient(actor models.Actor) error {
	if actor.IsZero() || actor.Role != models.ActorRolePatient {
		return utils.ErrUnauthenticated
	}
	return nil
}

func (s *patientService) GetProfile(ctx context.Context, actor models.Actor) (*models.Patient, error) {
	if err := s.requirePatient(actor); err != nil {
		return nil, err
	}
	return s.patientRepo.GetByID(ctx, actor.ID)
}

func (s *patientService) UpdateProfile(ctx context.Context, actor models.Actor, name string, age int) (*models.Patient, error) {
	if err := s.requirePatient(actor); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if age > 0 {
		updates["age"] = age
	}
	if len(updates) > 0 {
		if err := s.patientRepo.Update(ctx, actor.ID, updates); err != nil {
			return nil, err
		}
	}
	return s.patientRepo.GetByID(ctx, actor.ID)
}

func (s *patientService) AddMedicalHistory(ctx context.Context, actor models.Actor, cmd MedicalHistoryCommand) error {
	if err := s.requirePatient(actor); err != nil {
		return err
	}
	if cmd.Condition == "" {
		return errors.New("condition required")
	}

	entry := models.MedicalHistoryEntry{
		Condition:        cmd.Condition,
		Notes:            cmd.Notes,
		OperationDetails: cmd.OperationDetails,
	}
	return s.patientRepo.AddMedicalHistory(ctx, actor.ID, entry)
}

func (s *patientService) ListMedicalHistory(ctx context.Context, actor models.Actor) ([]models.MedicalHistoryEntry, error) {
	if err := s.requirePatient(actor); err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return patient.MedicalHistory, nil
}
