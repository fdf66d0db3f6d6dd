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
	"rapidaid/pkg/sms"

	"golang.org/x/crypto/bcrypt"
)

type RequestOTPCommand struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type VerifyOTPCommand struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name,omitempty"`
	Age         int    `json:"age,omitempty"`
}

type RegisterDriverCommand struct {
	Name            string `json:"name" validate:"required"`
	Age             int    `json:"age" validate:"gte=18,lte=100"`
	LicenseNumber   string `json:"license_number" validate:"required"`
	AmbulanceNumber string `json:"ambulance_number" validate:"required"`
	Password        string `json:"password" validate:"required,strong_password"`
}

type RegisterHospitalCommand struct {
	Name               string                  `json:"name" validate:"required"`
	RegistrationNumber string                  `json:"registration_number" validate:"required"`
	Password           string                  `json:"password" validate:"required,strong_password"`
	Address            string                  `json:"address"`
	EmergencyContact   string                  `json:"emergency_contact"`
	Latitude           float64                 `json:"latitude"`
	Longitude          float64                 `json:"longitude"`
	Services           []models.HospitalService `json:"services,omitempty"`
}

// AuthResult couples the authenticated identity with its token pair.
type AuthResult struct {
	Actor  models.Actor     `json:"actor"`
	Tokens *utils.TokenPair `json:"tokens"`
}

type AuthService interface {
	// RequestPatientOTP creates a one-time code for the phone number and
	// sends it by SMS. Sends are throttled per phone number.
	RequestPatientOTP(ctx context.Context, cmd RequestOTPCommand) error

	// VerifyPatientOTP checks the code and logs the patient in, registering
	// them first when the phone number is new (name required then).
	VerifyPatientOTP(ctx context.Context, cmd VerifyOTPCommand) (*AuthResult, error)

	RegisterDriver(ctx context.Context, cmd RegisterDriverCommand) (*AuthResult, error)
	LoginDriver(ctx context.Context, licenseNumber, password string) (*AuthResult, error)

	RegisterHospital(ctx context.Context, cmd RegisterHospitalCommand) (*AuthResult, error)
	LoginHospital(ctx context.Context, registrationNumber, password string) (*AuthResult, error)

	RefreshTokens(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	UpdatePushToken(ctx context.Context, actor models.Actor, token string) error
}

type authService struct {
	patientRepo  interfaces.PatientRepository
	driverRepo   interfaces.DriverRepository
	hospitalRepo interfaces.HospitalRepository
	otpRepo      interfaces.OTPRepository
	smsProvider  sms.SMSProvider
	cache        CacheService
	logger       *logger.Logger
	jwtSecret    string
	smsFrom      string
}

func NewAuthService(
	patientRepo interfaces.PatientRepository,
	driverRepo interfaces.DriverRepository,
	hospitalRepo interfaces.HospitalRepository,
	otpRepo interfaces.OTPRepository,
	smsProvider sms.SMSProvider,
	cache CacheService,
	logger *logger.Logger,
	jwtSecret string,
	smsFrom string,
) AuthService {
	return &authService{
		patientRepo:  patientRepo,
		driverRepo:   driverRepo,
		hospitalRepo: hospitalRepo,
		otpRepo:      otpRepo,
		smsProvider:  smsProvider,
		cache:        cache,
		logger:       logger,
		jwtSecret:    jwtSecret,
		smsFrom:      smsFrom,
	}
}

func (s *authService) RequestPatientOTP(ctx context.Context, cmd RequestOTPCommand) error {
	phone := utils.NormalizePhone(cmd.PhoneNumber)
	if !utils.IsValidPhone(phone) {
		return errors.New("invalid phone number")
	}

	allowed, err := s.cache.CheckRateLimit(ctx, "otp:"+phone, utils.OTPRateLimit, utils.OTPExpiry)
	if err != nil {
		s.logger.WithError(err).Warn("OTP rate limit check failed, allowing send")
	} else if !allowed {
		return errors.New("too many codes requested, try again later")
	}

	otp := &models.OTPVerification{
		PhoneNumber: phone,
		Code:        utils.GenerateOTPCode(utils.OTPLength),
		ExpiresAt:   time.Now().Add(utils.OTPExpiry),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return err
	}

	if s.smsProvider == nil {
		s.logger.WithField("phone", phone).Debug("No SMS provider configured, code stored only")
		return nil
	}

	_, err = s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      phone,
		From:    s.smsFrom,
		Message: fmt.Sprintf("Your %s verification code is %s", utils.AppName, otp.Code),
		Type:    "otp",
	})
	if err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

func (s *authService) VerifyPatientOTP(ctx context.Context, cmd VerifyOTPCommand) (*AuthResult, error) {
	phone := utils.NormalizePhone(cmd.PhoneNumber)

	otp, err := s.otpRepo.GetActive(ctx, phone, cmd.Code)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, errors.New("invalid or expired code")
		}
		return nil, err
	}
	if err := s.otpRepo.MarkVerified(ctx, otp.ID); err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.GetByPhone(ctx, phone)
	if errors.Is(err, utils.ErrNotFound) {
		if cmd.Name == "" {
			return nil, errors.New("name required for first login")
		}
		patient = &models.Patient{
			Name:        cmd.Name,
			Age:         cmd.Age,
			PhoneNumber: phone,
			IsVerified:  true,
		}
		if err := s.patientRepo.Create(ctx, patient); err != nil {
			return nil, err
		}
		s.logger.WithActorID(patient.ID).Info("Patient registered")
	} else if err != nil {
		return nil, err
	} else if !patient.IsVerified {
		if err := s.patientRepo.Update(ctx, patient.ID, map[string]interface{}{"is_verified": true}); err != nil {
			return nil, err
		}
	}

	tokens, err := utils.GenerateTokenPair(patient.ID, string(models.ActorRolePatient), phone, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Actor:  models.Actor{ID: patient.ID, Role: models.ActorRolePatient},
		Tokens: tokens,
	}, nil
}

func (s *authService) RegisterDriver(ctx context.Context, cmd RegisterDriverCommand) (*AuthResult, error) {
	if err := utils.ValidatePasswordStrength(cmd.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	driver := &models.AmbulanceDriver{
		Name:            cmd.Name,
		Age:             cmd.Age,
		LicenseNumber:   cmd.LicenseNumber,
		AmbulanceNumber: cmd.AmbulanceNumber,
		PasswordHash:    string(hash),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	s.logger.WithActorID(driver.ID).Info("Driver registered")

	tokens, err := utils.GenerateTokenPair(driver.ID, string(models.ActorRoleDriver), "", s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Actor:  models.Actor{ID: driver.ID, Role: models.ActorRoleDriver},
		Tokens: tokens,
	}, nil
}

func (s *authService) LoginDriver(ctx context.Context, licenseNumber, password string) (*AuthResult, error) {
	driver, err := s.driverRepo.GetByLicenseNumber(ctx, licenseNumber)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(password)) != nil {
		return nil, errors.New("invalid credentials")
	}

	tokens, err := utils.GenerateTokenPair(driver.ID, string(models.ActorRoleDriver), "", s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Actor:  models.Actor{ID: driver.ID, Role: models.ActorRoleDriver},
		Tokens: tokens,
	}, nil
}

func (s *authService) RegisterHospital(ctx context.Context, cmd RegisterHospitalCommand) (*AuthResult, error) {
	if err := utils.ValidatePasswordStrength(cmd.Password); err != nil {
		return nil, err
	}
	if !utils.IsValidCoordinates(cmd.Latitude, cmd.Longitude) {
		return nil, utils.ErrInvalidCoordinate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hospital := &models.Hospital{
		Name:               cmd.Name,
		RegistrationNumber: cmd.RegistrationNumber,
		PasswordHash:       string(hash),
		Address:            cmd.Address,
		EmergencyContact:   cmd.EmergencyContact,
		Location:           models.NewLocation(cmd.Latitude, cmd.Longitude),
		Services:           cmd.Services,
	}
	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		return nil, err
	}
	s.logger.WithActorID(hospital.ID).Info("Hospital registered")

	tokens, err := utils.GenerateTokenPair(hospital.ID, string(models.ActorRoleHospital), "", s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Actor:  models.Actor{ID: hospital.ID, Role: models.ActorRoleHospital},
		Tokens: tokens,
	}, nil
}

func (s *authService) LoginHospital(ctx context.Context, registrationNumber, password string) (*AuthResult, error) {
	hospital, err := s.hospitalRepo.GetByRegistrationNumber(ctx, registrationNumber)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hospital.PasswordHash), []byte(password)) != nil {
		return nil, errors.New("invalid credentials")
	}

	tokens, err := utils.GenerateTokenPair(hospital.ID, string(models.ActorRoleHospital), "", s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Actor:  models.Actor{ID: hospital.ID, Role: models.ActorRoleHospital},
		Tokens: tokens,
	}, nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	tokens, err := utils.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, utils.ErrUnauthenticated
	}
	return tokens, nil
}

func (s *authService) UpdatePushToken(ctx context.Context, actor models.Actor, token string) error {
	if actor.IsZero() {
		return utils.ErrUnauthenticated
	}

	updates := map[string]interface{}{"push_token": token}
	switch actor.Role {
	case models.ActorRoleDriver:
		return s.driverRepo.Update(ctx, actor.ID, updates)
	case models.ActorRoleHospital:
		return s.hospitalRepo.Update(ctx, actor.ID, updates)
	}
	return errors.New("push tokens supported for drivers and hospitals only")
}
