package utils

import "time"

// Application Constants
const (
	AppName    = "RapidAid"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage    = "en"
	DefaultCountryCode = "+1"
	DefaultTimeZone    = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128
	OTPLength          = 4
	OTPExpiry          = 10 * time.Minute

	// Dispatch Constants
	EarthRadiusKM          = 6371.0
	DriverCandidateLimit   = 5
	HospitalCandidateLimit = 10
	OpenRequestLimit       = 10
	DefaultSearchRadius    = 10.0 // kilometers
	MaxSearchRadius        = 50.0 // kilometers

	// Driver Constants
	DriverLocationStaleAfter = 10 * time.Minute
	AmbulanceAverageSpeedKMH = 50.0

	// Notification
	NotificationListLimit = 20
	NotificationTimeout   = 30 * time.Second

	// File Upload
	MaxImageSize        = 5 * 1024 * 1024 // 5MB
	AmbulanceThumbWidth = 320

	// Rate Limiting
	DefaultRateLimit = 100
	LoginRateLimit   = 5
	OTPRateLimit     = 3
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Generic error messages surfaced to clients
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "Access denied"
)
