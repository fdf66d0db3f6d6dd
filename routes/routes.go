package routes

import (
	"rapidaid/internal/handlers"
	"rapidaid/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Emergency    *handlers.EmergencyHandler
	Driver       *handlers.DriverHandler
	Hospital     *handlers.HospitalHandler
	Notification *handlers.NotificationHandler
	Patient      *handlers.PatientHandler
}

// Setup mounts the full API under /api/v1.
func Setup(r *gin.Engine, h *Handlers, jwtSecret string) {
	api := r.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth, jwtSecret)
	SetupEmergencyRoutes(api, h.Emergency, jwtSecret)
	SetupDriverRoutes(api, h.Driver, jwtSecret)
	SetupHospitalRoutes(api, h.Hospital, jwtSecret)
	SetupNotificationRoutes(api, h.Notification, jwtSecret)
	SetupPatientRoutes(api, h.Patient, jwtSecret)
}

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/patient/otp", authHandler.RequestOTP)
		auth.POST("/patient/verify", authHandler.VerifyOTP)
		auth.POST("/driver/register", authHandler.RegisterDriver)
		auth.POST("/driver/login", authHandler.LoginDriver)
		auth.POST("/hospital/register", authHandler.RegisterHospital)
		auth.POST("/hospital/login", authHandler.LoginHospital)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	account := r.Group("/account")
	account.Use(middleware.AuthRequired(jwtSecret))
	{
		account.PUT("/push-token", authHandler.UpdatePushToken)
	}
}

func SetupEmergencyRoutes(r *gin.RouterGroup, emergencyHandler *handlers.EmergencyHandler, jwtSecret string) {
	// Creation and status work without login so a bystander can call an
	// ambulance.
	public := r.Group("/emergencies")
	public.Use(middleware.OptionalAuth(jwtSecret))
	{
		public.POST("", emergencyHandler.CreateRequest)
		public.GET("/:id", emergencyHandler.GetRequest)
		public.GET("/hospitals/nearby", emergencyHandler.NearbyHospitals)
	}

	patient := r.Group("/emergencies")
	patient.Use(middleware.AuthRequired(jwtSecret), middleware.PatientRequired())
	{
		patient.PUT("/:id/cancel", emergencyHandler.CancelRequest)
		patient.GET("/mine/history", emergencyHandler.ListMyRequests)
	}
}

func SetupDriverRoutes(r *gin.RouterGroup, driverHandler *handlers.DriverHandler, jwtSecret string) {
	driver := r.Group("/driver")
	driver.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		driver.GET("/requests/open", driverHandler.ListOpenRequests)
		driver.POST("/requests/:id/accept", driverHandler.AcceptRequest)
		driver.GET("/assignment", driverHandler.GetActiveAssignment)
		driver.PUT("/assignments/:id/status", driverHandler.AdvanceAssignment)
		driver.PUT("/assignments/:id/hospital", driverHandler.SelectHospital)
		driver.PUT("/location", driverHandler.UpdateLocation)
		driver.PUT("/availability", driverHandler.UpdateAvailability)
		driver.POST("/ambulance/image", driverHandler.UploadAmbulanceImage)
	}
}

func SetupHospitalRoutes(r *gin.RouterGroup, hospitalHandler *handlers.HospitalHandler, jwtSecret string) {
	hospital := r.Group("/hospital")
	hospital.Use(middleware.AuthRequired(jwtSecret), middleware.HospitalRequired())
	{
		hospital.GET("/incoming", hospitalHandler.ListIncomingPatients)
		hospital.PUT("/services", hospitalHandler.UpdateService)
	}
}

func SetupNotificationRoutes(r *gin.RouterGroup, notificationHandler *handlers.NotificationHandler, jwtSecret string) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthRequired(jwtSecret))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread", notificationHandler.UnreadCount)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
	}
}

func SetupPatientRoutes(r *gin.RouterGroup, patientHandler *handlers.PatientHandler, jwtSecret string) {
	patient := r.Group("/patient")
	patient.Use(middleware.AuthRequired(jwtSecret), middleware.PatientRequired())
	{
		patient.GET("/profile", patientHandler.GetProfile)
		patient.PUT("/profile", patientHandler.UpdateProfile)
		patient.GET("/medical-history", patientHandler.ListMedicalHistory)
		patient.POST("/medical-history", patientHandler.AddMedicalHistory)
	}
}
