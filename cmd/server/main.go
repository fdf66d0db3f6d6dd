package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rapidaid/internal/config"
	"rapidaid/internal/handlers"
	"rapidaid/internal/middleware"
	"rapidaid/internal/models"
	"rapidaid/internal/repositories/mongodb"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"
	"rapidaid/pkg/cache"
	"rapidaid/pkg/database"
	"rapidaid/pkg/logger"
	"rapidaid/pkg/maps"
	"rapidaid/pkg/push"
	"rapidaid/pkg/sms"
	"rapidaid/pkg/storage"
	"rapidaid/pkg/websocket"
	"rapidaid/routes"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Colors:     config.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.EnsureIndexes(db.Database); err != nil {
		appLogger.WithError(err).Fatal("Failed to create indexes")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	smsProvider := buildSMSProvider(cfg, appLogger)
	pushProvider := buildPushProvider(cfg, appLogger)
	storageProvider := buildStorageProvider(cfg, appLogger)
	mapsProvider := buildMapsProvider(cfg, appLogger)

	jwtSecret := cfg.Security.JWTSecret

	wsHandler := websocket.NewHandler(websocket.Config{
		ReadBufferSize:    cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:   cfg.WebSocket.WriteBufferSize,
		PingInterval:      cfg.WebSocket.PingInterval,
		PongTimeout:       cfg.WebSocket.PongTimeout,
		EnableCompression: cfg.WebSocket.EnableCompression,
		AllowedOrigins:    cfg.WebSocket.AllowedOrigins,
	}, func(c *gin.Context) (primitive.ObjectID, string, bool) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			return primitive.NilObjectID, "", false
		}
		claims, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			return primitive.NilObjectID, "", false
		}
		return claims.ActorID, claims.ActorRole, true
	})

	patientRepo := mongodb.NewPatientRepository(db.Database)
	driverRepo := mongodb.NewDriverRepository(db.Database)
	hospitalRepo := mongodb.NewHospitalRepository(db.Database)
	requestRepo := mongodb.NewEmergencyRequestRepository(db.Database)
	assignRepo := mongodb.NewAssignmentRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)
	otpRepo := mongodb.NewOTPRepository(db.Database)

	cacheService := services.NewCacheService(redisCache, appLogger)
	notificationService := services.NewNotificationService(
		notificationRepo, driverRepo, hospitalRepo,
		pushProvider, &realtimeBridge{ws: wsHandler}, cacheService, appLogger,
	)
	dispatchService := services.NewDispatchService(
		requestRepo, assignRepo, driverRepo, hospitalRepo, patientRepo,
		notificationService, mapsProvider, cacheService, appLogger,
	)
	authService := services.NewAuthService(
		patientRepo, driverRepo, hospitalRepo, otpRepo,
		smsProvider, cacheService, appLogger, jwtSecret, cfg.SMS.DefaultFrom,
	)
	patientService := services.NewPatientService(patientRepo, appLogger)
	mediaService := services.NewMediaService(driverRepo, storageProvider, appLogger)

	h := &routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Emergency:    handlers.NewEmergencyHandler(dispatchService),
		Driver:       handlers.NewDriverHandler(dispatchService, mediaService),
		Hospital:     handlers.NewHospitalHandler(dispatchService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Patient:      handlers.NewPatientHandler(patientService),
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.RateLimitMiddleware(cacheService, int64(cfg.Security.RateLimitPerMinute)))

	routes.Setup(router, h, jwtSecret)
	router.GET("/api/v1/ws", wsHandler.HandleWebSocket)

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		if err := db.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}

// realtimeBridge adapts the websocket handler to the publisher interface the
// notification service expects.
type realtimeBridge struct {
	ws *websocket.Handler
}

func (b *realtimeBridge) PublishToActor(kind models.ActorRole, recipientID primitive.ObjectID, event string, payload interface{}) {
	b.ws.PublishToActor(string(kind), recipientID, event, payload)
}

func buildSMSProvider(cfg *config.Config, appLogger *logger.Logger) sms.SMSProvider {
	switch cfg.SMS.Provider {
	case "twilio":
		if cfg.SMS.Twilio.AccountSID == "" {
			appLogger.Warn("Twilio credentials missing, SMS disabled")
			return nil
		}
		return sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
	case "sns":
		provider, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
		if err != nil {
			appLogger.WithError(err).Warn("SNS init failed, SMS disabled")
			return nil
		}
		return provider
	default:
		appLogger.WithField("provider", cfg.SMS.Provider).Warn("Unknown SMS provider, SMS disabled")
		return nil
	}
}

func buildPushProvider(cfg *config.Config, appLogger *logger.Logger) push.PushProvider {
	switch cfg.Push.Provider {
	case "fcm":
		provider, err := push.NewFCMProvider(cfg.Push.FCM.Credentials)
		if err != nil {
			appLogger.WithError(err).Warn("FCM init failed, push disabled")
			return nil
		}
		return provider
	case "apns":
		provider, err := push.NewAPNSProvider(
			cfg.Push.APNS.KeyFile, cfg.Push.APNS.KeyID, cfg.Push.APNS.TeamID,
			cfg.Push.APNS.BundleID, cfg.Push.APNS.Production,
		)
		if err != nil {
			appLogger.WithError(err).Warn("APNS init failed, push disabled")
			return nil
		}
		return provider
	default:
		appLogger.WithField("provider", cfg.Push.Provider).Warn("Unknown push provider, push disabled")
		return nil
	}
}

func buildStorageProvider(cfg *config.Config, appLogger *logger.Logger) storage.StorageProvider {
	switch cfg.Storage.Provider {
	case "s3":
		provider, err := storage.NewAWSS3Storage(cfg.Storage.AWS.Region, cfg.Storage.AWS.Bucket, cfg.Storage.AWS.CDNDomain)
		if err == nil {
			return provider
		}
		appLogger.WithError(err).Warn("S3 init failed, falling back to local storage")
	case "gcs":
		provider, err := storage.NewGCPStorage(cfg.Storage.GCP.Bucket, cfg.Storage.GCP.CredentialsFile, cfg.Storage.GCP.CDNDomain)
		if err == nil {
			return provider
		}
		appLogger.WithError(err).Warn("GCS init failed, falling back to local storage")
	}

	provider, err := storage.NewLocalStorage(cfg.Storage.Local.BasePath, cfg.Storage.Local.BaseURL)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize local storage")
	}
	return provider
}

func buildMapsProvider(cfg *config.Config, appLogger *logger.Logger) maps.MapsProvider {
	if cfg.Maps.GoogleMaps.APIKey == "" {
		appLogger.Warn("No maps API key, ETA estimates use straight-line distance")
		return nil
	}
	provider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
	if err != nil {
		appLogger.WithError(err).Warn("Maps init failed, ETA estimates use straight-line distance")
		return nil
	}
	return provider
}
