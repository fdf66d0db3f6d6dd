package middleware

import (
	"net/http"
	"strings"

	"rapidaid/internal/models"
	"rapidaid/internal/utils"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "actor"

// AuthRequired validates the bearer token and stores the resolved Actor on
// the request context. Handlers read it back with ActorFromContext.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeader(c, jwtSecret)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid bearer token")
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// OptionalAuth resolves an Actor when a valid token is present but lets
// anonymous requests through. Emergency creation must not be blocked on
// login.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := actorFromHeader(c, jwtSecret); ok {
			c.Set(actorContextKey, actor)
		}
		c.Next()
	}
}

func actorFromHeader(c *gin.Context, jwtSecret string) (models.Actor, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return models.Actor{}, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return models.Actor{}, false
	}

	claims, err := utils.ValidateToken(tokenString, jwtSecret)
	if err != nil {
		return models.Actor{}, false
	}

	return models.Actor{
		ID:   claims.ActorID,
		Role: models.ActorRole(claims.ActorRole),
	}, true
}

// ActorFromContext returns the authenticated actor, or a zero Actor when the
// request is anonymous.
func ActorFromContext(c *gin.Context) models.Actor {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return models.Actor{}
	}
	actor, ok := value.(models.Actor)
	if !ok {
		return models.Actor{}
	}
	return actor
}

func requireRole(role models.ActorRole, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor.IsZero() {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}
		if actor.Role != role {
			utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
			c.Abort()
			return
		}
		c.Next()
	}
}

func PatientRequired() gin.HandlerFunc {
	return requireRole(models.ActorRolePatient, "patient access required")
}

func DriverRequired() gin.HandlerFunc {
	return requireRole(models.ActorRoleDriver, "driver access required")
}

func HospitalRequired() gin.HandlerFunc {
	return requireRole(models.ActorRoleHospital, "hospital access required")
}
