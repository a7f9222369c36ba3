package api

import (
	"alcyxob/workout-tracker/internal/identity"
	"alcyxob/workout-tracker/internal/metrics"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Constants for context keys
const (
	ContextExternalIDKey = "externalID"
	ContextRequestIDKey  = "requestID"
)

const requestIDHeader = "X-Request-ID"

// Verification results recorded in metrics.
const (
	verifyOK          = "ok"
	verifyInvalid     = "invalid"
	verifyUnavailable = "unavailable"
)

// AuthMiddleware resolves the bearer token to an external subject before any
// handler touches storage.
func AuthMiddleware(verifier identity.Verifier, m *metrics.Metrics, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token is missing.",
				"error":   "Unauthorized",
			})
			return
		}

		subject, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			public := identity.ErrTokenInvalid
			result := verifyInvalid
			if errors.Is(err, identity.ErrUpstreamUnavailable) {
				public = identity.ErrUpstreamUnavailable
				result = verifyUnavailable
			}
			m.RecordVerification(result)
			requestLogger(c, log).WithError(err).Warn("token verification failed")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "Something went wrong",
				"data":    nil,
				"error":   public.Error(),
			})
			return
		}

		m.RecordVerification(verifyOK)
		c.Set(ContextExternalIDKey, subject)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		entry := requestLogger(c, log).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request handled")
	}
}

func requestLogger(c *gin.Context, log logrus.FieldLogger) logrus.FieldLogger {
	if id := c.GetString(ContextRequestIDKey); id != "" {
		return log.WithField("requestId", id)
	}
	return log
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Helper function to get the external subject from context (used by handlers)
func getExternalIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextExternalIDKey)
	if !exists {
		return "", errors.New("external ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok || idStr == "" {
		return "", errors.New("invalid external ID in context")
	}
	return idStr, nil
}
