package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/apperr"
	"github.com/joshua-takyi/eventhub/internal/helpers"
)

const (
	RequestIDKey = "request_id"
	UserKey      = "user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP Request",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// StatusFor maps an error's kind to the HTTP status the API answers with.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimit, apperr.KindUnavailable, apperr.KindConnectivity, apperr.KindAuth:
		// upstream failures; the caller can do nothing but retry later
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders the last error a handler attached with c.Error. Only validation and
// not-found messages reach the client; everything else is logged and reported generically.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		requestID := c.GetString(RequestIDKey)
		status := StatusFor(err)

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"kind", apperr.KindOf(err).String(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		msg := "Internal server error"
		var ae *apperr.Error
		switch {
		case status < http.StatusInternalServerError && errors.As(err, &ae) && ae.Message != "":
			msg = ae.Message
		case status == http.StatusBadGateway:
			msg = "Upstream service unavailable"
		}
		resp := helpers.ErrorResponse(msg)
		resp.RequestID = requestID
		c.JSON(status, resp)
	}
}

type TokenValidator interface {
	ValidateToken(token string) (*helpers.CustomClaims, error)
}

// AdminAuth accepts a Supabase access token from the Authorization bearer header or the
// access_token cookie and requires the admin role.
func AdminAuth(validator TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("Unauthorized access"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Info("Rejected admin token", "request_id", c.GetString(RequestIDKey), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("Unauthorized access"))
			return
		}

		enhanced := helpers.NewEnhancedClaims(claims)
		if !enhanced.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, helpers.ErrorResponse("admin role required"))
			return
		}

		c.Set(UserKey, enhanced)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
