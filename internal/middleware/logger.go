package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// quietPaths are probed often enough that logging them buries real traffic.
var quietPaths = map[string]bool{"/healthz": true, "/readyz": true}

// RequestID keeps the caller's X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger writes one line per request after it completes, naming the API
// client when the request was authenticated. Successful probe requests are
// not logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		if quietPaths[c.Request.URL.Path] && status < http.StatusBadRequest {
			return
		}

		client := c.GetString(ContextKeyClientID)
		if client == "" {
			client = "-"
		}
		line := c.GetString(ContextKeyRequestID) + " " + client + " " +
			c.Request.Method + " " + c.Request.URL.Path
		if errs := c.Errors.ByType(gin.ErrorTypeAny).String(); errs != "" {
			log.Printf("[%s] %d %s %d bytes errors: %s", line, status, latency, c.Writer.Size(), strings.TrimSpace(errs))
			return
		}
		log.Printf("[%s] %d %s %d bytes", line, status, latency, c.Writer.Size())
	}
}

// Recovery turns a panic into a 500 in the API's error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("middleware.Recovery: request %s panicked: %v", c.GetString(ContextKeyRequestID), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an unexpected error occurred"},
		})
	})
}
