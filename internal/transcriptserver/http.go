package transcriptserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/gin-gonic/gin"
)

const (
	healthStatus  = "active"
	healthMessage = "YouTube Transcript API is running"
)

// NewRouter constructs a Gin engine with all routes registered.
func NewRouter(svc *engine.Service) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.CustomRecovery(recoverJSON))

	RegisterHealthRoutes(r)
	RegisterTranscriptRoutes(r, svc)
	RegisterMetricsRoutes(r)
	return r
}

// RegisterHealthRoutes registers the health check endpoint.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/", handleHealth)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, engine.HealthResponse{Status: healthStatus, Message: healthMessage})
}

// RegisterTranscriptRoutes registers POST /transcript.
func RegisterTranscriptRoutes(r *gin.Engine, svc *engine.Service) {
	r.POST("/transcript", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			body = nil
		}

		req, err := engine.ParseTranscriptRequest(body)
		if err != nil {
			engine.IncrTranscriptRequests()
			engine.IncrBadRequests()
			respondError(c, err)
			return
		}

		resp, err := svc.Transcript(c.Request.Context(), *req.VideoURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// RegisterMetricsRoutes exposes engine counters as plain text.
func RegisterMetricsRoutes(r *gin.Engine) {
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, engine.FormatMetrics())
	})
}

// ErrorMessage renders err the way clients see it: client errors verbatim,
// everything else prefixed as a transcript failure.
func ErrorMessage(err error) string {
	if engine.IsBadRequest(err) {
		return err.Error()
	}
	return "Failed to get transcript: " + err.Error()
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if engine.IsBadRequest(err) {
		status = http.StatusBadRequest
	}
	c.JSON(status, engine.ErrorResponse{Error: ErrorMessage(err), Success: false})
}

func recoverJSON(c *gin.Context, recovered any) {
	slog.Error("handler panic", slog.String("path", c.Request.URL.Path), slog.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, engine.ErrorResponse{
		Error:   fmt.Sprintf("Failed to get transcript: %v", recovered),
		Success: false,
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
