// Package httpapi wires HTTP requests to the domain services.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/apperr"
	"campusattend/internal/attendance"
	"campusattend/internal/course"
	"campusattend/internal/feedback"
	"campusattend/internal/store"
	"campusattend/internal/user"
)

// Config carries the auth parameters handlers need to issue tokens.
type Config struct {
	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Handler exposes the REST surface.
type Handler struct {
	cfg        Config
	users      *user.Service
	courses    *course.Service
	attendance *attendance.Service
	feedback   *feedback.Service
	db         *store.DB
	redis      *store.Redis
}

// New creates a handler.
func New(cfg Config, users *user.Service, courses *course.Service, att *attendance.Service, fb *feedback.Service, db *store.DB, redis *store.Redis) *Handler {
	return &Handler{
		cfg:        cfg,
		users:      users,
		courses:    courses,
		attendance: att,
		feedback:   fb,
		db:         db,
		redis:      redis,
	}
}

// respondErr maps a service error to its HTTP status. Classified errors keep
// their message and details; anything else becomes an opaque 500.
func respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": ae.Message}
	for k, v := range ae.Details {
		body[k] = v
	}
	c.JSON(status, body)
}

// pagination reads limit/offset query params with the usual defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, offset = 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}

// Healthz reports db and redis connectivity.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
}
