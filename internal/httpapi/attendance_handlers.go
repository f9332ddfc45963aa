package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
)

// CheckIn evaluates a student's GPS check-in for a session.
func (h *Handler) CheckIn(c *gin.Context) {
	var req struct {
		SessionID string   `json:"session_id" binding:"required"`
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id, latitude and longitude are required"})
		return
	}

	id, _ := auth.FromContext(c)
	res, err := h.attendance.CheckIn(c.Request.Context(), id.UserID, req.SessionID, *req.Latitude, *req.Longitude)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "check-in successful",
		"status":            res.Status,
		"distance":          res.Distance,
		"check_in_time":     res.Record.CheckInTime.UTC().Format(time.RFC3339),
		"attendance_record": res.Record,
	})
}

// History returns the caller's paginated check-in history.
func (h *Handler) History(c *gin.Context) {
	limit, offset := pagination(c)
	id, _ := auth.FromContext(c)
	page, err := h.attendance.History(c.Request.Context(), id.UserID, c.Query("course_id"), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Statistics returns the caller's attendance aggregate.
func (h *Handler) Statistics(c *gin.Context) {
	id, _ := auth.FromContext(c)
	stats, err := h.attendance.StudentStatistics(c.Request.Context(), id.UserID, c.Query("course_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SessionAttendance returns the derived roster view for a session.
func (h *Handler) SessionAttendance(c *gin.Context) {
	id, _ := auth.FromContext(c)
	view, err := h.attendance.SessionAttendance(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CourseAttendanceSummary returns the per-course aggregate.
func (h *Handler) CourseAttendanceSummary(c *gin.Context) {
	id, _ := auth.FromContext(c)
	summary, err := h.attendance.CourseAttendanceSummary(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
