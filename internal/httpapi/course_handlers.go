package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
	"campusattend/internal/course"
	"campusattend/internal/lifecycle"
)

// ListCourses returns the courses visible to the caller.
func (h *Handler) ListCourses(c *gin.Context) {
	id, _ := auth.FromContext(c)
	courses, err := h.courses.ListForViewer(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if courses == nil {
		courses = []course.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// CreateCourse registers a course under an instructor (admin only).
func (h *Handler) CreateCourse(c *gin.Context) {
	var req struct {
		CourseName   string `json:"course_name" binding:"required"`
		CourseCode   string `json:"course_code" binding:"required"`
		InstructorID string `json:"instructor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course name, course code and instructor id are required"})
		return
	}

	crs, err := h.courses.Create(c.Request.Context(), req.CourseName, req.CourseCode, req.InstructorID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "course created", "course": crs})
}

// GetCourse returns one course after an access check.
func (h *Handler) GetCourse(c *gin.Context) {
	id, _ := auth.FromContext(c)
	crs, err := h.courses.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, crs)
}

// UpdateCourse applies a partial course update (admin only).
func (h *Handler) UpdateCourse(c *gin.Context) {
	var req struct {
		CourseName   *string `json:"course_name"`
		CourseCode   *string `json:"course_code"`
		InstructorID *string `json:"instructor_id"`
		Lifecycle    *string `json:"lifecycle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := course.CourseUpdate{
		CourseName:   req.CourseName,
		CourseCode:   req.CourseCode,
		InstructorID: req.InstructorID,
	}
	if req.Lifecycle != nil {
		state := lifecycle.State(*req.Lifecycle)
		upd.Lifecycle = &state
	}
	crs, err := h.courses.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course updated", "course": crs})
}

// DeleteCourse retires a course; history is kept (admin only).
func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Retire(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course retired"})
}

// EnrollStudent links a student to a course (admin only).
func (h *Handler) EnrollStudent(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student id is required"})
		return
	}

	enr, err := h.courses.Enroll(c.Request.Context(), c.Param("id"), req.StudentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "student enrolled", "enrollment": enr})
}

// ListSessions returns a course's sessions after an access check.
func (h *Handler) ListSessions(c *gin.Context) {
	id, _ := auth.FromContext(c)
	sessions, err := h.courses.ListSessions(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if sessions == nil {
		sessions = []course.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// CreateSession schedules a session (owning instructor or admin).
func (h *Handler) CreateSession(c *gin.Context) {
	var req struct {
		SessionDate      string  `json:"session_date" binding:"required"`
		StartTime        string  `json:"start_time" binding:"required"`
		EndTime          string  `json:"end_time" binding:"required"`
		LocationName     string  `json:"location_name" binding:"required"`
		Latitude         float64 `json:"latitude"`
		Longitude        float64 `json:"longitude"`
		AttendanceRadius int     `json:"attendance_radius"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all session details are required"})
		return
	}

	id, _ := auth.FromContext(c)
	sess, err := h.courses.CreateSession(c.Request.Context(), id, c.Param("id"), course.SessionInput{
		SessionDate:      req.SessionDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		LocationName:     req.LocationName,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		AttendanceRadius: req.AttendanceRadius,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "session created", "session": sess})
}

// UpdateSession applies a partial session update (owner or admin).
func (h *Handler) UpdateSession(c *gin.Context) {
	var req struct {
		SessionDate      *string  `json:"session_date"`
		StartTime        *string  `json:"start_time"`
		EndTime          *string  `json:"end_time"`
		LocationName     *string  `json:"location_name"`
		Latitude         *float64 `json:"latitude"`
		Longitude        *float64 `json:"longitude"`
		AttendanceRadius *int     `json:"attendance_radius"`
		Lifecycle        *string  `json:"lifecycle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := course.SessionUpdate{
		SessionDate:      req.SessionDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		LocationName:     req.LocationName,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		AttendanceRadius: req.AttendanceRadius,
	}
	if req.Lifecycle != nil {
		state := lifecycle.State(*req.Lifecycle)
		upd.Lifecycle = &state
	}

	id, _ := auth.FromContext(c)
	sess, err := h.courses.UpdateSession(c.Request.Context(), id, c.Param("id"), upd)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session updated", "session": sess})
}

// DeleteSession retires a session; its records are kept (owner or admin).
func (h *Handler) DeleteSession(c *gin.Context) {
	id, _ := auth.FromContext(c)
	if err := h.courses.RetireSession(c.Request.Context(), id, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session retired"})
}
