package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusattend/internal/auth"
)

// SubmitFeedback records a course rating from an enrolled student.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req struct {
		Rating      *int   `json:"rating" binding:"required"`
		Comment     string `json:"comment"`
		IsAnonymous bool   `json:"is_anonymous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}

	id, _ := auth.FromContext(c)
	fb, err := h.feedback.Submit(c.Request.Context(), id.UserID, c.Param("id"), *req.Rating, req.Comment, req.IsAnonymous)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "feedback submitted", "feedback": fb})
}

// CourseFeedback returns a course's feedback with its rating summary.
func (h *Handler) CourseFeedback(c *gin.Context) {
	limit, offset := pagination(c)
	id, _ := auth.FromContext(c)
	page, err := h.feedback.ListForCourse(c.Request.Context(), id, c.Param("id"), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MyFeedback returns the caller's own submissions.
func (h *Handler) MyFeedback(c *gin.Context) {
	limit, offset := pagination(c)
	id, _ := auth.FromContext(c)
	page, err := h.feedback.ListForStudent(c.Request.Context(), id.UserID, c.Query("course_id"), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteFeedback removes a feedback row (admin only).
func (h *Handler) DeleteFeedback(c *gin.Context) {
	if err := h.feedback.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback deleted"})
}
