// Package feedback holds course feedback submissions and their summaries.
package feedback

import "time"

// Feedback is one rating (1-5) with an optional comment. Anonymous
// submissions never expose the student id.
type Feedback struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	StudentID   *string   `json:"student_id,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined for listings.
	StudentName string `json:"student_name,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	CourseCode  string `json:"course_code,omitempty"`
}

// Summary aggregates a course's feedback.
type Summary struct {
	TotalFeedback      int         `json:"total_feedback"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}
