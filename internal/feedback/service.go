package feedback

import (
	"context"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/course"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, fb Feedback) (Feedback, error)
	ByID(ctx context.Context, id string) (*Feedback, error)
	Delete(ctx context.Context, id string) error
	ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]Feedback, int, error)
	ListByStudent(ctx context.Context, studentID, courseID string, limit, offset int) ([]Feedback, int, error)
	CourseSummary(ctx context.Context, courseID string) (Summary, error)
}

// Courses resolves courses and enrollments for access checks.
type Courses interface {
	CourseByID(ctx context.Context, id string) (*course.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// Service implements feedback operations with enrollment and ownership
// checks.
type Service struct {
	store   Store
	courses Courses
}

// NewService creates a service.
func NewService(store Store, courses Courses) *Service {
	return &Service{store: store, courses: courses}
}

// Submit records a rating for a course the student is enrolled in.
// Anonymous submissions drop the student id entirely.
func (s *Service) Submit(ctx context.Context, studentID, courseID string, rating int, comment string, anonymous bool) (*Feedback, error) {
	crs, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil || !crs.Lifecycle.IsActive() {
		return nil, apperr.New(apperr.CodeNotFound, "course not found or inactive")
	}
	enrolled, err := s.courses.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.New(apperr.CodeForbidden, "you are not enrolled in this course")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.New(apperr.CodeValidation, "rating must be between 1 and 5")
	}

	fb := Feedback{CourseID: courseID, Rating: rating, Comment: comment, IsAnonymous: anonymous}
	if !anonymous {
		fb.StudentID = &studentID
	}
	created, err := s.store.Insert(ctx, fb)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CoursePage is a course's paginated feedback plus its summary.
type CoursePage struct {
	Feedback []Feedback `json:"feedback"`
	Total    int        `json:"total_count"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
	Summary  Summary    `json:"summary"`
}

// ListForCourse returns a course's feedback for its instructor or an admin.
func (s *Service) ListForCourse(ctx context.Context, viewer auth.Identity, courseID string, limit, offset int) (*CoursePage, error) {
	crs, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil {
		return nil, apperr.New(apperr.CodeNotFound, "course not found")
	}
	if viewer.Role != auth.RoleAdmin && crs.InstructorID != viewer.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}

	list, total, err := s.store.ListByCourse(ctx, courseID, limit, offset)
	if err != nil {
		return nil, err
	}
	summary, err := s.store.CourseSummary(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Feedback{}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return &CoursePage{Feedback: list, Total: total, Limit: limit, Offset: offset, Summary: summary}, nil
}

// StudentPage is a student's own paginated feedback.
type StudentPage struct {
	Feedback []Feedback `json:"feedback"`
	Total    int        `json:"total_count"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ListForStudent returns the caller's own submissions.
func (s *Service) ListForStudent(ctx context.Context, studentID, courseID string, limit, offset int) (*StudentPage, error) {
	list, total, err := s.store.ListByStudent(ctx, studentID, courseID, limit, offset)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Feedback{}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return &StudentPage{Feedback: list, Total: total, Limit: limit, Offset: offset}, nil
}

// Remove hard-deletes a feedback row (admin only, enforced by the route).
func (s *Service) Remove(ctx context.Context, feedbackID string) error {
	fb, err := s.store.ByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if fb == nil {
		return apperr.New(apperr.CodeNotFound, "feedback not found")
	}
	return s.store.Delete(ctx, feedbackID)
}
