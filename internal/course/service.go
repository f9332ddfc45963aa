package course

import (
	"context"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/geo"
	"campusattend/internal/lifecycle"
	"campusattend/internal/store"
	"campusattend/internal/user"
)

// Store is the persistence surface the service needs.
type Store interface {
	CourseByID(ctx context.Context, id string) (*Course, error)
	CourseCodeTaken(ctx context.Context, code, excludeID string) (bool, error)
	InsertCourse(ctx context.Context, crs Course) (Course, error)
	UpdateCourse(ctx context.Context, crs Course) error
	SetCourseLifecycle(ctx context.Context, id string, state lifecycle.State) error
	ListCourses(ctx context.Context) ([]Course, error)
	ListCoursesByInstructor(ctx context.Context, instructorID string) ([]Course, error)
	ListCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
	InsertEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	SessionByID(ctx context.Context, id string) (*Session, error)
	InsertSession(ctx context.Context, s Session) (Session, error)
	UpdateSession(ctx context.Context, s Session) error
	SetSessionLifecycle(ctx context.Context, id string, state lifecycle.State) error
	ListSessionsByCourse(ctx context.Context, courseID string) ([]Session, error)
}

// Directory resolves user accounts for instructor/student validation.
type Directory interface {
	ByID(ctx context.Context, id string) (*user.User, error)
}

// Service implements course, session and enrollment operations with
// role/ownership checks.
type Service struct {
	store Store
	users Directory
}

// NewService creates a service.
func NewService(store Store, users Directory) *Service {
	return &Service{store: store, users: users}
}

// ListForViewer returns the courses visible to the caller: all for admins,
// taught courses for instructors, enrolled courses for students.
func (s *Service) ListForViewer(ctx context.Context, viewer auth.Identity) ([]Course, error) {
	switch viewer.Role {
	case auth.RoleAdmin:
		return s.store.ListCourses(ctx)
	case auth.RoleInstructor:
		return s.store.ListCoursesByInstructor(ctx, viewer.UserID)
	default:
		return s.store.ListCoursesByStudent(ctx, viewer.UserID)
	}
}

// Get returns a course after checking the caller may see it.
func (s *Service) Get(ctx context.Context, viewer auth.Identity, courseID string) (*Course, error) {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil {
		return nil, apperr.New(apperr.CodeNotFound, "course not found")
	}
	if err := s.checkCourseAccess(ctx, viewer, crs); err != nil {
		return nil, err
	}
	return crs, nil
}

func (s *Service) checkCourseAccess(ctx context.Context, viewer auth.Identity, crs *Course) error {
	switch viewer.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleInstructor:
		if crs.InstructorID != viewer.UserID {
			return apperr.New(apperr.CodeForbidden, "access denied")
		}
		return nil
	default:
		enrolled, err := s.store.IsEnrolled(ctx, crs.ID, viewer.UserID)
		if err != nil {
			return err
		}
		if !enrolled {
			return apperr.New(apperr.CodeForbidden, "access denied")
		}
		return nil
	}
}

// RequireOwnership checks the caller is the owning instructor or an admin.
func (s *Service) RequireOwnership(viewer auth.Identity, instructorID string) error {
	if viewer.Role == auth.RoleAdmin {
		return nil
	}
	if viewer.Role == auth.RoleInstructor && viewer.UserID == instructorID {
		return nil
	}
	return apperr.New(apperr.CodeForbidden, "access denied")
}

// Create registers a new course under an instructor.
func (s *Service) Create(ctx context.Context, name, code, instructorID string) (*Course, error) {
	if name == "" || code == "" || instructorID == "" {
		return nil, apperr.New(apperr.CodeValidation, "course name, course code and instructor id are required")
	}
	instructor, err := s.users.ByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if instructor == nil || instructor.Role != auth.RoleInstructor {
		return nil, apperr.New(apperr.CodeValidation, "invalid instructor id")
	}
	created, err := s.store.InsertCourse(ctx, Course{
		CourseName:   name,
		CourseCode:   code,
		InstructorID: instructorID,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.CodeConflict, "course code already exists")
		}
		return nil, err
	}
	created.InstructorName = instructor.FullName()
	return &created, nil
}

// CourseUpdate carries optional course fields; nil means unchanged.
type CourseUpdate struct {
	CourseName   *string
	CourseCode   *string
	InstructorID *string
	Lifecycle    *lifecycle.State
}

// Update applies a partial course update.
func (s *Service) Update(ctx context.Context, courseID string, upd CourseUpdate) (*Course, error) {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil {
		return nil, apperr.New(apperr.CodeNotFound, "course not found")
	}
	if upd.CourseName != nil {
		crs.CourseName = *upd.CourseName
	}
	if upd.CourseCode != nil {
		taken, err := s.store.CourseCodeTaken(ctx, *upd.CourseCode, courseID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.New(apperr.CodeConflict, "course code already exists")
		}
		crs.CourseCode = *upd.CourseCode
	}
	if upd.InstructorID != nil {
		instructor, err := s.users.ByID(ctx, *upd.InstructorID)
		if err != nil {
			return nil, err
		}
		if instructor == nil || instructor.Role != auth.RoleInstructor {
			return nil, apperr.New(apperr.CodeValidation, "invalid instructor id")
		}
		crs.InstructorID = *upd.InstructorID
		crs.InstructorName = instructor.FullName()
	}
	if upd.Lifecycle != nil {
		if *upd.Lifecycle != lifecycle.Active && *upd.Lifecycle != lifecycle.Retired {
			return nil, apperr.New(apperr.CodeValidation, "lifecycle must be active or retired")
		}
		crs.Lifecycle = *upd.Lifecycle
	}
	if err := s.store.UpdateCourse(ctx, *crs); err != nil {
		return nil, err
	}
	return crs, nil
}

// Retire soft-deletes a course. Attendance history is untouched.
func (s *Service) Retire(ctx context.Context, courseID string) error {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if crs == nil {
		return apperr.New(apperr.CodeNotFound, "course not found")
	}
	return s.store.SetCourseLifecycle(ctx, courseID, lifecycle.Retired)
}

// Enroll links a student to an active course.
func (s *Service) Enroll(ctx context.Context, courseID, studentID string) (*Enrollment, error) {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil || !crs.Lifecycle.IsActive() {
		return nil, apperr.New(apperr.CodeNotFound, "course not found or inactive")
	}
	student, err := s.users.ByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != auth.RoleStudent {
		return nil, apperr.New(apperr.CodeValidation, "invalid student id")
	}
	enr, err := s.store.InsertEnrollment(ctx, courseID, studentID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.CodeConflict, "student is already enrolled in this course")
		}
		return nil, err
	}
	return &enr, nil
}

// ListSessions returns a course's sessions after an access check.
func (s *Service) ListSessions(ctx context.Context, viewer auth.Identity, courseID string) ([]Session, error) {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil {
		return nil, apperr.New(apperr.CodeNotFound, "course not found")
	}
	if err := s.checkCourseAccess(ctx, viewer, crs); err != nil {
		return nil, err
	}
	return s.store.ListSessionsByCourse(ctx, courseID)
}

// SessionInput is the payload for scheduling a session.
type SessionInput struct {
	SessionDate      string
	StartTime        string
	EndTime          string
	LocationName     string
	Latitude         float64
	Longitude        float64
	AttendanceRadius int
}

func (in SessionInput) validate() error {
	if in.SessionDate == "" || in.StartTime == "" || in.EndTime == "" || in.LocationName == "" {
		return apperr.New(apperr.CodeValidation, "all session details are required")
	}
	if _, err := time.Parse("2006-01-02", in.SessionDate); err != nil {
		return apperr.New(apperr.CodeValidation, "session date must be YYYY-MM-DD")
	}
	if _, err := ParseTimeOfDay(in.StartTime); err != nil {
		return apperr.New(apperr.CodeValidation, "start time must be HH:MM")
	}
	if _, err := ParseTimeOfDay(in.EndTime); err != nil {
		return apperr.New(apperr.CodeValidation, "end time must be HH:MM")
	}
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return apperr.New(apperr.CodeValidation, "invalid GPS coordinates")
	}
	if in.AttendanceRadius < 0 {
		return apperr.New(apperr.CodeValidation, "attendance radius must be positive")
	}
	return nil
}

// CreateSession schedules a session for an active course. The caller must
// own the course or be an admin.
func (s *Service) CreateSession(ctx context.Context, viewer auth.Identity, courseID string, in SessionInput) (*Session, error) {
	crs, err := s.store.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil || !crs.Lifecycle.IsActive() {
		return nil, apperr.New(apperr.CodeNotFound, "course not found or inactive")
	}
	if err := s.RequireOwnership(viewer, crs.InstructorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	radius := in.AttendanceRadius
	if radius == 0 {
		radius = 50
	}
	created, err := s.store.InsertSession(ctx, Session{
		CourseID:         courseID,
		InstructorID:     crs.InstructorID,
		SessionDate:      in.SessionDate,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		LocationName:     in.LocationName,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		AttendanceRadius: radius,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SessionUpdate carries optional session fields; nil means unchanged.
type SessionUpdate struct {
	SessionDate      *string
	StartTime        *string
	EndTime          *string
	LocationName     *string
	Latitude         *float64
	Longitude        *float64
	AttendanceRadius *int
	Lifecycle        *lifecycle.State
}

// UpdateSession applies a partial update to a session the caller owns.
func (s *Service) UpdateSession(ctx context.Context, viewer auth.Identity, sessionID string, upd SessionUpdate) (*Session, error) {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.New(apperr.CodeNotFound, "session not found")
	}
	if err := s.RequireOwnership(viewer, sess.InstructorID); err != nil {
		return nil, err
	}
	if upd.SessionDate != nil {
		if _, err := time.Parse("2006-01-02", *upd.SessionDate); err != nil {
			return nil, apperr.New(apperr.CodeValidation, "session date must be YYYY-MM-DD")
		}
		sess.SessionDate = *upd.SessionDate
	}
	if upd.StartTime != nil {
		if _, err := ParseTimeOfDay(*upd.StartTime); err != nil {
			return nil, apperr.New(apperr.CodeValidation, "start time must be HH:MM")
		}
		sess.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		if _, err := ParseTimeOfDay(*upd.EndTime); err != nil {
			return nil, apperr.New(apperr.CodeValidation, "end time must be HH:MM")
		}
		sess.EndTime = *upd.EndTime
	}
	if upd.LocationName != nil {
		sess.LocationName = *upd.LocationName
	}
	if upd.Latitude != nil {
		if *upd.Latitude < -90 || *upd.Latitude > 90 {
			return nil, apperr.New(apperr.CodeValidation, "invalid latitude")
		}
		sess.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		if *upd.Longitude < -180 || *upd.Longitude > 180 {
			return nil, apperr.New(apperr.CodeValidation, "invalid longitude")
		}
		sess.Longitude = *upd.Longitude
	}
	if upd.AttendanceRadius != nil {
		if *upd.AttendanceRadius <= 0 {
			return nil, apperr.New(apperr.CodeValidation, "attendance radius must be positive")
		}
		sess.AttendanceRadius = *upd.AttendanceRadius
	}
	if upd.Lifecycle != nil {
		if *upd.Lifecycle != lifecycle.Active && *upd.Lifecycle != lifecycle.Retired {
			return nil, apperr.New(apperr.CodeValidation, "lifecycle must be active or retired")
		}
		sess.Lifecycle = *upd.Lifecycle
	}
	if err := s.store.UpdateSession(ctx, *sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RetireSession soft-deletes a session the caller owns. Attendance records
// for it are kept.
func (s *Service) RetireSession(ctx context.Context, viewer auth.Identity, sessionID string) error {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return apperr.New(apperr.CodeNotFound, "session not found")
	}
	if err := s.RequireOwnership(viewer, sess.InstructorID); err != nil {
		return err
	}
	return s.store.SetSessionLifecycle(ctx, sessionID, lifecycle.Retired)
}
