package attendance

import (
	"context"
	"errors"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/course"
	"campusattend/internal/geo"
	"campusattend/internal/metrics"
	"campusattend/internal/store"
)

// SessionStore resolves sessions, courses, enrollments and rosters. The
// course repository implements it.
type SessionStore interface {
	SessionByID(ctx context.Context, id string) (*course.Session, error)
	CourseByID(ctx context.Context, id string) (*course.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	Roster(ctx context.Context, courseID string) ([]course.RosterEntry, error)
	EnrollmentCount(ctx context.Context, courseID string) (int, error)
	SessionCount(ctx context.Context, courseID string) (int, error)
}

// RecordStore persists and aggregates attendance records. The attendance
// repository implements it.
type RecordStore interface {
	RecordForSession(ctx context.Context, sessionID, studentID string) (*Record, error)
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	RecordsBySession(ctx context.Context, sessionID string) ([]Record, error)
	History(ctx context.Context, studentID, courseID string, limit, offset int) ([]HistoryEntry, int, error)
	StatusCounts(ctx context.Context, studentID, courseID string) (Counts, error)
	CourseStatusCounts(ctx context.Context, courseID string) (Counts, error)
}

// Clock supplies the server time; swapped in tests.
type Clock func() time.Time

// Service is the attendance evaluation engine plus its read models.
type Service struct {
	sessions SessionStore
	records  RecordStore
	cache    *store.Redis
	cacheTTL time.Duration
	grace    time.Duration
	now      Clock
}

// NewService creates a service. cache may be nil; summaries are then always
// computed.
func NewService(sessions SessionStore, records RecordStore, cache *store.Redis, cacheTTL time.Duration, grace time.Duration) *Service {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Service{
		sessions: sessions,
		records:  records,
		cache:    cache,
		cacheTTL: cacheTTL,
		grace:    grace,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(clock Clock) *Service {
	s.now = clock
	return s
}

// CheckInResult echoes what the engine decided for an accepted check-in.
type CheckInResult struct {
	Record   Record `json:"attendance_record"`
	Status   Status `json:"status"`
	Distance int    `json:"distance"`
}

// CheckIn evaluates a student's check-in attempt. Preconditions run in
// order, first failure wins: active session, enrollment, no prior record,
// geofence. On success one immutable record is written; a unique-constraint
// violation on the insert is reported as the same conflict as the duplicate
// pre-check.
func (s *Service) CheckIn(ctx context.Context, studentID, sessionID string, lat, lon float64) (*CheckInResult, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, s.reject(apperr.New(apperr.CodeValidation, "invalid GPS coordinates"))
	}

	sess, err := s.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Lifecycle.IsActive() {
		return nil, s.reject(apperr.New(apperr.CodeNotFound, "invalid or inactive session"))
	}

	enrolled, err := s.sessions.IsEnrolled(ctx, sess.CourseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, s.reject(apperr.New(apperr.CodeForbidden, "you are not enrolled in this course"))
	}

	existing, err := s.records.RecordForSession(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.reject(apperr.New(apperr.CodeConflict, "you have already checked in for this session"))
	}

	now := s.now()
	status, distance, err := Evaluate(sess, lat, lon, now, s.grace)
	if err != nil {
		return nil, s.reject(err)
	}

	rec, err := s.records.InsertRecord(ctx, Record{
		SessionID:   sessionID,
		StudentID:   studentID,
		CheckInTime: now,
		Latitude:    lat,
		Longitude:   lon,
		Status:      status,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, s.reject(apperr.New(apperr.CodeConflict, "you have already checked in for this session"))
		}
		return nil, err
	}

	metrics.CheckinsTotal.WithLabelValues(string(status)).Inc()
	s.cache.Delete(ctx, summaryCacheKey(sess.CourseID))

	return &CheckInResult{Record: rec, Status: status, Distance: int(distance)}, nil
}

func (s *Service) reject(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		metrics.CheckinRejections.WithLabelValues(string(ae.Code)).Inc()
	}
	return err
}

// StudentAttendance is one roster row in the per-session view. Status may be
// the derived "absent" when no record exists; Distance is only set for
// checked-in students.
type StudentAttendance struct {
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	Status       Status     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time"`
	Distance     *int       `json:"distance"`
}

// SessionAttendanceView is the instructor's roster view for one session.
type SessionAttendanceView struct {
	Session  *course.Session     `json:"session"`
	Students []StudentAttendance `json:"student_attendance"`
	Summary  SessionSummary      `json:"summary"`
}

// SessionSummary aggregates the derived roster view.
type SessionSummary struct {
	TotalStudents        int     `json:"total_students"`
	PresentCount         int     `json:"present_count"`
	LateCount            int     `json:"late_count"`
	AbsentCount          int     `json:"absent_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// SessionAttendance builds the per-session roster view: every enrolled
// student exactly once, joined against existing records; enrolled students
// without a record are reported absent. Absent is never stored. The caller
// must own the session or be an admin.
func (s *Service) SessionAttendance(ctx context.Context, viewer auth.Identity, sessionID string) (*SessionAttendanceView, error) {
	sess, err := s.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.New(apperr.CodeNotFound, "session not found")
	}
	if viewer.Role != auth.RoleAdmin && sess.InstructorID != viewer.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}

	roster, err := s.sessions.Roster(ctx, sess.CourseID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.RecordsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[string]Record, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}

	view := &SessionAttendanceView{Session: sess, Students: make([]StudentAttendance, 0, len(roster))}
	for _, entry := range roster {
		row := StudentAttendance{
			StudentID:    entry.StudentID,
			StudentName:  entry.StudentName,
			StudentEmail: entry.StudentEmail,
			Status:       StatusAbsent,
		}
		if rec, ok := byStudent[entry.StudentID]; ok {
			row.Status = rec.Status
			t := rec.CheckInTime
			row.CheckInTime = &t
			d := int(geo.Distance(rec.Latitude, rec.Longitude, sess.Latitude, sess.Longitude))
			row.Distance = &d
		}
		view.Students = append(view.Students, row)

		switch row.Status {
		case StatusPresent:
			view.Summary.PresentCount++
		case StatusLate:
			view.Summary.LateCount++
		default:
			view.Summary.AbsentCount++
		}
	}
	view.Summary.TotalStudents = len(roster)
	view.Summary.AttendancePercentage = Percentage(view.Summary.PresentCount, view.Summary.LateCount, view.Summary.TotalStudents)
	return view, nil
}

// HistoryPage is a student's paginated check-in history.
type HistoryPage struct {
	Records []HistoryEntry `json:"attendance_records"`
	Total   int            `json:"total_count"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// History returns a student's records newest first.
func (s *Service) History(ctx context.Context, studentID, courseID string, limit, offset int) (*HistoryPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.records.History(ctx, studentID, courseID, limit, offset)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return &HistoryPage{Records: entries, Total: total, Limit: limit, Offset: offset}, nil
}

// Statistics is a student's own attendance aggregate.
type Statistics struct {
	TotalSessions        int     `json:"total_sessions"`
	PresentCount         int     `json:"present_count"`
	LateCount            int     `json:"late_count"`
	AbsentCount          int     `json:"absent_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// StudentStatistics aggregates a student's records, optionally per course.
func (s *Service) StudentStatistics(ctx context.Context, studentID, courseID string) (*Statistics, error) {
	counts, err := s.records.StatusCounts(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		TotalSessions:        counts.Total,
		PresentCount:         counts.Present,
		LateCount:            counts.Late,
		AbsentCount:          counts.Absent,
		AttendancePercentage: Percentage(counts.Present, counts.Late, counts.Total),
	}, nil
}

// CourseSummary is the per-course aggregate for instructors and admins.
type CourseSummary struct {
	Course                 *course.Course `json:"course"`
	TotalSessions          int            `json:"total_sessions"`
	EnrolledStudents       int            `json:"enrolled_students"`
	TotalAttendanceRecords int            `json:"total_attendance_records"`
	PresentCount           int            `json:"present_count"`
	LateCount              int            `json:"late_count"`
	AbsentCount            int            `json:"absent_count"`
	OverallPercentage      float64        `json:"overall_attendance_percentage"`
}

func summaryCacheKey(courseID string) string { return "attendance:summary:" + courseID }

// CourseAttendanceSummary aggregates every record across a course. The
// caller must own the course or be an admin. Results are cached briefly and
// invalidated on check-in.
func (s *Service) CourseAttendanceSummary(ctx context.Context, viewer auth.Identity, courseID string) (*CourseSummary, error) {
	crs, err := s.sessions.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs == nil {
		return nil, apperr.New(apperr.CodeNotFound, "course not found")
	}
	if viewer.Role != auth.RoleAdmin && crs.InstructorID != viewer.UserID {
		return nil, apperr.New(apperr.CodeForbidden, "access denied")
	}

	key := summaryCacheKey(courseID)
	var cached CourseSummary
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	counts, err := s.records.CourseStatusCounts(ctx, courseID)
	if err != nil {
		return nil, err
	}
	sessionCount, err := s.sessions.SessionCount(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.sessions.EnrollmentCount(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summary := &CourseSummary{
		Course:                 crs,
		TotalSessions:          sessionCount,
		EnrolledStudents:       enrolled,
		TotalAttendanceRecords: counts.Total,
		PresentCount:           counts.Present,
		LateCount:              counts.Late,
		AbsentCount:            counts.Absent,
		OverallPercentage:      Percentage(counts.Present, counts.Late, counts.Total),
	}
	s.cache.SetJSON(ctx, key, summary, s.cacheTTL)
	return summary, nil
}
