package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"campusattend/internal/lifecycle"
)

// Repository persists courses, sessions and enrollments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const courseCols = `
	c.id, c.course_name, c.course_code, c.instructor_id, c.lifecycle, c.created_at,
	u.first_name || ' ' || u.last_name,
	(SELECT COUNT(*) FROM course_enrollments e WHERE e.course_id = c.id)`

const courseFrom = ` FROM courses c JOIN users u ON u.id = c.instructor_id`

func scanCourse(row interface{ Scan(...any) error }) (*Course, error) {
	var crs Course
	err := row.Scan(&crs.ID, &crs.CourseName, &crs.CourseCode, &crs.InstructorID,
		&crs.Lifecycle, &crs.CreatedAt, &crs.InstructorName, &crs.StudentCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &crs, nil
}

// CourseByID returns a course or nil when absent.
func (r *Repository) CourseByID(ctx context.Context, id string) (*Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+courseCols+courseFrom+` WHERE c.id = $1`, id)
	return scanCourse(row)
}

// CourseCodeTaken reports whether another course already uses the code.
func (r *Repository) CourseCodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM courses WHERE course_code = $1 AND id <> $2`, code, excludeID).Scan(&n)
	return n > 0, err
}

// InsertCourse writes a new course.
func (r *Repository) InsertCourse(ctx context.Context, crs Course) (Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	if crs.Lifecycle == "" {
		crs.Lifecycle = lifecycle.Active
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (id, course_name, course_code, instructor_id, lifecycle)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, crs.ID, crs.CourseName, crs.CourseCode, crs.InstructorID, crs.Lifecycle)
	if err := row.Scan(&crs.CreatedAt); err != nil {
		return Course{}, err
	}
	return crs, nil
}

// UpdateCourse rewrites the mutable course fields.
func (r *Repository) UpdateCourse(ctx context.Context, crs Course) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE courses
		SET course_name = $2, course_code = $3, instructor_id = $4, lifecycle = $5
		WHERE id = $1
	`, crs.ID, crs.CourseName, crs.CourseCode, crs.InstructorID, crs.Lifecycle)
	return err
}

// SetCourseLifecycle retires or reactivates a course.
func (r *Repository) SetCourseLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	_, err := r.db.ExecContext(ctx, `UPDATE courses SET lifecycle = $2 WHERE id = $1`, id, state)
	return err
}

// ListCourses returns all courses.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	return r.queryCourses(ctx, `SELECT`+courseCols+courseFrom+` ORDER BY c.course_code`)
}

// ListCoursesByInstructor returns the courses an instructor teaches.
func (r *Repository) ListCoursesByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return r.queryCourses(ctx,
		`SELECT`+courseCols+courseFrom+` WHERE c.instructor_id = $1 ORDER BY c.course_code`, instructorID)
}

// ListCoursesByStudent returns the courses a student is enrolled in.
func (r *Repository) ListCoursesByStudent(ctx context.Context, studentID string) ([]Course, error) {
	return r.queryCourses(ctx, `SELECT`+courseCols+courseFrom+`
		JOIN course_enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1 ORDER BY c.course_code`, studentID)
}

func (r *Repository) queryCourses(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		crs, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *crs)
	}
	return courses, rows.Err()
}

// InsertEnrollment links a student to a course.
func (r *Repository) InsertEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	enr := Enrollment{ID: uuid.NewString(), CourseID: courseID, StudentID: studentID}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO course_enrollments (id, course_id, student_id)
		VALUES ($1,$2,$3)
		RETURNING enrolled_at
	`, enr.ID, enr.CourseID, enr.StudentID)
	if err := row.Scan(&enr.EnrolledAt); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

// IsEnrolled reports whether a student holds an enrollment in a course.
func (r *Repository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1 AND student_id = $2
	`, courseID, studentID).Scan(&n)
	return n > 0, err
}

// EnrollmentCount returns the number of students enrolled in a course.
func (r *Repository) EnrollmentCount(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}

// Roster returns the enrolled students for a course with display fields.
func (r *Repository) Roster(ctx context.Context, courseID string) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name || ' ' || u.last_name, u.email
		FROM course_enrollments e
		JOIN users u ON u.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY u.last_name, u.first_name
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.StudentID, &entry.StudentName, &entry.StudentEmail); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

const sessionCols = `id, course_id, instructor_id, session_date::text, start_time, end_time,
	location_name, latitude, longitude, attendance_radius, lifecycle, created_at`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.CourseID, &s.InstructorID, &s.SessionDate, &s.StartTime,
		&s.EndTime, &s.LocationName, &s.Latitude, &s.Longitude, &s.AttendanceRadius,
		&s.Lifecycle, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SessionByID returns a session or nil when absent.
func (r *Repository) SessionByID(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM class_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// InsertSession writes a new class session.
func (r *Repository) InsertSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Lifecycle == "" {
		s.Lifecycle = lifecycle.Active
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO class_sessions
			(id, course_id, instructor_id, session_date, start_time, end_time,
			 location_name, latitude, longitude, attendance_radius, lifecycle)
		VALUES ($1,$2,$3,$4::date,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, s.ID, s.CourseID, s.InstructorID, s.SessionDate, s.StartTime, s.EndTime,
		s.LocationName, s.Latitude, s.Longitude, s.AttendanceRadius, s.Lifecycle)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// UpdateSession rewrites the mutable session fields.
func (r *Repository) UpdateSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE class_sessions
		SET session_date = $2::date, start_time = $3, end_time = $4, location_name = $5,
		    latitude = $6, longitude = $7, attendance_radius = $8, lifecycle = $9
		WHERE id = $1
	`, s.ID, s.SessionDate, s.StartTime, s.EndTime, s.LocationName,
		s.Latitude, s.Longitude, s.AttendanceRadius, s.Lifecycle)
	return err
}

// SetSessionLifecycle retires or reactivates a session. History is kept.
func (r *Repository) SetSessionLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	_, err := r.db.ExecContext(ctx, `UPDATE class_sessions SET lifecycle = $2 WHERE id = $1`, id, state)
	return err
}

// ListSessionsByCourse returns a course's sessions, newest first.
func (r *Repository) ListSessionsByCourse(ctx context.Context, courseID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionCols+` FROM class_sessions
		WHERE course_id = $1
		ORDER BY session_date DESC, start_time DESC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// SessionCount returns the number of sessions scheduled for a course.
func (r *Repository) SessionCount(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM class_sessions WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}
