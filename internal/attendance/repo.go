package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordCols = `id, session_id, student_id, check_in_time, latitude, longitude, status, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.CheckInTime,
		&rec.Latitude, &rec.Longitude, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// RecordForSession returns the record for a (session, student) pair, or nil.
func (r *Repository) RecordForSession(ctx context.Context, sessionID, studentID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordCols+` FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`, sessionID, studentID)
	return scanRecord(row)
}

// InsertRecord writes a new record. The (session_id, student_id) unique
// constraint backs the duplicate pre-check against concurrent check-ins.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, session_id, student_id, check_in_time, latitude, longitude, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, rec.ID, rec.SessionID, rec.StudentID, rec.CheckInTime, rec.Latitude, rec.Longitude, rec.Status)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordsBySession returns every record for a session.
func (r *Repository) RecordsBySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordCols+` FROM attendance_records WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// History returns a student's records newest first, with course and session
// display fields, plus the unpaginated total.
func (r *Repository) History(ctx context.Context, studentID, courseID string, limit, offset int) ([]HistoryEntry, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_records a
		JOIN class_sessions s ON s.id = a.session_id
		WHERE a.student_id = $1`
	listQuery := `
		SELECT a.id, a.session_id, a.student_id, a.check_in_time, a.latitude, a.longitude, a.status, a.created_at,
		       c.course_name, c.course_code, s.session_date::text, s.start_time || ' - ' || s.end_time
		FROM attendance_records a
		JOIN class_sessions s ON s.id = a.session_id
		JOIN courses c ON c.id = s.course_id
		WHERE a.student_id = $1`

	countArgs := []any{studentID}
	listArgs := []any{studentID}
	if courseID != "" {
		countQuery += ` AND s.course_id = $2`
		listQuery += ` AND s.course_id = $2`
		countArgs = append(countArgs, courseID)
		listArgs = append(listArgs, courseID)
	}
	listQuery += ` ORDER BY a.created_at DESC LIMIT $` + itoa(len(listArgs)+1) + ` OFFSET $` + itoa(len(listArgs)+2)
	listArgs = append(listArgs, limit, offset)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.StudentID, &e.CheckInTime, &e.Latitude,
			&e.Longitude, &e.Status, &e.CreatedAt, &e.CourseName, &e.CourseCode,
			&e.SessionDate, &e.SessionTime); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// StatusCounts aggregates a student's persisted records, optionally scoped
// to one course.
func (r *Repository) StatusCounts(ctx context.Context, studentID, courseID string) (Counts, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE a.status = 'present'),
		       COUNT(*) FILTER (WHERE a.status = 'late'),
		       COUNT(*) FILTER (WHERE a.status = 'absent')
		FROM attendance_records a
		JOIN class_sessions s ON s.id = a.session_id
		WHERE a.student_id = $1`
	args := []any{studentID}
	if courseID != "" {
		query += ` AND s.course_id = $2`
		args = append(args, courseID)
	}

	var c Counts
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.Total, &c.Present, &c.Late, &c.Absent)
	return c, err
}

// CourseStatusCounts aggregates every record across a course's sessions.
func (r *Repository) CourseStatusCounts(ctx context.Context, courseID string) (Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE a.status = 'present'),
		       COUNT(*) FILTER (WHERE a.status = 'late'),
		       COUNT(*) FILTER (WHERE a.status = 'absent')
		FROM attendance_records a
		JOIN class_sessions s ON s.id = a.session_id
		WHERE s.course_id = $1
	`, courseID).Scan(&c.Total, &c.Present, &c.Late, &c.Absent)
	return c, err
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
