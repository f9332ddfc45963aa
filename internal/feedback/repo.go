package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists feedback in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new feedback row.
func (r *Repository) Insert(ctx context.Context, fb Feedback) (Feedback, error) {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO feedback (id, course_id, student_id, rating, comment, is_anonymous)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, fb.ID, fb.CourseID, fb.StudentID, fb.Rating, fb.Comment, fb.IsAnonymous)
	if err := row.Scan(&fb.CreatedAt); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// ByID returns one feedback row or nil when absent.
func (r *Repository) ByID(ctx context.Context, id string) (*Feedback, error) {
	var fb Feedback
	err := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, student_id, rating, comment, is_anonymous, created_at
		FROM feedback WHERE id = $1
	`, id).Scan(&fb.ID, &fb.CourseID, &fb.StudentID, &fb.Rating, &fb.Comment, &fb.IsAnonymous, &fb.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fb, nil
}

// Delete hard-deletes a feedback row. Feedback is the only entity with a
// hard delete; it carries no attendance history.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	return err
}

// ListByCourse returns a course's feedback newest first with submitter names
// for non-anonymous rows, plus the unpaginated total.
func (r *Repository) ListByCourse(ctx context.Context, courseID string, limit, offset int) ([]Feedback, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE course_id = $1`, courseID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.course_id, f.student_id, f.rating, f.comment, f.is_anonymous, f.created_at,
		       COALESCE(u.first_name || ' ' || u.last_name, '')
		FROM feedback f
		LEFT JOIN users u ON u.id = f.student_id AND NOT f.is_anonymous
		WHERE f.course_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, courseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.CourseID, &fb.StudentID, &fb.Rating, &fb.Comment,
			&fb.IsAnonymous, &fb.CreatedAt, &fb.StudentName); err != nil {
			return nil, 0, err
		}
		if fb.IsAnonymous || fb.StudentName == "" {
			fb.StudentName = "Anonymous"
			fb.StudentID = nil
		}
		list = append(list, fb)
	}
	return list, total, rows.Err()
}

// ListByStudent returns a student's own feedback with course display fields.
func (r *Repository) ListByStudent(ctx context.Context, studentID, courseID string, limit, offset int) ([]Feedback, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	countQuery := `SELECT COUNT(*) FROM feedback WHERE student_id = $1`
	listQuery := `
		SELECT f.id, f.course_id, f.student_id, f.rating, f.comment, f.is_anonymous, f.created_at,
		       c.course_name, c.course_code
		FROM feedback f
		JOIN courses c ON c.id = f.course_id
		WHERE f.student_id = $1`
	countArgs := []any{studentID}
	listArgs := []any{studentID}
	if courseID != "" {
		countQuery += ` AND course_id = $2`
		listQuery += ` AND f.course_id = $2`
		countArgs = append(countArgs, courseID)
		listArgs = append(listArgs, courseID)
	}
	listQuery += ` ORDER BY f.created_at DESC LIMIT $` + itoa(len(listArgs)+1) + ` OFFSET $` + itoa(len(listArgs)+2)
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

	var list []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.CourseID, &fb.StudentID, &fb.Rating, &fb.Comment,
			&fb.IsAnonymous, &fb.CreatedAt, &fb.CourseName, &fb.CourseCode); err != nil {
			return nil, 0, err
		}
		list = append(list, fb)
	}
	return list, total, rows.Err()
}

// CourseSummary aggregates a course's ratings.
func (r *Repository) CourseSummary(ctx context.Context, courseID string) (Summary, error) {
	summary := Summary{RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM feedback WHERE course_id = $1 GROUP BY rating
	`, courseID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return Summary{}, err
		}
		if rating >= 1 && rating <= 5 {
			summary.RatingDistribution[rating] = count
		}
		summary.TotalFeedback += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if summary.TotalFeedback > 0 {
		avg := float64(sum) / float64(summary.TotalFeedback)
		summary.AverageRating = float64(int(avg*100+0.5)) / 100
	}
	return summary, nil
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
