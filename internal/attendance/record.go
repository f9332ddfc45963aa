// Package attendance implements the check-in evaluation engine and the
// attendance read models built on top of its records.
package attendance

import "time"

// Status classifies a check-in. Only Present and Late are ever persisted;
// Absent exists purely as a derived value on the read path.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Record is one student's check-in for one session. Records are immutable
// once written; there is no update or delete path.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	StudentID   string    `json:"student_id"`
	CheckInTime time.Time `json:"check_in_time"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryEntry is a record joined with course and session display fields.
type HistoryEntry struct {
	Record
	CourseName  string `json:"course_name"`
	CourseCode  string `json:"course_code"`
	SessionDate string `json:"session_date"`
	SessionTime string `json:"session_time"`
}

// Counts aggregates record statuses.
type Counts struct {
	Total   int `json:"total"`
	Present int `json:"present_count"`
	Late    int `json:"late_count"`
	Absent  int `json:"absent_count"`
}
