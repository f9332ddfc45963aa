// Package course holds courses, scheduled class sessions and enrollments.
package course

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"campusattend/internal/lifecycle"
)

// Course groups sessions under one instructor.
type Course struct {
	ID           string          `json:"id"`
	CourseName   string          `json:"course_name"`
	CourseCode   string          `json:"course_code"`
	InstructorID string          `json:"instructor_id"`
	Lifecycle    lifecycle.State `json:"lifecycle"`
	CreatedAt    time.Time       `json:"created_at"`

	// Joined for listings.
	InstructorName string `json:"instructor_name,omitempty"`
	StudentCount   int    `json:"student_count"`
}

// Session is one scheduled, time-boxed meeting of a course at a location.
// Dates are YYYY-MM-DD, times-of-day HH:MM, coordinates decimal degrees and
// the radius meters.
type Session struct {
	ID               string          `json:"id"`
	CourseID         string          `json:"course_id"`
	InstructorID     string          `json:"instructor_id"`
	SessionDate      string          `json:"session_date"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	LocationName     string          `json:"location_name"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	AttendanceRadius int             `json:"attendance_radius"`
	Lifecycle        lifecycle.State `json:"lifecycle"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Enrollment authorizes a student to participate in a course.
type Enrollment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// RosterEntry is one enrolled student, joined with display fields.
type RosterEntry struct {
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// ParseTimeOfDay parses an HH:MM string into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time %q has an invalid hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q has an invalid minute", s)
	}
	return h*60 + m, nil
}
