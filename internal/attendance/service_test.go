package attendance

import (
	"context"
	"testing"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/course"
	"campusattend/internal/lifecycle"
)

type fakeSessionStore struct {
	sessions    map[string]*course.Session
	courses     map[string]*course.Course
	enrollments map[string]bool // courseID + "/" + studentID
	roster      []course.RosterEntry
}

func (f *fakeSessionStore) SessionByID(_ context.Context, id string) (*course.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionStore) CourseByID(_ context.Context, id string) (*course.Course, error) {
	return f.courses[id], nil
}

func (f *fakeSessionStore) IsEnrolled(_ context.Context, courseID, studentID string) (bool, error) {
	return f.enrollments[courseID+"/"+studentID], nil
}

func (f *fakeSessionStore) Roster(_ context.Context, _ string) ([]course.RosterEntry, error) {
	return f.roster, nil
}

func (f *fakeSessionStore) EnrollmentCount(_ context.Context, _ string) (int, error) {
	return len(f.roster), nil
}

func (f *fakeSessionStore) SessionCount(_ context.Context, _ string) (int, error) {
	return len(f.sessions), nil
}

type fakeRecordStore struct {
	records  map[string]Record // sessionID + "/" + studentID
	inserted []Record
}

func recordKey(sessionID, studentID string) string { return sessionID + "/" + studentID }

func (f *fakeRecordStore) RecordForSession(_ context.Context, sessionID, studentID string) (*Record, error) {
	if rec, ok := f.records[recordKey(sessionID, studentID)]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeRecordStore) InsertRecord(_ context.Context, rec Record) (Record, error) {
	rec.ID = "rec-" + rec.StudentID
	rec.CreatedAt = rec.CheckInTime
	f.records[recordKey(rec.SessionID, rec.StudentID)] = rec
	f.inserted = append(f.inserted, rec)
	return rec, nil
}

func (f *fakeRecordStore) RecordsBySession(_ context.Context, sessionID string) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) History(_ context.Context, _, _ string, _, _ int) ([]HistoryEntry, int, error) {
	return nil, 0, nil
}

func (f *fakeRecordStore) StatusCounts(_ context.Context, _, _ string) (Counts, error) {
	return Counts{}, nil
}

func (f *fakeRecordStore) CourseStatusCounts(_ context.Context, _ string) (Counts, error) {
	return Counts{}, nil
}

func newTestService(sessions *fakeSessionStore, records *fakeRecordStore, now time.Time) *Service {
	return NewService(sessions, records, nil, 0, DefaultGrace).
		WithClock(func() time.Time { return now })
}

func checkInFixture() (*fakeSessionStore, *fakeRecordStore) {
	sessions := &fakeSessionStore{
		sessions: map[string]*course.Session{
			"sess-1": testSession("09:00"),
		},
		courses: map[string]*course.Course{
			"course-1": {ID: "course-1", InstructorID: "inst-1", Lifecycle: lifecycle.Active},
		},
		enrollments: map[string]bool{"course-1/student-1": true},
	}
	records := &fakeRecordStore{records: map[string]Record{}}
	return sessions, records
}

func TestCheckInSuccess(t *testing.T) {
	sessions, records := checkInFixture()
	now := at(9, 5)
	svc := newTestService(sessions, records, now)

	res, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 0, 0.0001)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Status != StatusLate {
		t.Errorf("status = %q, want late", res.Status)
	}
	if !res.Record.CheckInTime.Equal(now) {
		t.Errorf("check-in time = %v, want %v", res.Record.CheckInTime, now)
	}
	if res.Record.CheckInTime.Location() != time.UTC {
		t.Error("check-in time must be UTC")
	}
	if len(records.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(records.inserted))
	}
}

func TestCheckInUnknownSession(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	_, err := svc.CheckIn(context.Background(), "student-1", "missing", 0, 0)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestCheckInRetiredSession(t *testing.T) {
	sessions, records := checkInFixture()
	sessions.sessions["sess-1"].Lifecycle = lifecycle.Retired
	svc := newTestService(sessions, records, at(9, 0))

	_, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 0, 0)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestCheckInNotEnrolled(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	// Geofence would pass, but enrollment is checked first.
	_, err := svc.CheckIn(context.Background(), "student-2", "sess-1", 0, 0)
	if !apperr.Is(err, apperr.CodeForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if len(records.inserted) != 0 {
		t.Error("no record should be written for a forbidden check-in")
	}
}

func TestCheckInDuplicate(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	if _, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 0, 0); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}

	// The duplicate wins over the geofence: even absurd coordinates yield
	// conflict, not out-of-range.
	_, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 45, 90)
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if len(records.inserted) != 1 {
		t.Errorf("inserted %d records, want 1", len(records.inserted))
	}
}

func TestCheckInOutOfRange(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	_, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 0, 0.0005)
	if !apperr.Is(err, apperr.CodeOutOfRange) {
		t.Fatalf("err = %v, want out_of_range", err)
	}
	if len(records.inserted) != 0 {
		t.Error("no record should be written for an out-of-range check-in")
	}
}

func TestCheckInInvalidCoordinates(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	_, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 91, 0)
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestSessionAttendanceDerivesAbsent(t *testing.T) {
	sessions, records := checkInFixture()
	sessions.roster = []course.RosterEntry{
		{StudentID: "student-1", StudentName: "Ada Lovelace", StudentEmail: "ada@campus.edu"},
		{StudentID: "student-2", StudentName: "Alan Turing", StudentEmail: "alan@campus.edu"},
		{StudentID: "student-3", StudentName: "Grace Hopper", StudentEmail: "grace@campus.edu"},
	}
	svc := newTestService(sessions, records, at(8, 55))

	if _, err := svc.CheckIn(context.Background(), "student-1", "sess-1", 0, 0.0001); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	viewer := auth.Identity{UserID: "inst-1", Role: auth.RoleInstructor}
	view, err := svc.SessionAttendance(context.Background(), viewer, "sess-1")
	if err != nil {
		t.Fatalf("SessionAttendance: %v", err)
	}

	if len(view.Students) != 3 {
		t.Fatalf("roster rows = %d, want 3", len(view.Students))
	}
	seen := map[string]bool{}
	absent := 0
	for _, row := range view.Students {
		if seen[row.StudentID] {
			t.Errorf("duplicate roster row for %s", row.StudentID)
		}
		seen[row.StudentID] = true
		switch row.StudentID {
		case "student-1":
			if row.Status != StatusPresent {
				t.Errorf("student-1 status = %q, want present", row.Status)
			}
			if row.Distance == nil || row.CheckInTime == nil {
				t.Error("checked-in student must carry distance and check-in time")
			}
		default:
			if row.Status != StatusAbsent {
				t.Errorf("%s status = %q, want absent", row.StudentID, row.Status)
			}
			if row.Distance != nil {
				t.Errorf("%s has a distance without a record", row.StudentID)
			}
			absent++
		}
	}
	if absent != 2 {
		t.Errorf("absent rows = %d, want 2", absent)
	}
	if view.Summary.TotalStudents != 3 || view.Summary.PresentCount != 1 || view.Summary.AbsentCount != 2 {
		t.Errorf("summary = %+v, want 3 total / 1 present / 2 absent", view.Summary)
	}
	if view.Summary.AttendancePercentage != 33.33 {
		t.Errorf("percentage = %v, want 33.33", view.Summary.AttendancePercentage)
	}
}

func TestSessionAttendanceOwnership(t *testing.T) {
	sessions, records := checkInFixture()
	svc := newTestService(sessions, records, at(9, 0))

	otherInstructor := auth.Identity{UserID: "inst-2", Role: auth.RoleInstructor}
	if _, err := svc.SessionAttendance(context.Background(), otherInstructor, "sess-1"); !apperr.Is(err, apperr.CodeForbidden) {
		t.Fatalf("err = %v, want forbidden for non-owning instructor", err)
	}

	admin := auth.Identity{UserID: "someone", Role: auth.RoleAdmin}
	if _, err := svc.SessionAttendance(context.Background(), admin, "sess-1"); err != nil {
		t.Fatalf("admin should see any session: %v", err)
	}
}
