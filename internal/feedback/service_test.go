package feedback

import (
	"context"
	"testing"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/course"
	"campusattend/internal/lifecycle"
)

type fakeStore struct {
	inserted []Feedback
	byID     map[string]*Feedback
	deleted  []string
}

func (f *fakeStore) Insert(_ context.Context, fb Feedback) (Feedback, error) {
	fb.ID = "fb-1"
	f.inserted = append(f.inserted, fb)
	return fb, nil
}

func (f *fakeStore) ByID(_ context.Context, id string) (*Feedback, error) { return f.byID[id], nil }

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) ListByCourse(_ context.Context, _ string, _, _ int) ([]Feedback, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) ListByStudent(_ context.Context, _, _ string, _, _ int) ([]Feedback, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) CourseSummary(_ context.Context, _ string) (Summary, error) {
	return Summary{}, nil
}

type fakeCourses struct {
	courses     map[string]*course.Course
	enrollments map[string]bool // courseID + "/" + studentID
}

func (f *fakeCourses) CourseByID(_ context.Context, id string) (*course.Course, error) {
	return f.courses[id], nil
}

func (f *fakeCourses) IsEnrolled(_ context.Context, courseID, studentID string) (bool, error) {
	return f.enrollments[courseID+"/"+studentID], nil
}

func submitFixture() (*fakeStore, *fakeCourses) {
	store := &fakeStore{byID: map[string]*Feedback{}}
	courses := &fakeCourses{
		courses: map[string]*course.Course{
			"course-1": {ID: "course-1", InstructorID: "inst-1", Lifecycle: lifecycle.Active},
		},
		enrollments: map[string]bool{"course-1/student-1": true},
	}
	return store, courses
}

func TestSubmit(t *testing.T) {
	store, courses := submitFixture()
	svc := NewService(store, courses)

	fb, err := svc.Submit(context.Background(), "student-1", "course-1", 4, "solid course", false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.StudentID == nil || *fb.StudentID != "student-1" {
		t.Errorf("student id = %v, want student-1", fb.StudentID)
	}
	if fb.Rating != 4 {
		t.Errorf("rating = %d, want 4", fb.Rating)
	}
}

func TestSubmitAnonymousDropsStudentID(t *testing.T) {
	store, courses := submitFixture()
	svc := NewService(store, courses)

	fb, err := svc.Submit(context.Background(), "student-1", "course-1", 5, "", true)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.StudentID != nil {
		t.Errorf("anonymous feedback carries student id %q", *fb.StudentID)
	}
	if !fb.IsAnonymous {
		t.Error("anonymous flag not set")
	}
	if len(store.inserted) != 1 || store.inserted[0].StudentID != nil {
		t.Error("anonymous feedback persisted with a student id")
	}
}

func TestSubmitFailures(t *testing.T) {
	store, courses := submitFixture()
	retired := &course.Course{ID: "course-2", InstructorID: "inst-1", Lifecycle: lifecycle.Retired}
	courses.courses["course-2"] = retired
	courses.enrollments["course-2/student-1"] = true
	svc := NewService(store, courses)

	cases := []struct {
		name                string
		studentID, courseID string
		rating              int
		wantCode            apperr.Code
	}{
		{"unknown course", "student-1", "missing", 4, apperr.CodeNotFound},
		{"retired course", "student-1", "course-2", 4, apperr.CodeNotFound},
		{"not enrolled", "student-2", "course-1", 4, apperr.CodeForbidden},
		{"rating too low", "student-1", "course-1", 0, apperr.CodeValidation},
		{"rating too high", "student-1", "course-1", 6, apperr.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.studentID, tc.courseID, tc.rating, "", false)
			if !apperr.Is(err, tc.wantCode) {
				t.Errorf("err = %v, want %s", err, tc.wantCode)
			}
		})
	}
	if len(store.inserted) != 0 {
		t.Errorf("inserted %d rows, want 0", len(store.inserted))
	}
}

func TestListForCourseOwnership(t *testing.T) {
	store, courses := submitFixture()
	svc := NewService(store, courses)

	other := auth.Identity{UserID: "inst-2", Role: auth.RoleInstructor}
	if _, err := svc.ListForCourse(context.Background(), other, "course-1", 10, 0); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("err = %v, want forbidden for non-owning instructor", err)
	}

	owner := auth.Identity{UserID: "inst-1", Role: auth.RoleInstructor}
	page, err := svc.ListForCourse(context.Background(), owner, "course-1", 10, 0)
	if err != nil {
		t.Fatalf("ListForCourse: %v", err)
	}
	if page.Feedback == nil {
		t.Error("feedback list must not be nil")
	}

	admin := auth.Identity{UserID: "someone", Role: auth.RoleAdmin}
	if _, err := svc.ListForCourse(context.Background(), admin, "course-1", 10, 0); err != nil {
		t.Errorf("admin should see any course feedback: %v", err)
	}
}

func TestRemove(t *testing.T) {
	store, courses := submitFixture()
	store.byID["fb-1"] = &Feedback{ID: "fb-1", CourseID: "course-1"}
	svc := NewService(store, courses)

	if err := svc.Remove(context.Background(), "missing"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("err = %v, want not_found", err)
	}
	if err := svc.Remove(context.Background(), "fb-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "fb-1" {
		t.Errorf("deleted = %v, want [fb-1]", store.deleted)
	}
}
