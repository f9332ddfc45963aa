package course

import (
	"testing"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:50", 590, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRequireOwnership(t *testing.T) {
	svc := &Service{}

	admin := auth.Identity{UserID: "any", Role: auth.RoleAdmin}
	if err := svc.RequireOwnership(admin, "inst-1"); err != nil {
		t.Errorf("admin should pass ownership: %v", err)
	}

	owner := auth.Identity{UserID: "inst-1", Role: auth.RoleInstructor}
	if err := svc.RequireOwnership(owner, "inst-1"); err != nil {
		t.Errorf("owning instructor should pass: %v", err)
	}

	other := auth.Identity{UserID: "inst-2", Role: auth.RoleInstructor}
	if err := svc.RequireOwnership(other, "inst-1"); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("err = %v, want forbidden for non-owner", err)
	}

	student := auth.Identity{UserID: "inst-1", Role: auth.RoleStudent}
	if err := svc.RequireOwnership(student, "inst-1"); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("err = %v, want forbidden for student", err)
	}
}

func TestSessionInputValidate(t *testing.T) {
	valid := SessionInput{
		SessionDate:  "2026-03-02",
		StartTime:    "09:00",
		EndTime:      "10:30",
		LocationName: "Hall A",
		Latitude:     25.2854,
		Longitude:    51.531,
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SessionInput)
	}{
		{"missing location", func(in *SessionInput) { in.LocationName = "" }},
		{"bad date", func(in *SessionInput) { in.SessionDate = "03/02/2026" }},
		{"bad start time", func(in *SessionInput) { in.StartTime = "9am" }},
		{"bad end time", func(in *SessionInput) { in.EndTime = "25:00" }},
		{"latitude too big", func(in *SessionInput) { in.Latitude = 91 }},
		{"longitude too small", func(in *SessionInput) { in.Longitude = -181 }},
		{"negative radius", func(in *SessionInput) { in.AttendanceRadius = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if err := in.validate(); !apperr.Is(err, apperr.CodeValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}
