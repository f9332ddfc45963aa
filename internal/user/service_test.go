package user

import (
	"context"
	"testing"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/lifecycle"
)

type fakeStore struct {
	byUsername map[string]*User
	byID       map[string]*User
	lastLogin  map[string]time.Time
	inserted   []User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byUsername: map[string]*User{},
		byID:       map[string]*User{},
		lastLogin:  map[string]time.Time{},
	}
}

func (f *fakeStore) add(u *User) {
	f.byUsername[u.Username] = u
	f.byID[u.ID] = u
}

func (f *fakeStore) ByID(_ context.Context, id string) (*User, error) { return f.byID[id], nil }

func (f *fakeStore) ByUsername(_ context.Context, username string) (*User, error) {
	return f.byUsername[username], nil
}

func (f *fakeStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	for _, u := range f.byID {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Insert(_ context.Context, u User) (User, error) {
	u.ID = "user-new"
	f.inserted = append(f.inserted, u)
	return u, nil
}

func (f *fakeStore) List(_ context.Context, _ auth.Role) ([]User, error) { return nil, nil }

func (f *fakeStore) UpdateProfile(_ context.Context, id, firstName, lastName, email string) error {
	u := f.byID[id]
	u.FirstName, u.LastName, u.Email = firstName, lastName, email
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.byID[id].PasswordHash = passwordHash
	return nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, id string, when time.Time) error {
	f.lastLogin[id] = when
	return nil
}

func activeUser(t *testing.T, username, password string) *User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@campus.edu",
		PasswordHash: hash,
		Role:         auth.RoleStudent,
		FirstName:    "Test",
		LastName:     "User",
		Lifecycle:    lifecycle.Active,
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	store.add(activeUser(t, "john", "password1"))
	svc := NewService(store)

	u, err := svc.Login(context.Background(), "john", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.LastLogin == nil {
		t.Error("last login not recorded")
	}
	if _, ok := store.lastLogin[u.ID]; !ok {
		t.Error("last login not persisted")
	}
}

func TestLoginFailures(t *testing.T) {
	store := newFakeStore()
	store.add(activeUser(t, "john", "password1"))
	retired := activeUser(t, "gone", "password1")
	retired.Lifecycle = lifecycle.Retired
	store.add(retired)
	svc := NewService(store)

	cases := []struct {
		name               string
		username, password string
		wantCode           apperr.Code
	}{
		{"wrong password", "john", "nope", apperr.CodeUnauthorized},
		{"unknown user", "jane", "password1", apperr.CodeUnauthorized},
		{"retired account", "gone", "password1", apperr.CodeUnauthorized},
		{"empty password", "john", "", apperr.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tc.username, tc.password); !apperr.Is(err, tc.wantCode) {
				t.Errorf("err = %v, want %s", err, tc.wantCode)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	store := newFakeStore()
	u := activeUser(t, "john", "password1")
	store.add(u)
	svc := NewService(store)

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "newpassword"); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("err = %v, want validation for wrong current password", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "password1", "short"); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("err = %v, want validation for short password", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "password1", "newpassword"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !auth.CheckPassword(u.PasswordHash, "newpassword") {
		t.Error("new password not stored")
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	store := newFakeStore()
	store.add(activeUser(t, "john", "password1"))
	store.add(activeUser(t, "jane", "password1"))
	svc := NewService(store)

	taken := "jane@campus.edu"
	_, err := svc.UpdateProfile(context.Background(), "user-john", ProfileUpdate{Email: &taken})
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("err = %v, want conflict for taken email", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	cases := []struct {
		name string
		acct NewAccount
	}{
		{"missing fields", NewAccount{Username: "x"}},
		{"bad role", NewAccount{Username: "x", Email: "x@y.z", Password: "secret1", Role: "superuser"}},
		{"short password", NewAccount{Username: "x", Email: "x@y.z", Password: "abc", Role: auth.RoleStudent}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.acct); !apperr.Is(err, apperr.CodeValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}
