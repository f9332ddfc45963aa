package user

import (
	"context"
	"strings"
	"time"

	"campusattend/internal/apperr"
	"campusattend/internal/auth"
	"campusattend/internal/store"
)

// Store is the persistence surface the service needs.
type Store interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Insert(ctx context.Context, u User) (User, error)
	List(ctx context.Context, role auth.Role) ([]User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, when time.Time) error
}

// Service implements account operations.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Login verifies credentials and returns the account. Any mismatch, unknown
// username or retired account yields the same unauthorized error.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, apperr.New(apperr.CodeValidation, "username and password are required")
	}
	u, err := s.store.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Lifecycle.IsActive() || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid username or password")
	}
	now := time.Now().UTC()
	if err := s.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	return u, nil
}

// Profile returns the caller's account.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	return u, nil
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email == "" {
			return nil, apperr.New(apperr.CodeValidation, "email must not be empty")
		}
		taken, err := s.store.EmailTaken(ctx, email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.New(apperr.CodeConflict, "email already exists")
		}
		u.Email = email
	}
	if err := s.store.UpdateProfile(ctx, u.ID, u.FirstName, u.LastName, u.Email); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperr.New(apperr.CodeValidation, "current and new password are required")
	}
	if len(next) < 6 {
		return apperr.New(apperr.CodeValidation, "new password must be at least 6 characters long")
	}
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return apperr.New(apperr.CodeValidation, "current password is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, u.ID, hash)
}

// NewAccount is the admin-supplied payload for account creation.
type NewAccount struct {
	Username  string
	Email     string
	Password  string
	Role      auth.Role
	FirstName string
	LastName  string
}

// Create registers a new account. Duplicate username or email surfaces as a
// conflict via the unique constraints.
func (s *Service) Create(ctx context.Context, acct NewAccount) (*User, error) {
	switch {
	case acct.Username == "" || acct.Email == "" || acct.Password == "":
		return nil, apperr.New(apperr.CodeValidation, "username, email and password are required")
	case !acct.Role.Valid():
		return nil, apperr.New(apperr.CodeValidation, "role must be student, instructor or admin")
	case len(acct.Password) < 6:
		return nil, apperr.New(apperr.CodeValidation, "password must be at least 6 characters long")
	}
	hash, err := auth.HashPassword(acct.Password)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Insert(ctx, User{
		Username:     acct.Username,
		Email:        acct.Email,
		PasswordHash: hash,
		Role:         acct.Role,
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.New(apperr.CodeConflict, "username or email already exists")
		}
		return nil, err
	}
	return &created, nil
}

// List returns accounts, optionally filtered by role.
func (s *Service) List(ctx context.Context, role auth.Role) ([]User, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.New(apperr.CodeValidation, "unknown role filter")
	}
	return s.store.List(ctx, role)
}
