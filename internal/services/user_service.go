// Package services – UserService and AuthService
//
// UserService manages employee accounts and their roles. Passwords are
// stored as argon2id hashes produced by the auth package and are never
// returned. AuthService verifies HTTP credentials and seeds the built-in
// roles plus an optional bootstrap administrator.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/auth"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// MinPasswordLen is the shortest accepted password, counted in runes.
const MinPasswordLen = 8

// UserInput carries the writable fields of a user. Role is a role name;
// an empty Role means EMPLOYEE. On update an empty Password keeps the
// current hash.
type UserInput struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Role       string
	LocationID *string
}

// UserService provides CRUD over users and read access to roles.
type UserService struct {
	DB *gorm.DB
	// Hash encodes passwords. Defaults to auth.HashPassword.
	Hash func(password string) (string, error)
}

func (s *UserService) hash(pw string) (string, error) {
	if s.Hash != nil {
		return s.Hash(pw)
	}
	return auth.HashPassword(pw)
}

// ListRoles returns every role.
func (s *UserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return repo.ListRoles(ctx, s.DB)
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, page, pageSize int, order string) ([]domain.User, int64, error) {
	return repo.ListUsersPage(ctx, s.DB, pageWindow(page, pageSize, order))
}

// Get returns one user with role and location, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	return u, mapStoreErr(err, ErrUserNotFound)
}

// Create validates in, hashes the password and inserts the user. A taken
// email yields ErrConflict.
func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	if utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	u, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if u.PasswordHash, err = s.hash(in.Password); err != nil {
		return nil, err
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		return nil, mapStoreErr(err, ErrUserNotFound)
	}
	return s.Get(ctx, u.ID)
}

// Update overwrites profile, role and location of user id. The password is
// replaced only when in.Password is non-empty.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	if in.Password != "" && utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	u, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	u.ID = id
	if in.Password != "" {
		if u.PasswordHash, err = s.hash(in.Password); err != nil {
			return nil, err
		}
	}
	if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
		return nil, mapStoreErr(err, ErrUserNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return mapStoreErr(repo.DeleteUser(ctx, s.DB, id), ErrUserNotFound)
}

func (s *UserService) build(ctx context.Context, in UserInput) (*domain.User, error) {
	u := &domain.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := u.Validate(); err != nil {
		return nil, invalid(err)
	}

	name := strings.ToUpper(strings.TrimSpace(in.Role))
	if name == "" {
		name = domain.RoleEmployee
	}
	role, err := repo.GetRoleByName(ctx, s.DB, name)
	if err != nil {
		return nil, mapStoreErr(err, ErrRoleNotFound)
	}
	u.RoleID = role.ID

	if in.LocationID != nil && strings.TrimSpace(*in.LocationID) != "" {
		l, err := repo.GetLocation(ctx, s.DB, strings.TrimSpace(*in.LocationID))
		if err != nil {
			return nil, mapStoreErr(err, ErrLocationNotFound)
		}
		u.LocationID = &l.ID
	}
	return u, nil
}

// AuthService authenticates users and seeds access control data.
type AuthService struct {
	DB *gorm.DB
	// Hash encodes the bootstrap admin password. Defaults to auth.HashPassword.
	Hash func(password string) (string, error)
}

// Authenticate returns the user owning email when password matches its
// stored hash. Unknown emails and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	match, err := auth.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates the ADMIN, MODERATOR and EMPLOYEE roles when missing
// and, if email is set and unknown, an ADMIN account with password. It
// reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if err := repo.EnsureRoles(ctx, s.DB, domain.RoleAdmin, domain.RoleModerator, domain.RoleEmployee); err != nil {
		return false, err
	}
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}

	users := &UserService{DB: s.DB, Hash: s.Hash}
	_, err := users.Create(ctx, UserInput{
		Email:     email,
		FirstName: "Admin",
		LastName:  "Admin",
		Password:  password,
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
