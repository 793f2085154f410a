// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and
// roles.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

// ListRoles returns every role ordered by name.
func ListRoles(ctx context.Context, db *gorm.DB) ([]domain.Role, error) {
	var out []domain.Role
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// GetRoleByName fetches a role by its unique name.
func GetRoleByName(ctx context.Context, db *gorm.DB, name string) (*domain.Role, error) {
	var r domain.Role
	if err := db.WithContext(ctx).Where("name = ?", name).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// EnsureRoles inserts any of names not yet present. Existing roles are left
// untouched, so the call is safe on every start.
func EnsureRoles(ctx context.Context, db *gorm.DB, names ...string) error {
	for _, n := range names {
		_, err := GetRoleByName(ctx, db, n)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		r := &domain.Role{ID: uuid.NewString(), Name: n, CreatedAt: time.Now().UTC()}
		if err := db.WithContext(ctx).Create(r).Error; err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	return nil
}

// CreateUser inserts u. Emails are stored lower-cased.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return classify(db.WithContext(ctx).Omit("Role", "Location").Create(u).Error)
}

// GetUser fetches a user by id with role and location preloaded.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Role").
		Preload("Location").
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by email (case-insensitive) with role
// preloaded. Used by authentication.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Role").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsersPage returns a page of users with roles preloaded.
func ListUsersPage(ctx context.Context, db *gorm.DB, p Page) ([]domain.User, int64, error) {
	return listPage[domain.User](ctx, db, p, "email asc", nil, "Role", "Location")
}

// UpdateUser overwrites profile, role and location. The password hash is
// only written when non-empty.
func UpdateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	fields := map[string]any{
		"email":       strings.ToLower(strings.TrimSpace(u.Email)),
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"role_id":     u.RoleID,
		"location_id": u.LocationID,
		"updated_at":  time.Now().UTC(),
	}
	if u.PasswordHash != "" {
		fields["password_hash"] = u.PasswordHash
	}
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Updates(fields)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user by id.
func DeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	return deleteByID[domain.User](ctx, db, id)
}
